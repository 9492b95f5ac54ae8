package autopage

import (
	"bufio"
	"io"
	"os"
)

// Stream is the writable stream a session hands to its caller. Writes flow
// through the session's text error strategy, transcript mirror, and
// buffering policy before reaching the pager subprocess or the destination.
type Stream struct {
	w      io.Writer // head of the write chain
	san    *sanitizer
	buf    *bufio.Writer
	sink   io.Closer // pipe write end owned by the session; nil when not paging
	closed bool
}

// newStream assembles the write chain over dest. closer is closed when the
// stream closes; a nil closer leaves the underlying destination open, for
// destinations the session does not own. mirror, when non-nil, receives a
// copy of everything written, after the error strategy and before buffering.
func newStream(dest io.Writer, closer io.Closer, blockBuffered bool, strategy ErrorStrategy, mirror io.Writer) *Stream {
	st := &Stream{sink: closer}
	w := dest
	if blockBuffered {
		st.buf = bufio.NewWriter(w)
		w = st.buf
	}
	if mirror != nil {
		w = io.MultiWriter(w, mirror)
	}
	if strategy != ErrorsDefault {
		st.san = newSanitizer(w, strategy)
		w = st.san
	}
	st.w = w
	return st
}

// Write writes p through the chain
func (s *Stream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, os.ErrClosed
	}
	return s.w.Write(p)
}

// Flush pushes buffered data to the destination without closing the stream.
// Bytes held back as a possible rune prefix stay held; the next write or the
// close resolves them.
func (s *Stream) Flush() error {
	if s.closed || s.buf == nil {
		return nil
	}
	return s.buf.Flush()
}

// Close drains the chain and closes the session-owned sink, if any. The
// first error encountered is returned; later stages still run so the sink
// never leaks.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var first error
	if s.san != nil {
		if err := s.san.flushPending(); err != nil {
			first = err
		}
	}
	if s.buf != nil {
		if err := s.buf.Flush(); err != nil && first == nil {
			first = err
		}
	}
	if s.sink != nil {
		if err := s.sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
