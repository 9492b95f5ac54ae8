package autopage

import (
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/unicode/runenames"
)

// sanitizer rewrites invalid UTF-8 in the written stream according to an
// ErrorStrategy before it reaches the pager or destination. Each invalid
// byte is handled individually, interpreted as a Latin-1 code point by the
// strategies that render it. A multi-byte rune split across Write calls is
// carried between them and resolved by the next write, or at close.
type sanitizer struct {
	w        io.Writer
	strategy ErrorStrategy
	pending  [utf8.UTFMax - 1]byte
	npending int
}

// newSanitizer wraps w with the given strategy
func newSanitizer(w io.Writer, strategy ErrorStrategy) *sanitizer {
	return &sanitizer{w: w, strategy: strategy}
}

// Write passes valid UTF-8 through untouched and applies the strategy to
// everything else.
func (s *sanitizer) Write(p []byte) (int, error) {
	if s.npending == 0 && utf8.Valid(p) {
		return s.w.Write(p)
	}

	buf := make([]byte, 0, s.npending+len(p))
	buf = append(buf, s.pending[:s.npending]...)
	buf = append(buf, p...)
	carried := s.npending
	s.npending = 0

	done := 0 // bytes of buf fully handled
	start := 0
	i := 0
	for i < len(buf) {
		r, size := utf8.DecodeRune(buf[i:])
		if r != utf8.RuneError || size > 1 {
			i += size
			continue
		}
		if runePrefix(buf[i:]) {
			// Possibly the head of a rune completed by the next write.
			break
		}
		if err := s.writeAll(buf[start:i]); err != nil {
			return consumed(done, carried, len(p)), err
		}
		done = i
		rep, err := s.replacement(buf[i])
		if err != nil {
			return consumed(done, carried, len(p)), err
		}
		if err := s.writeAll(rep); err != nil {
			return consumed(done, carried, len(p)), err
		}
		i++
		done = i
		start = i
	}
	if err := s.writeAll(buf[start:i]); err != nil {
		return consumed(done, carried, len(p)), err
	}
	s.npending = copy(s.pending[:], buf[i:])
	return len(p), nil
}

// flushPending resolves bytes held back as a possible rune prefix. They can
// no longer be completed, so the strategy applies to each.
func (s *sanitizer) flushPending() error {
	if s.npending == 0 {
		return nil
	}
	pend := s.pending[:s.npending]
	s.npending = 0
	for _, b := range pend {
		rep, err := s.replacement(b)
		if err != nil {
			return err
		}
		if err := s.writeAll(rep); err != nil {
			return err
		}
	}
	return nil
}

// replacement returns the bytes substituted for one invalid input byte
func (s *sanitizer) replacement(b byte) ([]byte, error) {
	switch s.strategy {
	case ErrorsStrict:
		return nil, fmt.Errorf("%w: byte 0x%02x", ErrInvalidText, b)
	case ErrorsIgnore:
		return nil, nil
	case ErrorsReplace:
		return []byte("�"), nil
	case ErrorsBackslashReplace:
		return []byte(fmt.Sprintf(`\x%02x`, b)), nil
	case ErrorsXMLCharRefReplace:
		return []byte(fmt.Sprintf("&#%d;", b)), nil
	case ErrorsNameReplace:
		// Control characters come back as a bracketed placeholder, not a
		// name; those fall through to the hex escape.
		if name := runenames.Name(rune(b)); name != "" && name[0] != '<' {
			return []byte(`\N{` + name + `}`), nil
		}
		return []byte(fmt.Sprintf(`\x%02x`, b)), nil
	default:
		return nil, nil
	}
}

func (s *sanitizer) writeAll(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	_, err := s.w.Write(p)
	return err
}

// runePrefix reports whether b could be the beginning of a valid UTF-8
// encoding awaiting continuation bytes.
func runePrefix(b []byte) bool {
	if len(b) == 0 || len(b) >= utf8.UTFMax {
		return false
	}
	var want int
	switch lead := b[0]; {
	case lead < 0xC2:
		// ASCII, a stray continuation byte, or an overlong lead.
		return false
	case lead < 0xE0:
		want = 2
	case lead < 0xF0:
		want = 3
	case lead < 0xF5:
		want = 4
	default:
		return false
	}
	if len(b) >= want {
		return false
	}
	for _, c := range b[1:] {
		if c&0xC0 != 0x80 {
			return false
		}
	}
	return true
}

// consumed converts a count of fully handled scratch-buffer bytes into a
// count of bytes consumed from the current write, excluding the carry-over
// from the previous one.
func consumed(done, carried, n int) int {
	c := done - carried
	if c < 0 {
		return 0
	}
	if c > n {
		return n
	}
	return c
}
