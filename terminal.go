package autopage

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// fdStream is a stream backed by an operating system file descriptor
type fdStream interface {
	Fd() uintptr
}

// isTerminalWriter reports whether w is connected to an interactive terminal.
// Streams without a file descriptor (in-memory buffers, io.Pipe ends) never
// are.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(fdStream)
	if !ok {
		return false
	}
	return isTerminalFd(f.Fd())
}

// isTerminalFd reports whether fd refers to a terminal, including the MSYS
// and Cygwin pty devices that masquerade as pipes on Windows.
func isTerminalFd(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// LineBufferFromInput reports whether a session whose output is derived from
// reading input should flush that output per line. Seekable input (a regular
// file) can be processed faster than any reader consumes the result, so
// block buffering is fine; input arriving incrementally from a terminal or a
// pipe should appear downstream as soon as each line is complete. Pass nil
// to consult the process standard input.
//
// Intended to be fed to WithLineBuffering by filter-style programs:
//
//	p, err := autopage.New(
//	        autopage.WithLineBuffering(autopage.LineBufferFromInput(nil)),
//	)
func LineBufferFromInput(input io.Reader) bool {
	if input == nil {
		input = os.Stdin
	}
	if f, ok := input.(fdStream); ok && isTerminalFd(f.Fd()) {
		// Terminals can claim to be seekable; the tty check wins.
		return true
	}
	if s, ok := input.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekCurrent); err == nil {
			return false
		}
	}
	return true
}
