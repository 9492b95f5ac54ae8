package autopage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// Common errors returned by paging sessions
var (
	// ErrPagerClosed indicates the pager subprocess exited before the write
	// phase finished. It is installed as the session context's cancellation
	// cause so writers can stop producing output promptly.
	ErrPagerClosed = errors.New("autopage: pager exited")

	// ErrInterrupted indicates an interrupt was received during the write
	// phase. Like ErrPagerClosed it arrives as the session context's
	// cancellation cause.
	ErrInterrupted = errors.New("autopage: interrupted")

	// ErrSessionClosed indicates use of a session that has already been closed
	ErrSessionClosed = errors.New("autopage: session closed")

	// ErrInvalidCommand indicates a pager command line that could not be
	// parsed into an argument vector
	ErrInvalidCommand = errors.New("autopage: invalid pager command")

	// ErrUnknownStrategy indicates an unrecognized text error strategy
	ErrUnknownStrategy = errors.New("autopage: unknown error strategy")

	// ErrInvalidText indicates undecodable text written through a session
	// configured with ErrorsStrict
	ErrInvalidText = errors.New("autopage: invalid text")
)

// ExitStatus is an error that carries an explicit process exit code through
// session teardown. Returning it from the write phase makes the session's
// ExitCode report Code; the error itself still propagates to the caller.
type ExitStatus struct {
	// Code is the requested process exit code
	Code int
}

// Error returns a formatted error message
func (e ExitStatus) Error() string {
	return fmt.Sprintf("autopage: exit status %d", e.Code)
}

// isBrokenPipe reports whether err means the reading side of the output went
// away: the pager quit, the pipe closed under the writer, or the session's
// own teardown already closed the stream.
func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, ErrPagerClosed)
}
