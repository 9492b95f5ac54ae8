package autopage

import (
	"fmt"
	"syscall"
	"time"
)

// Process exit codes reported by sessions, following the shell convention
// that a process killed by signal N exits with code 128+N.
const (
	// ExitSuccess indicates the write phase completed normally
	ExitSuccess = 0

	// ExitFailure indicates the write phase failed with an ordinary error
	ExitFailure = 1

	// ExitInterrupt is the exit code for a session ended by an interrupt
	ExitInterrupt = 128 + int(syscall.SIGINT)

	// ExitBrokenPipe is the exit code for a session whose reader went away,
	// typically because the user quit the pager before the output finished
	ExitBrokenPipe = 128 + int(syscall.SIGPIPE)
)

// Timing constants
const (
	// DefaultFollowDebounce is the default quiet window used by Follow to
	// coalesce bursts of file writes before reading again
	DefaultFollowDebounce = 25 * time.Millisecond

	// stopGrace is how long session teardown waits for helper goroutines
	stopGrace = 100 * time.Millisecond
)

// ErrorStrategy selects how undecodable text written through a session is
// handled before it reaches the pager or destination.
type ErrorStrategy int

const (
	// ErrorsDefault keeps the destination's behavior: bytes pass through
	// unmodified
	ErrorsDefault ErrorStrategy = iota
	// ErrorsStrict fails the write with ErrInvalidText
	ErrorsStrict
	// ErrorsIgnore drops invalid bytes
	ErrorsIgnore
	// ErrorsReplace substitutes U+FFFD for each invalid byte
	ErrorsReplace
	// ErrorsBackslashReplace substitutes a \xNN escape for each invalid byte
	ErrorsBackslashReplace
	// ErrorsXMLCharRefReplace substitutes an XML character reference for each
	// invalid byte
	ErrorsXMLCharRefReplace
	// ErrorsNameReplace substitutes a \N{...} escape naming the code point
	// for each invalid byte
	ErrorsNameReplace
)

// ErrorStrategy string constants
const (
	errorsDefaultStr   = "default"
	errorsStrictStr    = "strict"
	errorsIgnoreStr    = "ignore"
	errorsReplaceStr   = "replace"
	errorsBackslashStr = "backslashreplace"
	errorsXMLStr       = "xmlcharrefreplace"
	errorsNameStr      = "namereplace"
	errorsUnknownStr   = "unknown"
)

// String returns the string representation of an ErrorStrategy
func (s ErrorStrategy) String() string {
	switch s {
	case ErrorsDefault:
		return errorsDefaultStr
	case ErrorsStrict:
		return errorsStrictStr
	case ErrorsIgnore:
		return errorsIgnoreStr
	case ErrorsReplace:
		return errorsReplaceStr
	case ErrorsBackslashReplace:
		return errorsBackslashStr
	case ErrorsXMLCharRefReplace:
		return errorsXMLStr
	case ErrorsNameReplace:
		return errorsNameStr
	default:
		return errorsUnknownStr
	}
}

// valid reports whether s is one of the defined strategies
func (s ErrorStrategy) valid() bool {
	return s >= ErrorsDefault && s <= ErrorsNameReplace
}

// ParseErrorStrategy converts a strategy name, as accepted in configuration
// files and command lines, to an ErrorStrategy.
func ParseErrorStrategy(name string) (ErrorStrategy, error) {
	switch name {
	case errorsDefaultStr, "":
		return ErrorsDefault, nil
	case errorsStrictStr:
		return ErrorsStrict, nil
	case errorsIgnoreStr:
		return ErrorsIgnore, nil
	case errorsReplaceStr:
		return ErrorsReplace, nil
	case errorsXMLStr:
		return ErrorsXMLCharRefReplace, nil
	case errorsBackslashStr:
		return ErrorsBackslashReplace, nil
	case errorsNameStr:
		return ErrorsNameReplace, nil
	default:
		return ErrorsDefault, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
