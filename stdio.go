package autopage

import (
	"io"
	"os"
	"reflect"
	"sync"
)

// Stdio is a process default-output slot. A session whose destination is
// the default output installs its reconfigured stream here on enter and
// restores the original on Close, so code that resolves its output through
// the slot picks up the session's buffering and error strategy for the
// session's duration.
//
// Most programs use the process-wide slot returned by DefaultStdio; tests
// and embedded interpreters can inject their own with WithStdio.
type Stdio struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStdio returns a slot whose default output is out
func NewStdio(out io.Writer) *Stdio {
	return &Stdio{out: out}
}

var processStdio = NewStdio(os.Stdout)

// DefaultStdio returns the process-wide slot, backed by os.Stdout until a
// session swaps it.
func DefaultStdio() *Stdio {
	return processStdio
}

// Output returns the stream currently installed as the default output
func (s *Stdio) Output() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out
}

// sameWriter reports whether a and b are the same writer. Interface equality
// panics when both sides hold the same uncomparable dynamic type; such values
// compare unequal instead.
func sameWriter(a, b io.Writer) bool {
	if t := reflect.TypeOf(a); t != nil && t == reflect.TypeOf(b) && !t.Comparable() {
		return false
	}
	return a == b
}

// swap installs w as the default output and returns a function that restores
// the previous stream. Sessions do not nest, so one save/restore pair per
// session suffices.
func (s *Stdio) swap(w io.Writer) func() {
	s.mu.Lock()
	prev := s.out
	s.out = w
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.out = prev
		s.mu.Unlock()
	}
}
