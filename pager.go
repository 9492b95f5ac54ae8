package autopage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"vawter.tech/stopper"
)

// sessionState tracks where a Pager is in its lifecycle
type sessionState int

const (
	// stateIdle means the session has not been started
	stateIdle sessionState = iota
	// stateNotPaging means the session is active without a pager subprocess
	stateNotPaging
	// statePaging means output is flowing to a pager subprocess
	statePaging
	// stateClosed means the session is over
	stateClosed
)

// Pager routes a program's output through an external pager when, and only
// when, that output is going to an interactive terminal. Start returns the
// stream to write to; Close tears the session down and converts the outcome
// into a process exit code. A pager that cannot be launched is not an error:
// the session silently degrades to direct writes.
type Pager struct {
	// Output is the destination stream; nil selects the default output
	Output io.Writer

	// Stdio is the default-output slot consulted when Output is nil, and
	// updated for the session's duration when the destination is the
	// default output. nil selects the process-wide slot.
	Stdio *Stdio

	// Command selects the pager program; nil selects Default()
	Command PagerCommand

	// AllowColor permits ANSI escape sequences to reach the terminal raw
	AllowColor bool

	// LineBuffering forces per-line flushing when set true and block
	// buffering when set false; nil keeps the destination's behavior
	LineBuffering *bool

	// ResetOnExit asks the pager to restore the terminal contents on exit,
	// rather than leaving the last screenful visible
	ResetOnExit bool

	// Errors selects handling of undecodable text written to the session
	Errors ErrorStrategy

	// TranscriptPath, when non-empty, names a file that atomically receives
	// a copy of everything written through the session when it closes
	TranscriptPath string

	// session state
	state    sessionState
	dest     io.Writer
	usesSlot bool
	tty      bool
	argv     []string
	stream   *Stream
	cmd      *exec.Cmd
	ctx      context.Context
	cancel   context.CancelCauseFunc
	sctx     *stopper.Context
	sigc     chan os.Signal
	waitDone chan struct{}
	restore  func()
	trans    *transcript
	exitCode int
}

// Option configures a Pager
type Option func(*Pager)

// WithOutput directs the session at w instead of the default output
func WithOutput(w io.Writer) Option {
	return func(p *Pager) {
		p.Output = w
	}
}

// WithStdio sets the default-output slot the session consults and updates
func WithStdio(s *Stdio) Option {
	return func(p *Pager) {
		p.Stdio = s
	}
}

// WithPager selects the pager command
func WithPager(cmd PagerCommand) Option {
	return func(p *Pager) {
		p.Command = cmd
	}
}

// WithPagerString selects the pager from a shell-style command line
func WithPagerString(cmdline string) Option {
	return func(p *Pager) {
		p.Command = Custom(cmdline)
	}
}

// WithPagerFromEnvironment selects the pager named by the first set,
// non-empty variable, falling back to the platform default
func WithPagerFromEnvironment(vars ...string) Option {
	return func(p *Pager) {
		p.Command = FromEnvironment(vars...)
	}
}

// WithColor controls whether ANSI escape sequences pass through raw.
// Enabled by default.
func WithColor(allow bool) Option {
	return func(p *Pager) {
		p.AllowColor = allow
	}
}

// WithLineBuffering forces per-line flushing (true) or block buffering
// (false). Unset, the destination's behavior is kept.
func WithLineBuffering(enabled bool) Option {
	return func(p *Pager) {
		p.LineBuffering = &enabled
	}
}

// WithResetOnExit asks the pager to restore the terminal on exit
func WithResetOnExit(reset bool) Option {
	return func(p *Pager) {
		p.ResetOnExit = reset
	}
}

// WithErrorStrategy selects handling of undecodable text
func WithErrorStrategy(strategy ErrorStrategy) Option {
	return func(p *Pager) {
		p.Errors = strategy
	}
}

// WithTranscript mirrors everything written through the session into the
// file at path, committed atomically when the session closes.
func WithTranscript(path string) Option {
	return func(p *Pager) {
		p.TranscriptPath = path
	}
}

// New creates a pager session. The destination defaults to the default
// output slot and the pager command to Default(). Configuration problems,
// an unparseable pager command line or an unknown error strategy, are
// reported here rather than surfacing mid-session.
func New(opts ...Option) (*Pager, error) {
	p := &Pager{
		AllowColor: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.Stdio == nil {
		p.Stdio = DefaultStdio()
	}
	if p.Command == nil {
		p.Command = Default()
	}
	p.dest = p.Output
	if p.dest == nil {
		p.dest = p.Stdio.Output()
		p.usesSlot = true
	} else if sameWriter(p.dest, p.Stdio.Output()) {
		p.usesSlot = true
	}

	if !p.Errors.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(p.Errors))
	}
	p.argv = p.Command.Command()
	if len(p.argv) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, p.Command)
	}

	p.tty = isTerminalWriter(p.dest)
	p.waitDone = make(chan struct{})
	return p, nil
}

// ToTerminal reports whether the session's destination is an interactive
// terminal. Callers use it to decide between human-oriented and
// machine-oriented output formats.
func (p *Pager) ToTerminal() bool {
	return p.tty
}

// Context returns the session context. While the session is active it is
// cancelled with cause ErrPagerClosed when the pager exits before the
// caller finishes writing, and with cause ErrInterrupted when an interrupt
// arrives; the cause keeps the two outcomes distinguishable for exit-code
// mapping. Long write phases should watch it and return context.Cause.
func (p *Pager) Context() context.Context {
	if p.ctx == nil {
		return context.Background()
	}
	return p.ctx
}

// ExitCode returns the exit code the process should report, computed during
// Close from the session outcome. Zero before Close.
func (p *Pager) ExitCode() int {
	return p.exitCode
}

// Start enters the session and returns the stream to write to. When the
// destination is an interactive terminal and the pager subprocess launches,
// writes page; otherwise the destination is handed back, rewrapped per the
// session options, and no subprocess runs. Launch failures are deliberately
// silent: output still flows, just unpaged.
//
// Start fails only on lifecycle misuse or when a requested transcript file
// cannot be created. Calling it again on an active session returns the same
// stream.
func (p *Pager) Start(ctx context.Context) (*Stream, error) {
	switch p.state {
	case statePaging, stateNotPaging:
		return p.stream, nil
	case stateClosed:
		return nil, ErrSessionClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	p.ctx, p.cancel = context.WithCancelCause(ctx)

	if p.TranscriptPath != "" {
		t, err := newTranscript(p.TranscriptPath)
		if err != nil {
			p.cancel(nil)
			p.ctx, p.cancel = nil, nil
			return nil, err
		}
		p.trans = t
	}

	if p.tty && !passthrough(p.argv) {
		if stream, err := p.launch(); err == nil {
			p.stream = stream
			p.state = statePaging
			return stream, nil
		}
		// The pager is missing or refused to start; fall back to unpaged
		// output on the destination itself.
	}
	p.reconfigure()
	p.state = stateNotPaging
	return p.stream, nil
}

// launch starts the pager subprocess and wires the session plumbing: the
// stdin pipe the caller writes into, the interrupt forwarder, and the
// process waiter.
func (p *Pager) launch() (*Stream, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(p.argv[0], p.argv[1:]...)
	cmd.Stdin = pr
	cmd.Stdout = p.pagerStdout()
	cmd.Stderr = os.Stderr
	if env := p.Command.EnvironmentVariables(p.config()); len(env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, err
	}
	_ = pr.Close() // the subprocess owns the read end now
	p.cmd = cmd

	// The pager owns the terminal, including interrupt keystrokes. Suspend
	// default interrupt handling and surface Ctrl-C to the write phase as a
	// context cancellation instead; the handler is restored only after the
	// subprocess has been waited for.
	p.sigc = make(chan os.Signal, 1)
	signal.Notify(p.sigc, os.Interrupt)

	p.sctx = stopper.WithContext(context.Background())
	p.sctx.Defer(func() {
		signal.Stop(p.sigc)
	})
	p.sctx.Go(func(sc *stopper.Context) error {
		for {
			select {
			case <-p.sigc:
				p.cancel(ErrInterrupted)
			case <-sc.Stopping():
				return nil
			}
		}
	})
	p.sctx.Go(func(*stopper.Context) error {
		// The session reaps the pager exactly once; its own exit status is
		// not part of the session outcome.
		_ = cmd.Wait()
		close(p.waitDone)
		// Unblock a writer still producing output for a dead pager.
		p.cancel(ErrPagerClosed)
		return nil
	})

	return newStream(pw, pw, !p.lineBuffered(), p.Errors, p.mirror()), nil
}

// pagerStdout selects the subprocess's stdout. The destination writer is
// wired directly; exec.Cmd copies into it when it is not descriptor-backed.
func (p *Pager) pagerStdout() io.Writer {
	if p.dest != nil {
		return p.dest
	}
	return os.Stdout
}

// reconfigure rewraps the destination for an unpaged session. Without an
// explicit buffering or error-strategy request and without a transcript,
// the destination's behavior is kept untouched.
func (p *Pager) reconfigure() {
	mirror := p.mirror()
	if p.LineBuffering == nil && p.Errors == ErrorsDefault && mirror == nil {
		p.stream = newStream(p.dest, nil, false, ErrorsDefault, nil)
		return
	}
	blockBuffered := p.LineBuffering != nil && !*p.LineBuffering
	p.stream = newStream(p.dest, nil, blockBuffered, p.Errors, mirror)
	if p.usesSlot {
		p.restore = p.Stdio.swap(p.stream)
	}
}

// Close exits the session: the caller-facing stream is flushed and closed,
// the pager subprocess, if any, is awaited, interrupt handling and the
// default-output slot are restored, and the transcript is committed. The
// session exit code is computed from writeErr, the error the write phase
// ended with, together with anything observed during teardown.
//
// Broken pipes and interrupts are expected ways for a paging session to
// end; they are absorbed, and Close returns nil for them. Any other
// writeErr is returned unchanged after its exit code is recorded. Close is
// idempotent: subsequent calls return writeErr untouched.
func (p *Pager) Close(writeErr error) error {
	switch p.state {
	case stateClosed:
		return writeErr
	case stateIdle:
		p.state = stateClosed
		return p.processOutcome(writeErr)
	}

	closeErr := p.stream.Close()
	if p.state == statePaging {
		<-p.waitDone
		p.sctx.Stop(stopGrace)
		_ = p.sctx.Wait()
	}
	if closeErr != nil && writeErr == nil {
		// The outcome of the drain stands in for the write phase; a pager
		// that quit early surfaces here as a broken pipe.
		writeErr = closeErr
	}
	if p.restore != nil {
		p.restore()
		p.restore = nil
	}

	err := p.processOutcome(writeErr)
	if p.trans != nil {
		if terr := p.trans.commit(); terr != nil && err == nil {
			if p.exitCode == ExitSuccess {
				p.exitCode = ExitFailure
			}
			err = terr
		}
		p.trans = nil
	}
	p.state = stateClosed
	if p.cancel != nil {
		p.cancel(nil)
	}
	return err
}

// processOutcome records the exit code for the session outcome and decides
// whether the error is suppressed. It resolves a bare context cancellation
// to the session's cancellation cause first, so writers may return
// ctx.Err() directly.
func (p *Pager) processOutcome(err error) error {
	if err == nil {
		p.exitCode = ExitSuccess
		return nil
	}
	if errors.Is(err, context.Canceled) && p.ctx != nil {
		if cause := context.Cause(p.ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			err = cause
		}
	}
	var status ExitStatus
	switch {
	case isBrokenPipe(err):
		p.exitCode = ExitBrokenPipe
		return nil
	case errors.Is(err, ErrInterrupted):
		p.exitCode = ExitInterrupt
		return nil
	case errors.As(err, &status):
		p.exitCode = status.Code
		return err
	default:
		p.exitCode = ExitFailure
		return err
	}
}

// config snapshots the settings that drive pager environment overlays
func (p *Pager) config() Config {
	return Config{
		Color:                  p.AllowColor,
		LineBufferingRequested: p.LineBuffering != nil && *p.LineBuffering,
		ResetTerminal:          p.ResetOnExit,
	}
}

// lineBuffered resolves the buffering policy for a paged stream: an explicit
// request wins, otherwise the destination's nature decides.
func (p *Pager) lineBuffered() bool {
	if p.LineBuffering != nil {
		return *p.LineBuffering
	}
	return p.tty
}

// mirror returns the transcript writer, or nil when no transcript is wanted
func (p *Pager) mirror() io.Writer {
	if p.trans == nil {
		return nil
	}
	return p.trans
}
