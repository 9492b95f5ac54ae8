// Package autopage provides automatic paging of program output: when the
// output is going to an interactive terminal it is routed through the user's
// pager, and when it is not (a pipe, a file, a CI log) it passes through
// untouched. Programs keep one code path; the session decides.
//
// The core functionality centers around the Pager type, which manages one
// paging session from Start to Close:
//
//	p, err := autopage.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := p.Start(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_, werr := fmt.Fprintln(out, report)
//	if err := p.Close(werr); err != nil {
//	    log.Print(err)
//	}
//	os.Exit(p.ExitCode())
//
// Run wraps the same lifecycle around a callback for the common case:
//
//	code, err := autopage.Run(ctx, func(ctx context.Context, out io.Writer) error {
//	    _, err := fmt.Fprintln(out, report)
//	    return err
//	})
//
// # Pager Selection
//
// The pager command is a strategy, not a string. Default() honors the PAGER
// environment variable with a guard for privileged processes; Less, More,
// and LV name specific programs and know their configuration environment
// variables; Custom parses an arbitrary command line; FromEnvironment
// consults tool-specific variables first:
//
//	p, err := autopage.New(
//	    autopage.WithPager(autopage.FromEnvironment("MYTOOL_PAGER", "PAGER")),
//	)
//
// A user who sets PAGER=cat gets no subprocess at all, and a configured
// pager that cannot be launched degrades silently to direct output. Paging
// is a convenience; it must never be the reason a program fails.
//
// # Exit Codes
//
// A user quitting the pager mid-output, or pressing Ctrl-C, ends the session
// early on purpose. The session absorbs the resulting broken-pipe and
// interrupt errors, records the conventional exit code for them (128 plus
// the signal number), and Close returns nil. Genuine errors pass through
// Close unchanged and map to exit code 1, or to the code carried by an
// ExitStatus error. After Close, ExitCode returns the code the process
// should exit with.
//
// # Design Philosophy
//
// This library prioritizes:
//
//   - One code path whether output is paged, piped, or redirected
//   - Silent degradation when no pager can run
//   - User control (PAGER, LESS, LV are respected, never clobbered)
//   - Context-aware write phases with typed cancellation causes
//   - Exit codes matching what shells expect from interrupted pipelines
//
// Follow and the transcript option are included because pager sessions are
// most often wrapped around log output, and tailing a growing file into a
// session, or keeping an atomically committed copy of what was shown, are
// patterns that otherwise get reimplemented around the library. Both remain
// optional; the Pager type provides all core functionality.
package autopage
