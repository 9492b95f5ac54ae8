// Package cobrahelp routes cobra help output through an automatic pager.
//
// Long help text scrolls off screen; installing the hook pages it the way
// git pages its man pages, while leaving --help output untouched when it is
// piped or redirected:
//
//	root := &cobra.Command{Use: "mytool"}
//	cobrahelp.Install(root)
//
// The hook is explicit and local to the command tree it is installed on;
// nothing else in the process changes.
package cobrahelp

import (
	"context"
	"io"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/axondata/go-autopage"
)

// Install replaces root's help function with one that writes the help text
// through a paging session targeting the command's output stream. opts are
// applied to every session after the defaults, which disable terminal reset
// so the help text stays visible after the pager quits. Help behavior for
// non-terminal output is unchanged.
func Install(root *cobra.Command, opts ...autopage.Option) {
	helpFn := root.HelpFunc()
	root.SetHelpFunc(func(c *cobra.Command, args []string) {
		ctx := c.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		dest := c.OutOrStdout()
		sessionOpts := append([]autopage.Option{
			autopage.WithOutput(dest),
			autopage.WithResetOnExit(false),
		}, opts...)
		p, err := autopage.New(sessionOpts...)
		if err != nil {
			helpFn(c, args)
			return
		}
		out, err := p.Start(ctx)
		if err != nil {
			helpFn(c, args)
			return
		}
		// Help rendering has no error channel of its own; collect the first
		// write error and let the session map it. Quitting the pager mid-help
		// must not spill template errors onto stderr.
		q := &quietWriter{w: out}
		// cobra has no getter for the command's own out writer. Clear it and
		// check where resolution lands: still on dest means the writer was
		// inherited, and restoring nil keeps it that way instead of pinning
		// dest onto this command.
		c.SetOut(nil)
		hadOut := !sameWriter(c.OutOrStdout(), dest)
		c.SetOut(q)
		helpFn(c, args)
		if hadOut {
			c.SetOut(dest)
		} else {
			c.SetOut(nil)
		}
		if err := p.Close(q.err); err != nil {
			c.PrintErrln("Error:", err)
		}
	})
}

// sameWriter reports whether a and b are the same writer, treating values of
// uncomparable dynamic types as distinct rather than panicking.
func sameWriter(a, b io.Writer) bool {
	if t := reflect.TypeOf(a); t != nil && t == reflect.TypeOf(b) && !t.Comparable() {
		return false
	}
	return a == b
}

// quietWriter reports success for every write after the first error, holding
// the error for session teardown instead of surfacing it to the template
// renderer.
type quietWriter struct {
	w   io.Writer
	err error
}

func (q *quietWriter) Write(p []byte) (int, error) {
	if q.err != nil {
		return len(p), nil
	}
	n, err := q.w.Write(p)
	if err != nil {
		q.err = err
		return len(p), nil
	}
	return n, nil
}
