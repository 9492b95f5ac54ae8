package autopage

import (
	"context"
	"io"
)

// WriteFunc is the write phase of a paging session. out is the session
// stream; ctx is the session context, cancelled with a discriminating cause
// when the pager exits early or an interrupt arrives.
type WriteFunc func(ctx context.Context, out io.Writer) error

// Run wraps fn in a complete paging session and returns the process exit
// code for the outcome together with fn's error, unless the session
// absorbed it. The common shape of a paging program is:
//
//	code, err := autopage.Run(ctx, func(ctx context.Context, out io.Writer) error {
//	        for _, line := range lines {
//	                if _, err := fmt.Fprintln(out, line); err != nil {
//	                        return err
//	                }
//	        }
//	        return nil
//	})
//	if err != nil {
//	        log.Print(err)
//	}
//	os.Exit(code)
func Run(ctx context.Context, fn WriteFunc, opts ...Option) (int, error) {
	p, err := New(opts...)
	if err != nil {
		return ExitFailure, err
	}
	out, err := p.Start(ctx)
	if err != nil {
		err = p.Close(err)
		return p.ExitCode(), err
	}
	err = p.Close(fn(p.Context(), out))
	return p.ExitCode(), err
}
