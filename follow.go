package autopage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// follower holds the resolved Follow settings
type follower struct {
	debounce time.Duration
	fromEnd  bool
}

// FollowOption configures Follow
type FollowOption func(*follower)

// FollowFromEnd skips the file's current contents and streams only data
// appended after the follow begins, like tail -f without the initial lines.
func FollowFromEnd() FollowOption {
	return func(f *follower) {
		f.fromEnd = true
	}
}

// FollowDebounce sets the quiet window used to coalesce rapid bursts of
// writes before the file is read again
func FollowDebounce(d time.Duration) FollowOption {
	return func(f *follower) {
		f.debounce = d
	}
}

// Follow copies the file at path to out and keeps copying data appended to
// it until ctx is cancelled or a write fails. Rotation (the file replaced
// under the same name) and truncation are picked up and the follow carries
// on with the new contents. Write errors are returned as-is, so a
// surrounding paging session maps a reader that went away to its usual
// exit code:
//
//	code, err := autopage.Run(ctx, func(ctx context.Context, out io.Writer) error {
//	        return autopage.Follow(ctx, logPath, out)
//	}, autopage.WithLineBuffering(true))
func Follow(ctx context.Context, path string, out io.Writer, opts ...FollowOption) error {
	f := &follower{debounce: DefaultFollowDebounce}
	for _, opt := range opts {
		opt(f)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("autopage: following %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if f.fromEnd {
		if _, err := file.Seek(0, io.SeekEnd); err != nil {
			return fmt.Errorf("autopage: following %s: %w", path, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("autopage: following %s: %w", path, err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Watch the directory rather than the file so a rotated file is still
	// seen when it reappears under the same name.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("autopage: following %s: %w", path, err)
	}

	drain := func() error {
		if fi, err := file.Stat(); err == nil {
			if pos, perr := file.Seek(0, io.SeekCurrent); perr == nil && fi.Size() < pos {
				// Truncated underneath us; start over from the top.
				if _, serr := file.Seek(0, io.SeekStart); serr != nil {
					return serr
				}
			}
		}
		_, err := io.Copy(out, file)
		return err
	}

	// Data written between Open and watcher.Add is already in the file, so
	// the initial drain picks it up.
	if err := drain(); err != nil {
		return err
	}

	base := filepath.Base(path)
	timer := time.NewTimer(f.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// The file was rotated; pick up its replacement.
				if nf, err := os.Open(path); err == nil {
					_ = file.Close()
					file = nf
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(f.debounce)

		case <-timer.C:
			if err := drain(); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				return fmt.Errorf("autopage: following %s: %w", path, err)
			}
		}
	}
}
