package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dshills/synstorm/internal/editscript"
)

const defaultDebounce = 100 * time.Millisecond

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		format   string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Reclassify a file every time it is saved",
		Long: `watch classifies FILE, then follows it on disk. Each save is diffed
against the live buffer and applied as edits, so only the changed
ranges are re-tokenized. Runs are printed after every save.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			s, err := newSession(cmd, opts, string(data))
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if err := writeReport(out, s, format); err != nil {
				return err
			}

			return watchFile(cmd.Context(), path, debounce, func() error {
				n, err := reload(s, path)
				if err != nil {
					return err
				}
				if n == 0 {
					return nil
				}
				s.logger.Debug("reloaded %s edits=%d", path, n)
				return writeRevision(out, s, format)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json, ansi)")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "wait this long after a change before reloading")
	return cmd
}

// reload diffs the file on disk against the live buffer and applies the
// difference as edits. It returns the number of edits applied.
func reload(s *session, path string) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	edits := editscript.Diff(s.buf.String(), string(data))
	for _, e := range edits {
		if err := e.Apply(s.buf); err != nil {
			return 0, err
		}
	}
	return len(edits), nil
}

func writeRevision(w io.Writer, s *session, format string) error {
	if format != formatJSON {
		if _, err := fmt.Fprintf(w, "# %s\n", time.Now().Format(time.TimeOnly)); err != nil {
			return err
		}
	}
	return writeReport(w, s, format)
}

// watchFile calls onChange after path is written, created or renamed into
// place, once no further change has arrived for debounce. It watches the
// parent directory so editors that save by rename are followed. It returns
// when ctx is done or onChange fails.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", path, err)

		case <-timer.C:
			if _, err := os.Stat(path); err != nil {
				// Mid-rename; the create event re-arms the timer.
				continue
			}
			if err := onChange(); err != nil {
				return err
			}
		}
	}
}
