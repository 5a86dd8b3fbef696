package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/synstorm/internal/editscript"
)

func newReplayCmd(opts *globalOptions) *cobra.Command {
	var (
		format string
		each   bool
	)

	cmd := &cobra.Command{
		Use:   "replay SCRIPT",
		Short: "Apply an edit script to a live buffer and print the result",
		Long: `replay loads the script's initial text, applies its edits one at a
time while the classifier follows along, and prints the final runs.
Scripts ending in .json are read as JSON, anything else as YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}

			script, err := editscript.ParseFile(args[0])
			if err != nil {
				return err
			}

			s, err := newSession(cmd, opts, script.Text)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			for i, e := range script.Edits {
				if err := e.Apply(s.buf); err != nil {
					return fmt.Errorf("%s: edit %d: %w", script.Name, i+1, err)
				}
				if !each {
					continue
				}
				if _, err := fmt.Fprintf(out, "# %d: %s\n", i+1, e); err != nil {
					return err
				}
				if err := writeReport(out, s, format); err != nil {
					return err
				}
			}

			if each {
				if _, err := fmt.Fprintln(out, "# final"); err != nil {
					return err
				}
			}
			if err := writeReport(out, s, format); err != nil {
				return err
			}

			stats := s.engine.Stats()
			s.logger.Info("replayed %s edits=%d passes=%d cancelled=%d",
				script.Name, len(script.Edits), stats.Passes, stats.Cancelled)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json, ansi)")
	cmd.Flags().BoolVar(&each, "each", false, "print the runs after every edit")
	return cmd
}
