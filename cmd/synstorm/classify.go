package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newClassifyCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "classify FILE",
		Short: "Classify a file and print its style runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}

			data, err := os.ReadFile(args[0]) //nolint:gosec // path is supplied by the user
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			s, err := newSession(cmd, opts, string(data))
			if err != nil {
				return err
			}
			defer s.Close()

			s.engine.WaitForIdle()
			return writeReport(cmd.OutOrStdout(), s, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json, ansi)")
	return cmd
}
