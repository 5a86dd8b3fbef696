package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/synstorm/internal/config"
	"github.com/dshills/synstorm/internal/tracing"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	workers    int
	language   string
	theme      string
	trace      string
	color      string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "synstorm",
		Short: "Incremental syntax classification for live text buffers",
		Long: `synstorm classifies every character of a buffer and keeps the
classification current while the buffer is edited.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.IntVar(&opts.workers, "workers", -1, "background workers (0 runs passes inline)")
	flags.StringVarP(&opts.language, "language", "l", "", "language preset (cpp, go, lua)")
	flags.StringVar(&opts.theme, "theme", "", "color theme (dark, light)")
	flags.StringVar(&opts.trace, "trace", "", "export tokenization spans (stdout, otlp, none)")
	flags.Lookup("trace").NoOptDefVal = tracing.ExporterStdout
	flags.StringVar(&opts.color, "color", colorTrueColor, "ansi color profile (truecolor, 256, 16, none, auto)")

	root.AddCommand(
		newClassifyCmd(opts),
		newReplayCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

// loadConfig reads the configuration file and applies flag overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.workers >= 0 {
		cfg.Workers = o.workers
	}
	if o.language != "" {
		cfg.Syntax.Language = o.language
		cfg.Syntax.Keywords = nil
		cfg.Syntax.Identifiers = nil
	}
	if o.theme != "" {
		cfg.Theme.Preset = o.theme
	}
	if o.trace != "" {
		cfg.Trace.Exporter = o.trace
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
