package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/dshills/synstorm/internal/config"
	"github.com/dshills/synstorm/internal/logging"
	"github.com/dshills/synstorm/internal/report"
	"github.com/dshills/synstorm/internal/syntax"
	"github.com/dshills/synstorm/internal/syntax/adorn"
	"github.com/dshills/synstorm/internal/textbuf"
	"github.com/dshills/synstorm/internal/theme"
	"github.com/dshills/synstorm/internal/tracing"
	"github.com/dshills/synstorm/internal/worker"
)

const shutdownTimeout = 5 * time.Second

// session owns everything one command needs to classify a buffer.
type session struct {
	cfg     *config.Config
	logger  *logging.Logger
	theme   *theme.Theme
	profile termenv.Profile
	pool    *worker.Pool
	tracer  *tracing.Provider

	buf     *textbuf.Buffer
	engine  *syntax.Engine
	scripts []*adorn.Script
}

// newSession starts the worker pool and builds an engine over content.
// Trace output and logs go to the command's error stream.
func newSession(cmd *cobra.Command, opts *globalOptions, content string) (*session, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	profile, err := colorProfile(opts.color, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	errOut := cmd.ErrOrStderr()

	th, err := cfg.BuildTheme()
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg: cfg,
		logger: logging.New(logging.Config{
			Level:  cfg.LogLevel(),
			Output: errOut,
			Prefix: "synstorm",
		}),
		theme:   th,
		profile: profile,
		pool: worker.New(cfg.Workers, worker.WithPanicHandler(func(r any, _ []byte) {
			fmt.Fprintf(errOut, "synstorm: tokenizer task panicked: %v\n", r)
		})),
		buf: textbuf.New(content, textbuf.WithSource("synstorm")),
	}

	if err := s.pool.Start(); err != nil {
		return nil, fmt.Errorf("starting worker pool: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s.tracer, err = tracing.New(ctx, cfg.TracingConfig(errOut))
	if err != nil {
		s.Close()
		return nil, err
	}

	engineOpts, err := s.engineOptions()
	if err != nil {
		s.Close()
		return nil, err
	}

	s.engine = syntax.New(s.buf, syntax.Pool(s.pool), engineOpts...)
	if err := s.engine.Subscribe(s.buf.Bus()); err != nil {
		s.Close()
		return nil, err
	}

	s.logger.Debug("session ready workers=%d language=%s adornments=%v",
		cfg.Workers, cfg.Syntax.Language, s.engine.Adornments().Names())
	return s, nil
}

func (s *session) engineOptions() ([]syntax.Option, error) {
	keywords, identifiers := s.cfg.WordSets()
	opts := []syntax.Option{
		syntax.WithKeywords(keywords...),
		syntax.WithIdentifiers(identifiers...),
		syntax.WithCaseInsensitive(s.cfg.Syntax.CaseInsensitive),
		syntax.WithRainbowBrackets(s.cfg.Adornments.RainbowBrackets),
		syntax.WithLogger(s.logger),
	}
	if s.tracer.Enabled() {
		opts = append(opts, syntax.WithTracer(s.tracer.Tracer()))
	}

	for _, path := range s.cfg.Adornments.Scripts {
		script, err := adorn.LoadScriptFile(path, s.buf)
		if err != nil {
			return nil, err
		}
		s.scripts = append(s.scripts, script)
		opts = append(opts, syntax.WithAdornment(script))
	}
	return opts, nil
}

// runs returns the current classification as style runs.
func (s *session) runs() ([]report.Run, error) {
	styles := s.engine.Styles()
	return report.Runs(s.buf.String(), styles)
}

// Close stops the engine, the adornment scripts, the pool and the tracer.
func (s *session) Close() {
	if s.engine != nil {
		s.engine.Close()
	}
	for _, script := range s.scripts {
		script.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.pool.Stop(ctx); err != nil && !errors.Is(err, worker.ErrNotRunning) {
		s.logger.Warn("stopping worker pool: %v", err)
	}
	if s.tracer != nil {
		if err := s.tracer.Shutdown(ctx); err != nil {
			s.logger.Warn("flushing traces: %v", err)
		}
	}
}
