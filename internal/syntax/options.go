package syntax

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/synstorm/internal/logging"
	"github.com/dshills/synstorm/internal/syntax/adorn"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithKeywords adds words classified as Keyword.
func WithKeywords(words ...string) Option {
	return func(e *Engine) {
		e.keywords = append(e.keywords, words...)
	}
}

// WithIdentifiers adds words classified as Identifier.
func WithIdentifiers(words ...string) Option {
	return func(e *Engine) {
		e.identifiers = append(e.identifiers, words...)
	}
}

// WithCaseInsensitive matches keywords and identifiers regardless of case.
func WithCaseInsensitive(on bool) Option {
	return func(e *Engine) {
		e.caseInsensitive = on
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer sets the tracer used for tokenization spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithAdornment registers an overlay. Overlays are consulted in registration
// order, after the rainbow bracket overlay when that is enabled.
func WithAdornment(a adorn.Adornment) Option {
	return func(e *Engine) {
		if a != nil {
			e.extra = append(e.extra, a)
		}
	}
}

// WithRainbowBrackets enables or disables the bracket overlay. It is
// enabled by default.
func WithRainbowBrackets(on bool) Option {
	return func(e *Engine) {
		e.rainbow = on
	}
}
