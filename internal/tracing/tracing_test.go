package tracing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewDisabled(t *testing.T) {
	for _, exporter := range []string{"", ExporterNone} {
		p, err := New(context.Background(), Config{Exporter: exporter})
		if err != nil {
			t.Fatalf("New(%q) error = %v", exporter, err)
		}
		if p.Enabled() {
			t.Errorf("New(%q).Enabled() = true, want false", exporter)
		}
		_, span := p.Tracer().Start(context.Background(), "noop")
		span.End()
		if err := p.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	}
}

func TestNewStdout(t *testing.T) {
	var out bytes.Buffer
	p, err := New(context.Background(), Config{Exporter: ExporterStdout, Output: &out})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !p.Enabled() {
		t.Fatal("Enabled() = false, want true")
	}

	_, span := p.Tracer().Start(context.Background(), "syntax.tokenize")
	span.End()
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, `"Name": "syntax.tokenize"`) {
		t.Errorf("output missing span name:\n%s", got)
	}
	if !strings.Contains(got, DefaultServiceName) {
		t.Errorf("output missing service name:\n%s", got)
	}
}

func TestNewUnknownExporter(t *testing.T) {
	_, err := New(context.Background(), Config{Exporter: "zipkin"})
	if !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("New() error = %v, want ErrUnknownExporter", err)
	}
}
