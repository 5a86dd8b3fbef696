package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/dshills/synstorm/internal/report"
)

// Color profiles accepted by --color.
const (
	colorTrueColor = "truecolor"
	color256       = "256"
	color16        = "16"
	colorNone      = "none"
	colorAuto      = "auto"
)

// colorProfile resolves a --color value. auto inspects w and the
// environment.
func colorProfile(name string, w io.Writer) (termenv.Profile, error) {
	switch name {
	case colorTrueColor, "":
		return termenv.TrueColor, nil
	case color256:
		return termenv.ANSI256, nil
	case color16:
		return termenv.ANSI, nil
	case colorNone:
		return termenv.Ascii, nil
	case colorAuto:
		return termenv.NewOutput(w).EnvColorProfile(), nil
	default:
		return termenv.Ascii, fmt.Errorf("unknown color profile %q", name)
	}
}

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatANSI = "ansi"
)

func validFormat(f string) error {
	switch f {
	case formatText, formatJSON, formatANSI:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want %s)", f,
			strings.Join([]string{formatText, formatJSON, formatANSI}, ", "))
	}
}

// writeReport writes the session's current classification in format.
func writeReport(w io.Writer, s *session, format string) error {
	runs, err := s.runs()
	if err != nil {
		return err
	}

	switch format {
	case formatJSON:
		doc, err := report.JSON(s.buf.Len(), runs)
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = fmt.Fprintln(w, doc)
		return err
	case formatANSI:
		if err := report.WriteANSI(w, s.buf.String(), runs, s.theme, s.profile); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	default:
		return report.WriteText(w, runs)
	}
}
