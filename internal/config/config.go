// Package config loads synstorm configuration from defaults, an optional
// YAML file and SYNSTORM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/dshills/synstorm/internal/logging"
	"github.com/dshills/synstorm/internal/theme"
	"github.com/dshills/synstorm/internal/tracing"
)

// EnvPrefix is the prefix of environment variables that override settings.
const EnvPrefix = "SYNSTORM"

// Errors returned by configuration loading and validation.
var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrUnknownPreset  = errors.New("unknown language preset")
	ErrConfigNotFound = errors.New("config file not found")
)

// Config holds all configuration options.
type Config struct {
	Syntax     SyntaxConfig     `mapstructure:"syntax"`
	Workers    int              `mapstructure:"workers"`
	Log        LogConfig        `mapstructure:"log"`
	Theme      ThemeConfig      `mapstructure:"theme"`
	Adornments AdornmentsConfig `mapstructure:"adornments"`
	Trace      TraceConfig      `mapstructure:"trace"`
}

// SyntaxConfig configures the tokenizer.
type SyntaxConfig struct {
	// Language selects a preset keyword and identifier set. Explicit
	// Keywords and Identifiers replace the preset's lists.
	Language        string   `mapstructure:"language"`
	CaseInsensitive bool     `mapstructure:"case_insensitive"`
	Keywords        []string `mapstructure:"keywords"`
	Identifiers     []string `mapstructure:"identifiers"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ThemeConfig selects a theme and overrides individual category colors.
type ThemeConfig struct {
	Preset string            `mapstructure:"preset"`
	Colors map[string]string `mapstructure:"colors"`
}

// AdornmentsConfig configures the overlays.
type AdornmentsConfig struct {
	RainbowBrackets bool `mapstructure:"rainbow_brackets"`

	// Scripts are paths to Lua adornment scripts, consulted in order.
	Scripts []string `mapstructure:"scripts"`
}

// TraceConfig configures span export.
type TraceConfig struct {
	// Exporter is none, stdout or otlp.
	Exporter   string  `mapstructure:"exporter"`
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Syntax: SyntaxConfig{
			Language: "go",
		},
		Workers: 1,
		Log: LogConfig{
			Level: "warn",
		},
		Theme: ThemeConfig{
			Preset: "dark",
		},
		Adornments: AdornmentsConfig{
			RainbowBrackets: true,
		},
		Trace: TraceConfig{
			Exporter:   tracing.ExporterNone,
			Endpoint:   tracing.DefaultEndpoint,
			SampleRate: 1,
		},
	}
}

// Load reads configuration. An empty path uses defaults and the environment
// only; a non-empty path must name a readable YAML file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("syntax.language", d.Syntax.Language)
	v.SetDefault("syntax.case_insensitive", d.Syntax.CaseInsensitive)
	v.SetDefault("syntax.keywords", d.Syntax.Keywords)
	v.SetDefault("syntax.identifiers", d.Syntax.Identifiers)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("theme.preset", d.Theme.Preset)
	v.SetDefault("theme.colors", map[string]string{})
	v.SetDefault("adornments.rainbow_brackets", d.Adornments.RainbowBrackets)
	v.SetDefault("adornments.scripts", []string{})
	v.SetDefault("trace.exporter", d.Trace.Exporter)
	v.SetDefault("trace.endpoint", d.Trace.Endpoint)
	v.SetDefault("trace.sample_rate", d.Trace.SampleRate)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Syntax.Language != "" {
		if _, ok := presets[strings.ToLower(c.Syntax.Language)]; !ok {
			return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnknownPreset, c.Syntax.Language)
		}
	}
	if !validLevel(c.Log.Level) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Trace.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, tracing.ErrUnknownExporter, c.Trace.Exporter)
	}
	if c.Trace.SampleRate < 0 || c.Trace.SampleRate > 1 {
		return fmt.Errorf("%w: trace sample_rate must be in [0,1], got %g", ErrInvalidConfig, c.Trace.SampleRate)
	}
	if _, err := c.BuildTheme(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func validLevel(s string) bool {
	switch strings.ToLower(s) {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() logging.Level {
	if c.Log.Level == "" {
		return logging.LevelWarn
	}
	return logging.ParseLevel(c.Log.Level)
}

// BuildTheme returns the configured theme with color overrides applied.
func (c *Config) BuildTheme() (*theme.Theme, error) {
	th, err := theme.ByName(c.Theme.Preset)
	if err != nil {
		return nil, err
	}
	if err := th.Override(c.Theme.Colors); err != nil {
		return nil, err
	}
	return th, nil
}

// TracingConfig returns the tracer settings. Stdout spans go to out.
func (c *Config) TracingConfig(out io.Writer) tracing.Config {
	return tracing.Config{
		Exporter:   c.Trace.Exporter,
		Endpoint:   c.Trace.Endpoint,
		SampleRate: c.Trace.SampleRate,
		Output:     out,
	}
}

// WordSets returns the keyword and identifier sets to classify with.
func (c *Config) WordSets() (keywords, identifiers []string) {
	p := presets[strings.ToLower(c.Syntax.Language)]

	keywords = p.keywords
	if len(c.Syntax.Keywords) > 0 {
		keywords = c.Syntax.Keywords
	}
	identifiers = p.identifiers
	if len(c.Syntax.Identifiers) > 0 {
		identifiers = c.Syntax.Identifiers
	}
	return keywords, identifiers
}

// Languages returns the names of the language presets.
func Languages() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
