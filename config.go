package gridsearch

import (
	"io"

	"github.com/coregx/coregex/meta"
	"github.com/sirupsen/logrus"

	"github.com/coregx/gridsearch/engine"
)

// Config controls how a Searcher compiles and runs patterns.
//
// Config is tagged for TOML and YAML so it can be loaded from a file; decode
// onto DefaultConfig() to keep defaults for fields the file omits.
//
// Example:
//
//	config := gridsearch.DefaultConfig()
//	config.Backend = engine.KindNative // never load PCRE2
//	s, err := gridsearch.New(g, q, sink, config)
type Config struct {
	// Backend selects the regex backend: auto, pcre, native or literal.
	// Default: auto
	Backend engine.Kind `toml:"backend" yaml:"backend"`

	// LibraryPath is the PCRE2 library loaded by the auto and pcre
	// backends. Only the first load attempt in a process uses it.
	// Default: engine.DefaultPCRELibrary
	LibraryPath string `toml:"library_path" yaml:"library_path"`

	// CaseSensitive disables case-insensitive matching.
	// Default: false
	CaseSensitive bool `toml:"case_sensitive" yaml:"case_sensitive"`

	// Engine tunes the native engine.
	// Default: meta.DefaultConfig()
	Engine meta.Config `toml:"engine" yaml:"engine"`
}

// DefaultConfig returns a configuration that matches case-insensitively and
// prefers PCRE2 when it is installed.
func DefaultConfig() Config {
	return Config{
		Backend: engine.KindAuto,
		Engine:  meta.DefaultConfig(),
	}
}

// Validate checks the configuration. It returns a *ConfigError naming the
// first invalid field.
func (c Config) Validate() error {
	if _, err := engine.ParseKind(string(c.Backend)); err != nil {
		return &ConfigError{
			Field:   "Backend",
			Message: "must be one of auto, pcre, native, literal",
		}
	}

	// The zero engine config means defaults.
	if c.Engine != (meta.Config{}) {
		if err := c.Engine.Validate(); err != nil {
			return &ConfigError{
				Field:   "Engine",
				Message: err.Error(),
			}
		}
	}
	return nil
}

func (c Config) engineOptions() engine.Options {
	return engine.Options{
		CaseSensitive: c.CaseSensitive,
		Engine:        c.Engine,
	}
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "gridsearch: invalid config: " + e.Field + ": " + e.Message
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
