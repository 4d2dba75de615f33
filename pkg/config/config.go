package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve without a system zoneinfo
	"unicode"

	"github.com/getmockd/provider/pkg/fixture"
	"github.com/getmockd/provider/pkg/logging"
	"github.com/getmockd/provider/pkg/states"
)

// DefaultPort is the default HTTP port for the provider.
const DefaultPort = 8080

// DefaultReadTimeout is the default read timeout in seconds.
const DefaultReadTimeout = 30

// DefaultWriteTimeout is the default write timeout in seconds.
const DefaultWriteTimeout = 30

// Config sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Config is the complete provider configuration.
type Config struct {
	// Server settings
	Port         int `yaml:"port" json:"port"`
	ReadTimeout  int `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout int `yaml:"writeTimeout" json:"writeTimeout"`

	// Fixture settings
	Variant fixture.Kind     `yaml:"variant" json:"variant"`
	Count   int              `yaml:"count" json:"count"`
	Animals []fixture.Animal `yaml:"animals,omitempty" json:"animals,omitempty"`

	// StateChangePath is where external verifiers post provider states.
	StateChangePath string `yaml:"stateChangePath" json:"stateChangePath"`

	// Timezone is an IANA name used to interpret dates without an offset.
	// Empty means the host's local zone.
	Timezone string `yaml:"timezone,omitempty" json:"timezone,omitempty"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`

	// Sources tracks where each value came from.
	Sources map[string]string `yaml:"-" json:"-"`
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	cfg := &Config{
		Port:            DefaultPort,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		Variant:         fixture.KindCount,
		Count:           fixture.DefaultCount,
		StateChangePath: states.DefaultStateChangePath,
		LogLevel:        "info",
		LogFormat:       string(logging.FormatText),
		Sources:         make(map[string]string),
	}
	for _, key := range []string{"port", "readTimeout", "writeTimeout", "variant", "count", "stateChangePath", "logLevel", "logFormat"} {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}

// Set records that key was set by source.
func (c *Config) Set(key, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
}

// Source returns where key was set, or "" if it never was.
func (c *Config) Source(key string) string {
	return c.Sources[key]
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range (0-65535)", c.Port)
	}
	if c.ReadTimeout < 0 || c.ReadTimeout > 3600 {
		return fmt.Errorf("readTimeout %d is out of range (0-3600)", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 || c.WriteTimeout > 3600 {
		return fmt.Errorf("writeTimeout %d is out of range (0-3600)", c.WriteTimeout)
	}
	if _, err := fixture.ParseKind(string(c.Variant)); err != nil {
		return err
	}
	if c.Count < 0 {
		return fmt.Errorf("count %d: %w", c.Count, fixture.ErrNegativeCount)
	}
	for i, a := range c.Animals {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("animals[%d]: name is required", i)
		}
	}
	if !strings.HasPrefix(c.StateChangePath, "/") {
		return fmt.Errorf("stateChangePath %q must start with /", c.StateChangePath)
	}
	if strings.ContainsAny(c.StateChangePath, "{}%") || strings.IndexFunc(c.StateChangePath, unicode.IsSpace) >= 0 {
		return fmt.Errorf("stateChangePath %q must be a literal path without wildcards, escapes or spaces", c.StateChangePath)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("logLevel %q is not one of debug, info, warn, error", c.LogLevel)
	}
	if c.LogFormat != "" && !strings.EqualFold(c.LogFormat, string(logging.FormatText)) && !strings.EqualFold(c.LogFormat, string(logging.FormatJSON)) {
		return fmt.Errorf("logFormat %q must be text or json", c.LogFormat)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Kind returns the configured fixture variant, defaulting to count.
func (c *Config) Kind() fixture.Kind {
	k, err := fixture.ParseKind(string(c.Variant))
	if err != nil {
		return fixture.KindCount
	}
	return k
}

// InitialState builds the fixture the server starts with. An explicit
// animals list seeds the animals variant; otherwise the built-in list is used.
func (c *Config) InitialState() (fixture.State, error) {
	switch c.Kind() {
	case fixture.KindAnimals:
		if len(c.Animals) > 0 {
			return fixture.Animals(c.Animals), nil
		}
		return fixture.Default(fixture.KindAnimals), nil
	default:
		return fixture.Count(c.Count)
	}
}

// Location resolves Timezone. Empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ReadTimeoutDuration returns ReadTimeout as a duration.
func (c *Config) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns WriteTimeout as a duration.
func (c *Config) WriteTimeoutDuration() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

// Logging returns the logging configuration described by c.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.LogLevel)
	cfg.Format = logging.ParseFormat(c.LogFormat)
	return cfg
}
