package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/provider/pkg/fixture"
)

// Environment variables read by ApplyEnv.
const (
	EnvPort      = "PROVIDER_PORT"
	EnvVariant   = "PROVIDER_VARIANT"
	EnvCount     = "PROVIDER_COUNT"
	EnvLogLevel  = "PROVIDER_LOG_LEVEL"
	EnvLogFormat = "PROVIDER_LOG_FORMAT"
	EnvTimezone  = "PROVIDER_TIMEZONE"
)

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return e.Path + " (line " + strconv.Itoa(e.Line) + ", column " + strconv.Itoa(e.Column) + "): " + e.Message
	}
	return e.Path + ": " + e.Message
}

var yamlLineRe = regexp.MustCompile(`line (\d+): (.*)`)

// syntaxError converts a yaml.v3 parse error into a ConfigError.
func syntaxError(path string, err error) *ConfigError {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	if m := yamlLineRe.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &ConfigError{Path: path, Line: line, Message: m[2]}
	}
	return &ConfigError{Path: path, Message: msg}
}

// LoadFile reads the YAML file at path and applies every key it sets to c.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.loadYAML(path, data)
}

func (c *Config) loadYAML(path string, data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return syntaxError(path, err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return &ConfigError{Path: path, Line: root.Line, Column: root.Column, Message: "config must be a mapping"}
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		target := c.field(key.Value)
		if target == nil {
			return &ConfigError{Path: path, Line: key.Line, Column: key.Column, Message: fmt.Sprintf("unknown key %q", key.Value)}
		}
		if err := value.Decode(target); err != nil {
			return &ConfigError{Path: path, Line: value.Line, Column: value.Column, Message: fmt.Sprintf("%s: %s", key.Value, decodeMessage(err))}
		}
		c.Set(key.Value, SourceFile)
	}
	return nil
}

// field returns a pointer to the field for a YAML key, or nil.
func (c *Config) field(key string) any {
	switch key {
	case "port":
		return &c.Port
	case "readTimeout":
		return &c.ReadTimeout
	case "writeTimeout":
		return &c.WriteTimeout
	case "variant":
		return &c.Variant
	case "count":
		return &c.Count
	case "animals":
		return &c.Animals
	case "stateChangePath":
		return &c.StateChangePath
	case "timezone":
		return &c.Timezone
	case "logLevel":
		return &c.LogLevel
	case "logFormat":
		return &c.LogFormat
	}
	return nil
}

func decodeMessage(err error) string {
	var te *yaml.TypeError
	if errors.As(err, &te) && len(te.Errors) > 0 {
		msg := te.Errors[0]
		if m := yamlLineRe.FindStringSubmatch(msg); m != nil {
			return m[2]
		}
		return msg
	}
	return err.Error()
}

// ApplyEnv applies PROVIDER_* environment variables to c.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", EnvPort, v)
		}
		c.Port = port
		c.Set("port", SourceEnv)
	}
	if v, ok := lookup(EnvVariant); ok && v != "" {
		c.Variant = fixture.Kind(strings.ToLower(v))
		c.Set("variant", SourceEnv)
	}
	if v, ok := lookup(EnvCount); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid count %q", EnvCount, v)
		}
		c.Count = n
		c.Set("count", SourceEnv)
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
		c.Set("logLevel", SourceEnv)
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.LogFormat = v
		c.Set("logFormat", SourceEnv)
	}
	if v, ok := lookup(EnvTimezone); ok && v != "" {
		c.Timezone = v
		c.Set("timezone", SourceEnv)
	}
	return nil
}

// Load layers the optional file at path and the environment over the
// defaults. Flags and Validate are left to the caller.
func Load(path string) (*Config, error) {
	cfg := NewDefault()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
