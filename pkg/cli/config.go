package cli

import (
	"github.com/spf13/cobra"

	"github.com/getmockd/provider/pkg/config"
	"github.com/getmockd/provider/pkg/fixture"
	"github.com/getmockd/provider/pkg/logging"
)

// configFlags are the configuration flags shared by serve, verify and states.
type configFlags struct {
	configFile string
	port       int
	variant    string
	count      int
	timezone   string
	logLevel   string
	logFormat  string
	statePath  string
}

func (f *configFlags) register(cmd *cobra.Command, withServer bool) {
	fs := cmd.Flags()
	fs.StringVarP(&f.configFile, "config", "c", "", "Path to a YAML config file")
	fs.StringVar(&f.variant, "variant", string(fixture.KindCount), "Fixture variant (animals or count)")
	fs.IntVar(&f.count, "count", fixture.DefaultCount, "Initial count for the count variant")
	fs.StringVar(&f.timezone, "timezone", "", "IANA timezone for dates without an offset (default: local)")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", string(logging.FormatText), "Log format (text or json)")
	if withServer {
		fs.IntVarP(&f.port, "port", "p", config.DefaultPort, "HTTP server port")
		fs.StringVar(&f.statePath, "state-change-path", "/_pact/provider_states", "Path of the state change endpoint")
	}
}

// load layers defaults, the config file, the environment and explicitly set
// flags, in that order of increasing precedence.
func (f *configFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("port") {
		cfg.Port = f.port
		cfg.Set("port", config.SourceFlag)
	}
	if fs.Changed("variant") {
		cfg.Variant = fixture.Kind(f.variant)
		cfg.Set("variant", config.SourceFlag)
	}
	if fs.Changed("count") {
		cfg.Count = f.count
		cfg.Set("count", config.SourceFlag)
	}
	if fs.Changed("timezone") {
		cfg.Timezone = f.timezone
		cfg.Set("timezone", config.SourceFlag)
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
		cfg.Set("logLevel", config.SourceFlag)
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = f.logFormat
		cfg.Set("logFormat", config.SourceFlag)
	}
	if fs.Changed("state-change-path") {
		cfg.StateChangePath = f.statePath
		cfg.Set("stateChangePath", config.SourceFlag)
	}
	return cfg, cfg.Validate()
}
