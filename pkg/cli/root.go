package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "provider",
	Short: "provider serves and verifies the animals provider for consumer-driven contract tests",
	Long: `provider runs the HTTP service behind GET /provider.json and replays pact
files against it.

The fixture is either a list of animals or a bare count, selected with
--variant. Provider states named by a pact ("data count is > 0",
"data count is == 0") are set up in process or over POST /_pact/provider_states.

Configuration can be provided via flags, PROVIDER_* environment variables or
a YAML file passed with --config.`,
	SilenceUsage:  true,
	SilenceErrors: true, // errors are printed by Main
}

// Main runs the root command with os.Args and returns the process exit code.
func Main() int {
	return run(os.Args[1:])
}

func run(args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(Main())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
