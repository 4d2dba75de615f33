package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/getmockd/provider/pkg/cli"
)

// TestMain registers the provider command so scripts run it in process.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"provider": cli.Main,
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			// Keep the host environment from changing the configuration.
			for _, name := range []string{"PROVIDER_PORT", "PROVIDER_VARIANT", "PROVIDER_COUNT", "PROVIDER_LOG_LEVEL", "PROVIDER_LOG_FORMAT", "PROVIDER_TIMEZONE"} {
				env.Setenv(name, "")
			}
			return nil
		},
	})
}
