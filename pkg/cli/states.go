package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/provider/pkg/cli/internal/output"
	"github.com/getmockd/provider/pkg/contract"
	"github.com/getmockd/provider/pkg/server"
)

type statesFlags struct {
	configFlags
	pact string
}

var statesFlagVals statesFlags

// StateStatus reports whether a state declared by a pact has a hook.
type StateStatus struct {
	Name       string `json:"name"`
	Registered bool   `json:"registered"`
}

// StatesOutput is the JSON output of the states command.
type StatesOutput struct {
	Variant    string        `json:"variant"`
	Registered []string      `json:"registered"`
	Declared   []StateStatus `json:"declared,omitempty"`
}

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "List provider states and check a pact against them",
	Long: `List the provider states the provider can set up. With --pact, list the
states the pact declares and fail if any of them has no hook.`,
	Example: `  provider states
  provider states --pact examples/pacts/our_consumer-count_provider.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStates(cmd, &statesFlagVals)
	},
}

func runStates(cmd *cobra.Command, f *statesFlags) error {
	cfg, err := f.load(cmd)
	if err != nil {
		return err
	}
	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	d := srv.Dispatcher()

	out := StatesOutput{
		Variant:    string(cfg.Kind()),
		Registered: d.Names(),
	}

	var declared []string
	if f.pact != "" {
		pacts, err := contract.LoadGlob(f.pact)
		if err != nil {
			return err
		}
		seen := make(map[string]bool)
		for _, p := range pacts {
			for _, name := range p.States() {
				if seen[name] {
					continue
				}
				seen[name] = true
				declared = append(declared, name)
				out.Declared = append(out.Declared, StateStatus{Name: name, Registered: d.Has(name)})
			}
		}
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if err := output.JSON(w, out); err != nil {
			return err
		}
	} else {
		tw := output.Table(w)
		fmt.Fprintln(tw, "STATE\tSTATUS")
		if f.pact == "" {
			for _, name := range out.Registered {
				fmt.Fprintf(tw, "%s\tregistered\n", name)
			}
		} else {
			for _, s := range out.Declared {
				status := "missing"
				if s.Registered {
					status = "registered"
				}
				fmt.Fprintf(tw, "%s\t%s\n", s.Name, status)
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return d.Validate(declared)
}

func init() {
	statesFlagVals.configFlags.register(statesCmd, false)
	statesCmd.Flags().StringVar(&statesFlagVals.pact, "pact", "", "Pact file or glob whose states to check")
	rootCmd.AddCommand(statesCmd)
}
