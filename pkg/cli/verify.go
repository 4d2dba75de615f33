package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/provider/pkg/cli/internal/output"
	"github.com/getmockd/provider/pkg/config"
	"github.com/getmockd/provider/pkg/contract"
	"github.com/getmockd/provider/pkg/fixture"
	"github.com/getmockd/provider/pkg/logging"
	"github.com/getmockd/provider/pkg/provider"
	"github.com/getmockd/provider/pkg/server"
	"github.com/getmockd/provider/pkg/states"
	"github.com/getmockd/provider/pkg/verifier"
)

// ErrVerificationFailed is returned when at least one interaction fails.
var ErrVerificationFailed = errors.New("verification failed")

type verifyFlags struct {
	configFlags
	pact           string
	baseURL        string
	stateChangeURL string
	openapi        bool
}

var verifyFlagVals verifyFlags

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay pact files against the provider",
	Long: `Replay every interaction of one or more pact files against the provider and
report mismatches.

Without --provider-base-url a provider is started in process on a loopback
port for each pact and states are set up directly. The variant is taken from
--variant when given, otherwise inferred from the pact's response bodies.

With --provider-base-url states are posted to --state-change-url, which
defaults to <base-url>/_pact/provider_states.`,
	Example: `  # Verify the bundled pacts in process
  provider verify --pact 'examples/pacts/*.json'

  # Verify a running provider and check responses against its OpenAPI description
  provider verify --pact count.json --provider-base-url http://localhost:8080 --openapi`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runVerify(cmd.Context(), cmd, &verifyFlagVals)
	},
}

func runVerify(ctx context.Context, cmd *cobra.Command, f *verifyFlags) error {
	cfg, err := f.load(cmd)
	if err != nil {
		return err
	}
	logCfg := cfg.Logging()
	logCfg.Output = cmd.ErrOrStderr()
	log := logging.New(logCfg)

	pacts, err := contract.LoadGlob(f.pact)
	if err != nil {
		return err
	}

	var opts []verifier.Option
	opts = append(opts, verifier.WithLogger(log))
	if f.openapi {
		doc, err := provider.OpenAPIDocument(ctx)
		if err != nil {
			return err
		}
		opts = append(opts, verifier.WithOpenAPI(doc))
	}

	reports := make([]*verifier.Report, 0, len(pacts))
	for _, pact := range pacts {
		var report *verifier.Report
		if f.baseURL != "" {
			report, err = verifyRemote(ctx, f, pact, opts)
		} else {
			variant := cfg.Kind()
			if cfg.Source("variant") == config.SourceDefault {
				variant = inferVariant(pact, variant)
			}
			report, err = verifyInProcess(ctx, cfg, variant, pact, opts)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", pact.Source, err)
		}
		reports = append(reports, report)
	}

	if jsonOutput {
		if err := output.JSON(cmd.OutOrStdout(), reports); err != nil {
			return err
		}
	} else {
		printReports(cmd.OutOrStdout(), reports)
	}

	failed, total := 0, 0
	for _, r := range reports {
		failed += r.Failed()
		total += len(r.Results)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d interactions failed", ErrVerificationFailed, failed, total)
	}
	return nil
}

func verifyRemote(ctx context.Context, f *verifyFlags, pact *contract.Pact, opts []verifier.Option) (*verifier.Report, error) {
	stateURL := f.stateChangeURL
	if stateURL == "" {
		stateURL = strings.TrimRight(f.baseURL, "/") + states.DefaultStateChangePath
	}
	v, err := verifier.New(f.baseURL, nil, append(opts, verifier.WithStateChangeURL(stateURL))...)
	if err != nil {
		return nil, err
	}
	return v.Verify(ctx, pact)
}

// verifyInProcess starts a fresh provider on a loopback port so every pact
// begins from the configured fixture.
func verifyInProcess(ctx context.Context, base *config.Config, variant fixture.Kind, pact *contract.Pact, opts []verifier.Option) (*verifier.Report, error) {
	cfg := *base
	cfg.Port = 0
	cfg.Variant = variant

	srv, err := server.New(&cfg, server.WithHost("127.0.0.1"))
	if err != nil {
		return nil, err
	}
	if err := srv.Start(); err != nil {
		return nil, err
	}
	defer func() { _ = srv.Stop() }()

	v, err := verifier.New(srv.URL(), srv.Dispatcher(), opts...)
	if err != nil {
		return nil, err
	}
	return v.Verify(ctx, pact)
}

// inferVariant picks the variant whose field appears in the pact's response
// bodies, or fallback when neither does.
func inferVariant(pact *contract.Pact, fallback fixture.Kind) fixture.Kind {
	for i := range pact.Interactions {
		body := pact.Interactions[i].Response.Body
		if len(body) == 0 {
			continue
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(body, &fields) != nil {
			continue
		}
		if _, ok := fields["animals"]; ok {
			return fixture.KindAnimals
		}
		if _, ok := fields["count"]; ok {
			return fixture.KindCount
		}
	}
	return fallback
}

func printReports(w io.Writer, reports []*verifier.Report) {
	for _, r := range reports {
		fmt.Fprintf(w, "Verifying a pact between %s (%s)\n", r.Pact, r.Source)
		for _, res := range r.Results {
			status := "PASS"
			if !res.Passed() {
				status = "FAIL"
			}
			fmt.Fprintf(w, "  %s  %s", status, res.Description)
			if len(res.States) > 0 {
				fmt.Fprintf(w, " [given %s]", strings.Join(res.States, ", "))
			}
			fmt.Fprintln(w)
			for _, m := range res.Mismatches {
				fmt.Fprintf(w, "        %s", m)
				if m.Expected != "" || m.Actual != "" {
					fmt.Fprintf(w, " (expected %s, got %s)", quoteEmpty(m.Expected), quoteEmpty(m.Actual))
				}
				fmt.Fprintln(w)
			}
		}
		fmt.Fprintf(w, "%d interactions, %d failed\n\n", len(r.Results), r.Failed())
	}
}

func quoteEmpty(s string) string {
	if s == "" {
		return "nothing"
	}
	return s
}

func init() {
	f := &verifyFlagVals
	f.configFlags.register(verifyCmd, false)
	verifyCmd.Flags().StringVar(&f.pact, "pact", "", "Pact file or glob (e.g. 'pacts/**/*.json')")
	verifyCmd.Flags().StringVar(&f.baseURL, "provider-base-url", "", "Verify a running provider instead of starting one")
	verifyCmd.Flags().StringVar(&f.stateChangeURL, "state-change-url", "", "State change endpoint of a running provider")
	verifyCmd.Flags().BoolVar(&f.openapi, "openapi", false, "Also validate responses against the provider's OpenAPI description")
	_ = verifyCmd.MarkFlagRequired("pact")
	rootCmd.AddCommand(verifyCmd)
}
