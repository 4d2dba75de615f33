package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getmockd/provider/pkg/contract"
	"github.com/getmockd/provider/pkg/logging"
	"github.com/getmockd/provider/pkg/states"
)

// DefaultTimeout bounds each request the verifier sends.
const DefaultTimeout = 10 * time.Second

// maxBodySize bounds how much of a provider response is read.
const maxBodySize = 1 << 20

// Verifier replays pacts against the provider at baseURL.
type Verifier struct {
	baseURL        string
	states         *states.Dispatcher
	stateChangeURL string
	client         *http.Client
	log            *slog.Logger
	openapi        *responseValidator
}

// Option configures a Verifier.
type Option func(*Verifier) error

// WithHTTPClient sets the client used for provider and state change requests.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) error {
		if c != nil {
			v.client = c
		}
		return nil
	}
}

// WithLogger sets the verifier's logger.
func WithLogger(log *slog.Logger) Option {
	return func(v *Verifier) error {
		if log != nil {
			v.log = log
		}
		return nil
	}
}

// WithStateChangeURL drives provider states by posting to url instead of
// calling a local dispatcher.
func WithStateChangeURL(url string) Option {
	return func(v *Verifier) error {
		v.stateChangeURL = url
		return nil
	}
}

// WithOpenAPI validates every response against doc in addition to the pact.
func WithOpenAPI(doc *openapi3.T) Option {
	return func(v *Verifier) error {
		rv, err := newResponseValidator(doc)
		if err != nil {
			return err
		}
		v.openapi = rv
		return nil
	}
}

// New creates a verifier. d may be nil when states are driven over HTTP.
func New(baseURL string, d *states.Dispatcher, opts ...Option) (*Verifier, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("provider base URL is required")
	}
	v := &Verifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		states:  d,
		client:  &http.Client{Timeout: DefaultTimeout},
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Verify replays every interaction of pact in order. It fails before sending
// any request when the pact declares a state the local dispatcher lacks.
func (v *Verifier) Verify(ctx context.Context, pact *contract.Pact) (*Report, error) {
	if v.stateChangeURL == "" && v.states != nil {
		if err := v.states.Validate(pact.States()); err != nil {
			return nil, err
		}
	}

	report := &Report{Pact: pact.Name(), Source: pact.Source}
	for i := range pact.Interactions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result := v.verifyInteraction(ctx, pact, &pact.Interactions[i])
		if result.Passed() {
			v.log.Info("interaction verified", "pact", report.Pact, "description", result.Description)
		} else {
			v.log.Warn("interaction failed", "pact", report.Pact, "description", result.Description, "mismatches", len(result.Mismatches))
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func (v *Verifier) verifyInteraction(ctx context.Context, pact *contract.Pact, in *contract.Interaction) Result {
	result := Result{Description: in.Description, States: in.States()}

	if err := v.setupStates(ctx, pact.Consumer.Name, result.States); err != nil {
		result.Mismatches = append(result.Mismatches, Mismatch{Kind: KindState, Message: err.Error()})
		return result
	}

	req, err := v.buildRequest(ctx, &in.Request)
	if err != nil {
		result.Mismatches = append(result.Mismatches, Mismatch{Kind: KindRequest, Message: err.Error()})
		return result
	}

	resp, err := v.client.Do(req)
	if err != nil {
		result.Mismatches = append(result.Mismatches, Mismatch{Kind: KindRequest, Message: err.Error()})
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		result.Mismatches = append(result.Mismatches, Mismatch{Kind: KindRequest, Message: "reading response body: " + err.Error()})
		return result
	}
	result.Status = resp.StatusCode

	expected := &in.Response
	if resp.StatusCode != expected.Status {
		result.Mismatches = append(result.Mismatches, Mismatch{
			Kind:     KindStatus,
			Expected: fmt.Sprint(expected.Status),
			Actual:   fmt.Sprint(resp.StatusCode),
			Message:  "status code differs",
		})
	}
	result.Mismatches = append(result.Mismatches, compareHeaders(expected.Headers, resp.Header)...)
	if expected.HasBody() {
		result.Mismatches = append(result.Mismatches, compareBody(expected.Body, body, expected.MatchingRules)...)
	}
	if v.openapi != nil {
		result.Mismatches = append(result.Mismatches, v.openapi.validate(ctx, req, resp, body)...)
	}
	return result
}

func (v *Verifier) setupStates(ctx context.Context, consumer string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if v.stateChangeURL != "" {
		for _, name := range names {
			if err := v.postStateChange(ctx, consumer, name); err != nil {
				return err
			}
		}
		return nil
	}
	if v.states == nil {
		return fmt.Errorf("interaction requires provider states %q but no state handler is configured", names)
	}
	for _, name := range names {
		if err := v.states.Setup(name); err != nil {
			return err
		}
	}
	return nil
}

func (v *Verifier) postStateChange(ctx context.Context, consumer, name string) error {
	payload, err := json.Marshal(states.StateChange{
		Consumer: consumer,
		State:    name,
		States:   []string{name},
		Action:   states.ActionSetup,
		Params:   map[string]any{},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.stateChangeURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building state change request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("state change for %q: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("state change for %q failed with status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func (v *Verifier) buildRequest(ctx context.Context, r *contract.Request) (*http.Request, error) {
	target := v.baseURL + r.Path
	if q := r.Query.Encode(); q != "" {
		target += "?" + q
	}

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	method := strings.ToUpper(r.Method)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, r.Path, err)
	}
	for name, value := range r.Headers {
		req.Header.Set(name, value)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
