package verifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/getmockd/provider/pkg/contract"
	"github.com/getmockd/provider/pkg/fixture"
	"github.com/getmockd/provider/pkg/provider"
	"github.com/getmockd/provider/pkg/states"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pactsDir = "../../examples/pacts"

type testProvider struct {
	url        string
	dispatcher *states.Dispatcher
	requests   *atomic.Int64
}

func startProvider(t *testing.T, kind fixture.Kind) testProvider {
	t.Helper()

	store := fixture.NewStore(fixture.Default(kind))
	d := states.New(nil)
	states.RegisterDefaults(d, store)

	var requests atomic.Int64
	mux := http.NewServeMux()
	handler := provider.NewHandler(store)
	mux.Handle("GET "+provider.Path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler.ServeHTTP(w, r)
	}))
	mux.Handle("POST "+states.DefaultStateChangePath, states.StateChangeHandler(d, store.Reset))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return testProvider{url: srv.URL, dispatcher: d, requests: &requests}
}

func loadPact(t *testing.T, name string) *contract.Pact {
	t.Helper()
	p, err := contract.Load(filepath.Join(pactsDir, name))
	require.NoError(t, err)
	return p
}

func requirePassed(t *testing.T, report *Report) {
	t.Helper()
	for _, r := range report.Results {
		assert.Empty(t, r.Mismatches, r.Description)
	}
	require.True(t, report.Passed())
}

func TestVerify_CountPact(t *testing.T) {
	t.Parallel()
	p := startProvider(t, fixture.KindCount)

	v, err := New(p.url, p.dispatcher)
	require.NoError(t, err)

	report, err := v.Verify(context.Background(), loadPact(t, "our_consumer-count_provider.json"))
	require.NoError(t, err)
	requirePassed(t, report)
	require.Len(t, report.Results, 4)
	assert.Equal(t, http.StatusNotFound, report.Results[1].Status)
	assert.Equal(t, int64(4), p.requests.Load())
}

func TestVerify_AnimalsPact(t *testing.T) {
	t.Parallel()
	p := startProvider(t, fixture.KindAnimals)

	v, err := New(p.url, p.dispatcher)
	require.NoError(t, err)

	report, err := v.Verify(context.Background(), loadPact(t, "our_consumer-animals_provider.json"))
	require.NoError(t, err)
	requirePassed(t, report)
}

func TestVerify_WrongVariantFails(t *testing.T) {
	t.Parallel()
	p := startProvider(t, fixture.KindAnimals)

	v, err := New(p.url, p.dispatcher)
	require.NoError(t, err)

	report, err := v.Verify(context.Background(), loadPact(t, "our_consumer-count_provider.json"))
	require.NoError(t, err)
	assert.False(t, report.Passed())

	noData := report.Results[1]
	require.False(t, noData.Passed())
	assert.Equal(t, KindStatus, noData.Mismatches[0].Kind)
	assert.Equal(t, "404", noData.Mismatches[0].Expected)
	assert.Equal(t, "200", noData.Mismatches[0].Actual)

	first := report.Results[0]
	require.False(t, first.Passed())
	assert.Equal(t, KindBody, first.Mismatches[0].Kind)
	assert.Equal(t, "$.count", first.Mismatches[0].Path)
}

func TestVerify_MissingStateFailsFast(t *testing.T) {
	t.Parallel()
	p := startProvider(t, fixture.KindCount)

	d := states.New(nil)
	d.Register(states.DataPresent, func() error { return nil })

	v, err := New(p.url, d)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), loadPact(t, "our_consumer-count_provider.json"))
	var missing *states.MissingStatesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{states.DataAbsent}, missing.Names)
	assert.Zero(t, p.requests.Load())
}

func TestVerify_StateChangeURL(t *testing.T) {
	t.Parallel()
	p := startProvider(t, fixture.KindCount)

	v, err := New(p.url, nil, WithStateChangeURL(p.url+states.DefaultStateChangePath))
	require.NoError(t, err)

	report, err := v.Verify(context.Background(), loadPact(t, "our_consumer-count_provider.json"))
	require.NoError(t, err)
	requirePassed(t, report)
}

func TestVerify_StateChangeURLUnknownState(t *testing.T) {
	t.Parallel()
	p := startProvider(t, fixture.KindCount)

	pact := &contract.Pact{
		Consumer: contract.Pacticipant{Name: "c"},
		Provider: contract.Pacticipant{Name: "p"},
		Interactions: []contract.Interaction{{
			Description:   "needs a missing state",
			ProviderState: "the moon is full",
			Request:       contract.Request{Method: "GET", Path: provider.Path},
			Response:      contract.Response{Status: 400},
		}},
	}

	v, err := New(p.url, nil, WithStateChangeURL(p.url+states.DefaultStateChangePath))
	require.NoError(t, err)

	report, err := v.Verify(context.Background(), pact)
	require.NoError(t, err)
	require.Equal(t, 1, report.Failed())
	assert.Equal(t, KindState, report.Results[0].Mismatches[0].Kind)
	assert.Contains(t, report.Results[0].Mismatches[0].Message, "unknown_state")
	assert.Zero(t, p.requests.Load())
}

func TestVerify_OpenAPI(t *testing.T) {
	t.Parallel()

	doc, err := provider.OpenAPIDocument(context.Background())
	require.NoError(t, err)

	for _, tc := range []struct {
		kind fixture.Kind
		pact string
	}{
		{fixture.KindCount, "our_consumer-count_provider.json"},
		{fixture.KindAnimals, "our_consumer-animals_provider.json"},
	} {
		t.Run(string(tc.kind), func(t *testing.T) {
			t.Parallel()
			p := startProvider(t, tc.kind)

			v, err := New(p.url, p.dispatcher, WithOpenAPI(doc))
			require.NoError(t, err)

			report, err := v.Verify(context.Background(), loadPact(t, tc.pact))
			require.NoError(t, err)
			requirePassed(t, report)
		})
	}
}

func TestVerify_ContextCancelled(t *testing.T) {
	t.Parallel()
	p := startProvider(t, fixture.KindCount)

	v, err := New(p.url, p.dispatcher)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = v.Verify(ctx, loadPact(t, "our_consumer-count_provider.json"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New("", nil)
	assert.Error(t, err)

	_, err = New("http://localhost", nil, WithOpenAPI(nil))
	assert.Error(t, err)
}

func TestReport_JSON(t *testing.T) {
	t.Parallel()

	r := Report{Pact: "c -> p", Results: []Result{
		{Description: "ok"},
		{Description: "bad", Mismatches: []Mismatch{{Kind: KindStatus, Message: "status code differs"}}},
	}}
	assert.Equal(t, 1, r.Failed())
	assert.False(t, r.Passed())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"mismatches":[{"kind":"status","message":"status code differs"}]`)
	assert.Equal(t, "status: status code differs", r.Results[1].Mismatches[0].String())
}
