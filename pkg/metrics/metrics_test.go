package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/provider/pkg/states"
)

func scrape(t *testing.T, p *Provider) string {
	t.Helper()
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestProvider_Middleware(t *testing.T) {
	p := NewProvider(func() float64 { return 1000 })

	mux := http.NewServeMux()
	mux.HandleFunc("GET /provider.json", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	h := p.Middleware(mux)

	for _, path := range []string{"/provider.json?valid_date=x", "/provider.json", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "/provider.json", "400")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.RequestDuration))

	out := scrape(t, p)
	assert.Contains(t, out, `provider_requests_total{method="GET",route="/provider.json",status="400"} 2`)
	assert.Contains(t, out, "# TYPE provider_request_duration_seconds histogram")
	assert.Contains(t, out, "provider_fixture_items 1000\n")
}

func TestProvider_Middleware_Concurrent(t *testing.T) {
	p := NewProvider(nil)
	h := p.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, float64(1000), testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "unmatched", "200")))
}

func TestProvider_ObserveState(t *testing.T) {
	p := NewProvider(nil)

	p.ObserveState("data count is > 0", nil)
	p.ObserveState("broken", fmt.Errorf("setting up: %w", errors.New("boom")))

	assert.Equal(t, float64(1), testutil.ToFloat64(p.StateSetupsTotal.WithLabelValues("data count is > 0", ResultOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.StateSetupsTotal.WithLabelValues("broken", ResultError)))
	assert.NotContains(t, scrape(t, p), "provider_fixture_items")
}

func TestProvider_ObserveState_UnknownNamesShareOneSeries(t *testing.T) {
	p := NewProvider(nil)

	for i := 0; i < 100; i++ {
		name := fmt.Sprintf("made up state %d", i)
		p.ObserveState(name, &states.UnknownStateError{Name: name})
	}

	assert.Equal(t, 1, testutil.CollectAndCount(p.StateSetupsTotal))
	assert.Equal(t, float64(100), testutil.ToFloat64(p.StateSetupsTotal.WithLabelValues(UnknownStateLabel, ResultUnknown)))
	assert.NotContains(t, scrape(t, p), "made up state")
}

func TestProvider_SeparateRegistries(t *testing.T) {
	a := NewProvider(nil)
	b := NewProvider(nil)

	a.ObserveState("data count is > 0", nil)

	assert.Equal(t, 1, testutil.CollectAndCount(a.StateSetupsTotal))
	assert.Equal(t, 0, testutil.CollectAndCount(b.StateSetupsTotal))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/provider.json", routeLabel("GET /provider.json"))
	assert.Equal(t, "/health", routeLabel("/health"))
	assert.Equal(t, "unmatched", routeLabel(""))
}
