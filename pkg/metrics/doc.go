// Package metrics exposes provider activity to Prometheus.
//
// Each server owns its own registry so tests and in-process verification
// never share counters.
//
// # Provider Metrics
//
//   - provider_requests_total: requests served (labels: method, route, status)
//   - provider_request_duration_seconds: request latency (labels: method, route)
//   - provider_state_setups_total: state hook runs (labels: state, result)
//   - provider_fixture_items: animals held, or the configured count
//
// Unknown state names are recorded under UnknownStateLabel so requests
// cannot grow the label set.
package metrics
