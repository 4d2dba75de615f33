// Package verifier replays pact interactions against a running provider.
//
// For every interaction the verifier establishes the declared provider
// states, sends the recorded request and compares the response with what
// the consumer expects. Interactions are replayed one at a time, in file
// order, because the provider's fixture is shared.
//
// Body comparison follows pact response semantics: objects may carry keys
// the consumer did not ask for, arrays and scalars must match exactly unless
// a matching rule relaxes them, and type rules cascade to child values.
package verifier
