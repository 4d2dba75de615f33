// Package states maps provider-state names to fixture setup hooks.
//
// A contract declares, per interaction, the state the provider must be in
// ("data count is > 0"). Before replaying the interaction the verifier asks
// the Dispatcher to run the hook registered under that exact name. Names are
// checked against the contract up front with Validate so a missing hook fails
// the run before any request is sent.
//
// StateChangeHandler exposes the same dispatcher over HTTP for verifiers that
// run out of process.
package states
