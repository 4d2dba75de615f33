// Package cli implements the provider command line: serve runs the provider,
// verify replays pact files against it, states lists the provider state hooks
// and version prints build information.
package cli
