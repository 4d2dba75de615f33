// Package fixture holds the provider's mutable in-memory data.
//
// A State is either a list of animals or a plain count; exactly one of the
// two is active for a given deployment. The Store is shared between the
// request handler, which reads it, and provider-state hooks, which replace it
// before each verified interaction.
package fixture
