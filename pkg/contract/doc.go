// Package contract reads pact files: the consumer-recorded interactions a
// provider is verified against.
//
// Both the v2 and v3 layouts are accepted. The differences that matter here
// are normalised on load:
//
//   - providerState (v2 string) and providerStates (v3 list) both surface
//     through Interaction.States.
//   - request.query may be a raw query string (v2) or a map (v3).
//   - response.matchingRules may be flat "$.body..." keys (v2) or nested
//     under "body" (v3); either way they end up keyed by a JSONPath rooted
//     at the response body.
//
// Files are validated against an embedded JSON Schema before decoding so a
// malformed pact reports the offending field instead of a zero value.
package contract
