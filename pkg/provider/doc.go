// Package provider implements the GET /provider.json endpoint.
//
// The endpoint requires a valid_date query parameter and answers with the
// current fixture. What "current" looks like depends on the fixture variant:
//
//   - animals: 200 with the animal list, even when it is empty. A date that
//     cannot be parsed is not handled by the endpoint and surfaces as a 500.
//   - count: 404 when the count is zero (checked before the date is parsed),
//     400 for an unparseable date, otherwise 200 with the count.
//
// A missing valid_date is always a 400 and is checked first. The valid_date
// field of a successful response is the server's clock, not the request value.
package provider
