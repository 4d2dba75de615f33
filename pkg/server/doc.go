// Package server assembles the provider HTTP service: the provider.json
// handler, the state change endpoint, health, metrics and the OpenAPI
// document, wrapped in request logging and metrics middleware.
package server
