// Package config holds the provider's server configuration.
//
// Values are layered with the following precedence:
//  1. Command-line flags (highest priority)
//  2. Environment variables (PROVIDER_*)
//  3. Config file (YAML)
//  4. Default values (lowest priority)
//
// Sources records which layer set each value.
package config
