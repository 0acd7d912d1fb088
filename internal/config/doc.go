// Package config loads and validates the client configuration.
//
// Configuration is YAML with ${VAR} environment variable expansion.
// Load reads the raw file; LoadWithDefaults fills optional fields;
// LoadAndValidate additionally rejects out-of-range values.
package config
