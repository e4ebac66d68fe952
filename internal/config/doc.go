// Package config loads the server settings from an optional config.yaml and
// WORDECK_* environment variables, applies defaults and validates the result.
package config
