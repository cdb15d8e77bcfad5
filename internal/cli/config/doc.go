// Package config provides the keyforge-cli configuration.
//
// This package defines the configuration structure and validation:
//
//   - spec.go: Spec struct definition and conversions
//   - default.go: Default configuration values
//   - verify.go: Validation of codec, secrets, log and output settings
//   - sanitize.go: Masking of secret material for display and logging
//   - loader.go: Loading via internal/infra/confloader
//
// Configuration is read from a YAML file, KEYFORGE_* environment variables
// and command-line flag overrides, in increasing order of priority.
package config
