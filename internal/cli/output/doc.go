// Package output provides output formatting for keyforge-cli.
//
// This package handles all CLI output formatting:
//
//   - formatter.go: Formatter interface and factory
//   - table.go: Table rendering with wide mode support
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//   - spinner.go: Animation while a passphrase is stretched
//   - progress.go: Progress of batch operations
//
// Table output is meant for people; json and yaml output are stable and
// meant for scripts.
package output
