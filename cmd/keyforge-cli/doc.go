// Package main provides the entry point for keyforge-cli.
//
// The CLI issues and verifies structured API keys and converts user IDs
// to invite codes:
//
//   - API keys (generate, verify, layout, permissions)
//   - Invite codes (generate, parse, check)
//   - Secret material (generate, derive)
//   - Configuration management
//
// Usage:
//
//	keyforge-cli [command] [flags]
//	keyforge-cli apikey generate --user user123 --perm read,write
//	keyforge-cli invite parse 00d6Hi --output json
//
// The CLI supports both single-command mode and an interactive shell.
package main
