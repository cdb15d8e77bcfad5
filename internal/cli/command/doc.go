// Package command provides CLI command definitions for keyforge-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command and global flags
//   - runtime.go: Shared configuration, logger, metrics and services
//   - apikey.go: API key subcommand group
//   - invite.go: Invite code subcommand group
//   - secret.go: Secret material subcommand group
//   - config.go: Configuration subcommand group
//   - version.go: Build information
//   - shell.go: Interactive shell
//
// Commands follow a consistent pattern of loading the runtime,
// calling the appropriate service, and formatting output.
package command
