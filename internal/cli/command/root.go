package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/keyforge-go/internal/core/domain"
	"github.com/yndnr/keyforge-go/internal/infra/buildinfo"
	"github.com/yndnr/keyforge-go/internal/telemetry/metric"
	"github.com/yndnr/keyforge-go/pkg/apikey"
)

const optionsKey = "options"

// ErrNotValid is returned when at least one input of a batch command was
// rejected. The rows for all inputs are still printed.
var ErrNotValid = errors.New("not valid")

// Option customizes the application.
type Option func(*options)

type options struct {
	metrics   *metric.Registry
	codecOpts []apikey.Option
	stdin     io.Reader

	// rt is set once the runtime is loaded, or up front for commands
	// run from the shell.
	rt     *Runtime
	shared bool
}

// WithMetrics records metrics into reg instead of a fresh registry.
func WithMetrics(reg *metric.Registry) Option {
	return func(o *options) {
		o.metrics = reg
	}
}

// WithCodecOptions passes options to the API key codec.
func WithCodecOptions(opts ...apikey.Option) Option {
	return func(o *options) {
		o.codecOpts = append(o.codecOpts, opts...)
	}
}

// WithStdin sets the reader used by the shell and by "--file -".
func WithStdin(r io.Reader) Option {
	return func(o *options) {
		o.stdin = r
	}
}

// withRuntime makes the application reuse rt instead of loading its own.
func withRuntime(rt *Runtime) Option {
	return func(o *options) {
		o.rt = rt
		o.shared = true
	}
}

// App creates the CLI application.
func App(opts ...Option) *cli.App {
	o := &options{stdin: os.Stdin}
	for _, opt := range opts {
		opt(o)
	}

	commands := []*cli.Command{
		APIKeyCommand(),
		InviteCommand(),
		SecretCommand(),
		ConfigCommand(),
		VersionCommand(),
	}
	if !o.shared {
		commands = append(commands, ShellCommand())
	}

	return &cli.App{
		Name:     "keyforge-cli",
		Usage:    "Issue and verify structured API keys and invite codes",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Commands: commands,
		Metadata: map[string]any{optionsKey: o},
		After:    after,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default ~/.keyforge/config.yaml)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "metrics-textfile",
			Usage: "Write metrics to `FILE` after the run",
		},
		&cli.StringFlag{
			Name:  "primary-secret",
			Usage: "Primary secret",
		},
		&cli.StringFlag{
			Name:  "secondary-secret",
			Usage: "Secondary secret",
		},
		&cli.StringFlag{
			Name:  "master-secret",
			Usage: "Base64url master secret both secrets are derived from",
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Override a configuration key, e.g. --set codec.hash_rounds=5",
		},
	}
}

// flagKeys maps global flags to configuration keys.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"output", "cli.output"},
	{"log-level", "log.level"},
	{"metrics-textfile", "metrics.textfile"},
	{"primary-secret", "secrets.primary"},
	{"secondary-secret", "secrets.secondary"},
	{"master-secret", "secrets.master"},
}

// flagOverrides collects the configuration keys set on the command line.
func flagOverrides(c *cli.Context) (map[string]any, error) {
	overrides := make(map[string]any)
	for _, fk := range flagKeys {
		if c.IsSet(fk.flag) {
			overrides[fk.key] = c.String(fk.flag)
		}
	}

	for _, kv := range c.StringSlice("set") {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" || !strings.Contains(key, ".") {
			return nil, domain.ErrInvalidArgument.WithDetails(
				fmt.Sprintf("--set expects section.key=value, got %q", kv))
		}
		overrides[strings.ToLower(key)] = strings.TrimSpace(value)
	}
	return overrides, nil
}

// appOptions returns the options the application was built with.
func appOptions(c *cli.Context) *options {
	if o, ok := c.App.Metadata[optionsKey].(*options); ok {
		return o
	}
	return &options{stdin: os.Stdin}
}

// after writes the metrics textfile once the command has run.
func after(c *cli.Context) error {
	o := appOptions(c)
	if o.rt == nil || o.shared {
		return nil
	}
	return o.rt.writeMetrics()
}

// Exit statuses returned by ExitCode.
const (
	ExitFailure = 1
	ExitUsage   = 2
	ExitConfig  = 3
)

// ExitCode maps an error returned by the application to a process exit
// status. Argument errors are usage errors, configuration and secret
// errors are config errors, and everything else, rejected inputs
// included, is a plain failure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if !domain.IsDomainError(err, "") {
		return ExitFailure
	}
	switch code := domain.GetErrorCode(err); {
	case strings.HasPrefix(code, "KF-ARG-"):
		return ExitUsage
	case strings.HasPrefix(code, "KF-CONF-"):
		return ExitConfig
	default:
		return ExitFailure
	}
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
