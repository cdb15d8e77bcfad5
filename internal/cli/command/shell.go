package command

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/keyforge-go/internal/cli/config"
	"github.com/yndnr/keyforge-go/internal/cli/repl"
	"github.com/yndnr/keyforge-go/internal/infra/confloader"
	"github.com/yndnr/keyforge-go/internal/infra/shutdown"
	"github.com/yndnr/keyforge-go/internal/telemetry/logger"
)

const shutdownTimeout = 5 * time.Second

// osExit ends the process after an interrupt.
var osExit = os.Exit

// secretFlags are never written to the shell history.
var secretFlags = []string{"--primary-secret", "--secondary-secret", "--master-secret", "--passphrase"}

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Start an interactive shell",
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	o := appOptions(c)

	historyPath := rt.Config.CLI.HistoryFile
	if historyPath == "" {
		historyPath = config.DefaultHistoryPath()
	}
	history := repl.NewHistory(historyPath)
	if err := history.Load(); err != nil {
		rt.Logger.Warn("failed to load shell history", "path", historyPath, "error", err)
	}

	handler := shutdown.NewHandler(shutdownTimeout)
	handler.OnShutdown(func(context.Context) error {
		return rt.writeMetrics()
	})
	handler.OnShutdown(func(context.Context) error {
		return history.Save()
	})
	if rt.ConfigPath != "" {
		watcher, err := watchConfig(rt)
		if err != nil {
			rt.Logger.Warn("config hot reload disabled", "path", rt.ConfigPath, "error", err)
		} else {
			handler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	sessionID := strings.ToLower(ulid.Make().String())
	ctx, cancel := context.WithCancel(logger.WithSessionID(c.Context, sessionID))
	defer cancel()

	go func() {
		sig, err := handler.Wait(ctx)
		if sig == nil {
			return
		}
		if err != nil {
			rt.Logger.Warn("shell shutdown", "error", err)
		}
		osExit(130)
	}()

	exec := func(ctx context.Context, args []string) error {
		sub := App(WithStdin(o.stdin), withRuntime(rt))
		sub.Writer = c.App.Writer
		sub.ErrWriter = c.App.ErrWriter
		sub.ExitErrHandler = func(*cli.Context, error) {}
		return sub.RunContext(ctx, append([]string{c.App.Name}, args...))
	}

	shell := repl.New(exec,
		repl.WithInput(o.stdin),
		repl.WithOutput(c.App.Writer),
		repl.WithHistory(history),
		repl.WithHistoryFilter(recordable),
		repl.WithCompleter(repl.NewCompleter(commandPaths(c.App.Commands, ""))),
	)

	rt.Logger.Debug("shell started", "session_id", sessionID)
	runErr := shell.Run(ctx)
	cancel()

	if err := handler.Shutdown(); err != nil {
		rt.Logger.Warn("shell shutdown", "error", err)
	}
	return runErr
}

// recordable reports whether line may be kept in the history.
func recordable(line string) bool {
	for _, flag := range secretFlags {
		if strings.Contains(line, flag) {
			return false
		}
	}
	return true
}

// commandPaths lists every command path below cmds, skipping the shell.
func commandPaths(cmds []*cli.Command, prefix string) []string {
	var paths []string
	for _, cmd := range cmds {
		if cmd.Name == "shell" || cmd.Hidden {
			continue
		}
		path := prefix + cmd.Name
		paths = append(paths, path)
		paths = append(paths, commandPaths(cmd.Subcommands, path+" ")...)
	}
	return paths
}

// watchConfig reloads the log level when the config file changes.
func watchConfig(rt *Runtime) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(rt.Logger))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(rt.ConfigPath); err != nil {
		watcher.Stop()
		return nil, err
	}
	watcher.OnChange(rt.reloadLogLevel)
	watcher.StartAsync()
	return watcher, nil
}

// reloadLogLevel applies the log level of the config file at path.
// Command-line overrides still win.
func (rt *Runtime) reloadLogLevel(path string) {
	cfg, _, err := config.Load(config.LoadOptions{Path: path, Overrides: rt.Overrides})
	if err != nil {
		rt.Logger.Warn("config reload failed", "path", path, "error", err)
		return
	}

	level := strings.ToLower(cfg.Log.Level)
	if level == logger.GetLevel() {
		return
	}
	if err := logger.SetLevel(level); err != nil {
		rt.Logger.Warn("config reload ignored invalid log level", "level", level)
		return
	}
	rt.Logger.Info("log level reloaded", "level", level)
}
