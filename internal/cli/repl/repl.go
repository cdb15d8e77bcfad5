// Package repl provides the interactive shell of keyforge-cli.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultPrompt is printed before each line.
const DefaultPrompt = "keyforge> "

// Executor runs one command line split into arguments.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
	record    func(line string) bool
}

// Option configures a REPL.
type Option func(*REPL)

// WithInput sets the input reader.
func WithInput(r io.Reader) Option {
	return func(repl *REPL) { repl.input = r }
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(repl *REPL) { repl.output = w }
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) Option {
	return func(repl *REPL) { repl.prompt = prompt }
}

// WithCompleter sets the completer used by the complete builtin.
func WithCompleter(c *Completer) Option {
	return func(repl *REPL) { repl.completer = c }
}

// WithHistory sets the history lines are recorded in.
func WithHistory(h *History) Option {
	return func(repl *REPL) { repl.history = h }
}

// WithHistoryFilter sets a predicate deciding whether a line is recorded.
func WithHistoryFilter(fn func(line string) bool) Option {
	return func(repl *REPL) { repl.record = fn }
}

// New creates a new REPL that runs commands through exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    DefaultPrompt,
		exec:      exec,
		completer: NewCompleter(nil),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit, end of input
// or when ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		if r.record == nil || r.record(line) {
			r.history.Add(line)
		}

		if line == "exit" || line == "quit" {
			return nil
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}

		if eof {
			return nil
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	args, err := SplitArgs(line)
	if err != nil {
		return err
	}

	switch args[0] {
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%5d  %s\n", i+1, entry)
		}
		return nil
	case "complete":
		for _, s := range r.completer.Complete(strings.Join(args[1:], " ")) {
			fmt.Fprintln(r.output, s)
		}
		return nil
	}

	if r.exec == nil {
		return fmt.Errorf("unknown command %q", args[0])
	}
	return r.exec(ctx, args)
}
