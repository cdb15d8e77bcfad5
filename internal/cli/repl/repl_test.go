package repl

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// recorder is an Executor that remembers what it ran.
type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(ctx context.Context, args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func newTestREPL(input string, rec *recorder, opts ...Option) (*REPL, *bytes.Buffer) {
	output := &bytes.Buffer{}
	opts = append([]Option{
		WithInput(strings.NewReader(input)),
		WithOutput(output),
	}, opts...)
	return New(rec.exec, opts...), output
}

func TestNew(t *testing.T) {
	r := New(nil)
	if r == nil {
		t.Fatal("New returned nil")
	}
	if r.completer == nil {
		t.Error("completer should be initialized")
	}
	if r.history == nil {
		t.Error("history should be initialized")
	}
	if r.prompt != DefaultPrompt {
		t.Errorf("prompt = %q, want %q", r.prompt, DefaultPrompt)
	}
}

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\n"},
		{"quit command", "quit\n"},
		{"EOF", ""}, // simulates Ctrl+D
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			r, _ := newTestREPL(tt.input, rec)

			if err := r.Run(context.Background()); err != nil {
				t.Errorf("Run() returned error: %v", err)
			}
			if len(rec.calls) != 0 {
				t.Errorf("executor called %d times, want 0", len(rec.calls))
			}
		})
	}
}

func TestREPL_Run_EmptyLines(t *testing.T) {
	rec := &recorder{}
	r, output := newTestREPL("\n\n\nexit\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Errorf("Run() returned error: %v", err)
	}

	if prompts := strings.Count(output.String(), DefaultPrompt); prompts != 4 {
		t.Errorf("prompts = %d, want 4", prompts)
	}
}

func TestREPL_Run_Executes(t *testing.T) {
	rec := &recorder{}
	r, _ := newTestREPL("invite generate 42\napikey generate --user \"john doe\"\nexit\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	want := [][]string{
		{"invite", "generate", "42"},
		{"apikey", "generate", "--user", "john doe"},
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}

func TestREPL_Run_LastLineWithoutNewline(t *testing.T) {
	rec := &recorder{}
	r, _ := newTestREPL("version", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(rec.calls) != 1 || rec.calls[0][0] != "version" {
		t.Errorf("calls = %v, want [[version]]", rec.calls)
	}
}

func TestREPL_Run_CommandError(t *testing.T) {
	rec := &recorder{err: errors.New("boom")}
	r, output := newTestREPL("apikey layout\nexit\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !strings.Contains(output.String(), "Error: boom") {
		t.Errorf("output = %q, want command error", output.String())
	}
}

func TestREPL_Run_SplitError(t *testing.T) {
	rec := &recorder{}
	r, output := newTestREPL("apikey verify \"abc\nexit\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !strings.Contains(output.String(), "Error: unterminated quote") {
		t.Errorf("output = %q, want split error", output.String())
	}
	if len(rec.calls) != 0 {
		t.Errorf("executor called with %v", rec.calls)
	}
}

func TestREPL_Run_HistoryAdded(t *testing.T) {
	history := NewHistory("")
	rec := &recorder{}
	r, _ := newTestREPL("command1\n  command2  \nexit\n", rec, WithHistory(history))

	if err := r.Run(context.Background()); err != nil {
		t.Errorf("Run() returned error: %v", err)
	}

	want := []string{"command1", "command2", "exit"}
	if got := history.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("history = %v, want %v", got, want)
	}
}

func TestREPL_Run_HistoryFilter(t *testing.T) {
	history := NewHistory("")
	rec := &recorder{}
	filter := func(line string) bool { return !strings.Contains(line, "secret") }
	r, _ := newTestREPL("apikey layout\nuse --secret x\nexit\n", rec,
		WithHistory(history), WithHistoryFilter(filter))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	want := []string{"apikey layout", "exit"}
	if got := history.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("history = %v, want %v", got, want)
	}
	if len(rec.calls) != 2 {
		t.Errorf("filtered lines should still run, calls = %v", rec.calls)
	}
}

func TestREPL_Builtins(t *testing.T) {
	rec := &recorder{}
	r, output := newTestREPL("version\nhistory\ncomplete inv\nexit\n", rec,
		WithCompleter(NewCompleter([]string{"invite", "invite parse", "version"})),
		WithPrompt("> "))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	out := output.String()
	for _, want := range []string{"    1  version\n", "    2  history\n", "invite\ninvite parse\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(rec.calls) != 1 {
		t.Errorf("builtins should not reach the executor, calls = %v", rec.calls)
	}
}

func TestREPL_Run_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	r, output := newTestREPL("version\n", rec)

	if err := r.Run(ctx); err != nil {
		t.Errorf("Run() returned error: %v", err)
	}
	if output.Len() != 0 || len(rec.calls) != 0 {
		t.Error("Run() should return before reading when ctx is done")
	}
}

func TestREPL_NoExecutor(t *testing.T) {
	output := &bytes.Buffer{}
	r := New(nil, WithInput(strings.NewReader("version\n")), WithOutput(output))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !strings.Contains(output.String(), `unknown command "version"`) {
		t.Errorf("output = %q", output.String())
	}
}
