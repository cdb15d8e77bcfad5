package repl

import (
	"sort"
	"strings"
)

// Builtin commands handled by the REPL itself.
var builtins = []string{"complete", "exit", "history", "quit"}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer for the given command paths
// ("apikey", "apikey generate", ...). Builtins are always included.
func NewCompleter(commands []string) *Completer {
	seen := make(map[string]bool, len(commands)+len(builtins))
	var all []string
	for _, cmd := range append(append([]string{}, commands...), builtins...) {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" || seen[cmd] {
			continue
		}
		seen[cmd] = true
		all = append(all, cmd)
	}
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns completion suggestions for the given prefix.
// Runs of spaces in the prefix are treated as one.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.Join(strings.Fields(prefix), " ")
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
