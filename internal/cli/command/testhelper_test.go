package command

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/keyforge-go/internal/telemetry/logger"
	"github.com/yndnr/keyforge-go/internal/telemetry/metric"
	"github.com/yndnr/keyforge-go/pkg/apikey"
)

const (
	testPrimary   = "master-secret"
	testSecondary = "secondary-secret"
	testMaster    = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8"

	// vectorToken is issued for user123 with read and write for 30 days,
	// at vectorTime, from random bytes 0..31.
	vectorToken = "GCbulFJ8j1oMOGLCCMPKNWOYLMMbae85y445s89PCkpSrArpQAWm"
)

var vectorTime = time.Unix(1700000000, 0).UTC()

// secretArgs are the global flags selecting the test secrets.
var secretArgs = []string{"--primary-secret", testPrimary, "--secondary-secret", testSecondary}

// cyclicReader yields 0, 1, ..., 31 repeatedly.
type cyclicReader struct {
	mu  sync.Mutex
	pos int
}

func (r *cyclicReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range p {
		p[i] = byte(r.pos % 32)
		r.pos++
	}
	return len(p), nil
}

// isolate points HOME at an empty directory and removes KEYFORGE_
// variables so only the test's own configuration is seen.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "KEYFORGE_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	t.Cleanup(func() { logger.SetLevel("warn") })
	return home
}

// vectorOptions fix the codec clock at now and the random source at 0..31.
func vectorOptions(now time.Time) Option {
	return WithCodecOptions(
		apikey.WithClock(func() time.Time { return now }),
		apikey.WithRandom(&cyclicReader{}),
	)
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

// run executes the application with args and captures its output.
func run(t *testing.T, opts []Option, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := App(opts...)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"keyforge-cli"}, args...))
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// args joins argument groups.
func args(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func decodeJSON(t *testing.T, s string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(s), v); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, s)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// counterValue reads a counter from reg by name and label values.
func counterValue(t *testing.T, reg *metric.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			match := true
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					match = false
				}
			}
			if match {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
