package service

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/keyforge-go/internal/core/domain"
	"github.com/yndnr/keyforge-go/internal/telemetry/logger"
	"github.com/yndnr/keyforge-go/internal/telemetry/metric"
	"github.com/yndnr/keyforge-go/pkg/apikey"
)

var testSecrets = domain.Secrets{
	Primary:   "master-secret",
	Secondary: "secondary-secret",
}

var vectorTime = time.Unix(1700000000, 0).UTC()

// testClock is a settable clock safe for concurrent use.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{t: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

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

func newLogBuffer(t *testing.T) (logger.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("logger.New() error = %v", err)
	}
	t.Cleanup(func() { logger.SetLevel("warn") })
	return l, &buf
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

func intPtr(v int) *int { return &v }

func newTestKeyService(t *testing.T, clock *testClock, opts ...Option) (*KeyService, *metric.Registry) {
	t.Helper()
	reg := metric.NewRegistry()
	base := []Option{
		WithMetrics(reg),
		WithLogger(logger.Nop()),
		WithCodecOptions(apikey.WithClock(clock.Now), apikey.WithRandom(&cyclicReader{})),
	}
	svc, err := NewKeyService(testSecrets, apikey.DefaultConfig(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewKeyService() error = %v", err)
	}
	return svc, reg
}
