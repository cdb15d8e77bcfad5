package benchmark

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/keyforge-go/internal/core/domain"
	"github.com/yndnr/keyforge-go/internal/core/service"
	"github.com/yndnr/keyforge-go/internal/telemetry/logger"
	"github.com/yndnr/keyforge-go/internal/telemetry/metric"
	"github.com/yndnr/keyforge-go/pkg/apikey"
)

const (
	benchPrimary   = "master-secret"
	benchSecondary = "secondary-secret"
)

// UserCounts defines the number of distinct users for benchmarking.
var UserCounts = []int{1, 100, 1000, 10000}

// HashRounds defines the fragment hash rounds for benchmarking.
var HashRounds = []int{1, 5, 20, 100}

// newCodec creates a codec with the default layout.
func newCodec(b *testing.B, opts ...apikey.Option) *apikey.Codec {
	b.Helper()
	return newCodecWithConfig(b, apikey.DefaultConfig(), opts...)
}

func newCodecWithConfig(b *testing.B, cfg apikey.Config, opts ...apikey.Option) *apikey.Codec {
	b.Helper()
	c, err := apikey.New(benchPrimary, benchSecondary, cfg, opts...)
	if err != nil {
		b.Fatalf("apikey.New failed: %v", err)
	}
	return c
}

// newKeyService creates a KeyService with a private registry and no logging.
func newKeyService(b *testing.B) *service.KeyService {
	b.Helper()
	secrets := domain.Secrets{Primary: benchPrimary, Secondary: benchSecondary}
	svc, err := service.NewKeyService(secrets, apikey.DefaultConfig(),
		service.WithMetrics(metric.NewRegistry()),
		service.WithLogger(logger.Nop()),
	)
	if err != nil {
		b.Fatalf("NewKeyService failed: %v", err)
	}
	return svc
}

// userIDs returns count distinct user ids.
func userIDs(count int) []string {
	ids := make([]string, count)
	for i := range ids {
		ids[i] = fmt.Sprintf("user-%d", i)
	}
	return ids
}

// generateKeys issues count keys for distinct users.
func generateKeys(b *testing.B, c *apikey.Codec, count int) []string {
	b.Helper()
	keys := make([]string, count)
	for i, id := range userIDs(count) {
		key, err := c.Generate(id, []apikey.Permission{apikey.PermRead}, apikey.WithExpiryDays(30))
		if err != nil {
			b.Fatalf("Generate failed: %v", err)
		}
		keys[i] = key
	}
	return keys
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithUserCounts runs a benchmark function with various user counts.
func runWithUserCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("users_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
