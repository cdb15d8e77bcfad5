package apikey

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"pgregory.net/rapid"

	"github.com/yndnr/keyforge-go/pkg/charset"
	"github.com/yndnr/keyforge-go/pkg/cmap"
)

const (
	vectorKey         = "GCbulFJ8j1oMOGLCCMPKNWOYLMMbae85y445s89PCkpSrArpQAWm"
	vectorKeyNoExpiry = "GCbulFJ8j1oMOGLCCMPKNWOYLMMbae85y445s88F26X2E8p9KFBq"
)

var vectorTime = time.Unix(1700000000, 0).UTC()

// sequentialRandom returns the bytes 0, 1, ..., 31.
func sequentialRandom() io.Reader {
	b := make([]byte, 32)
	for i := range b {
		b[i] = byte(i)
	}
	return bytes.NewReader(b)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestCodec(t testing.TB, opts ...Option) *Codec {
	t.Helper()
	c, err := New(testPrimary, testSecondary, DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name      string
		primary   string
		secondary string
		cfg       Config
		field     string
	}{
		{"empty primary", "", testSecondary, DefaultConfig(), "primary_secret"},
		{"empty secondary", testPrimary, "", DefaultConfig(), "secondary_secret"},
		{"invalid config", testPrimary, testSecondary, Config{}, "user_id_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.primary, tt.secondary, tt.cfg)
			if c != nil {
				t.Error("New() should return nil codec on error")
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("New() error = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("ConfigError.Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestCodec_GenerateVector(t *testing.T) {
	perms := []Permission{PermRead, PermWrite}

	tests := []struct {
		name string
		opts []GenerateOption
		want string
	}{
		{"thirty days", []GenerateOption{WithExpiryDays(30)}, vectorKey},
		{"no expiry", []GenerateOption{WithoutExpiry()}, vectorKeyNoExpiry},
		{"default config never expires", nil, vectorKeyNoExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCodec(t, WithClock(fixedClock(vectorTime)), WithRandom(sequentialRandom()))
			got, err := c.Generate("user123", perms, tt.opts...)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodec_VerifyVector(t *testing.T) {
	c := newTestCodec(t, WithClock(fixedClock(vectorTime.Add(time.Hour))))

	res := c.Verify(vectorKey)
	if res == nil {
		t.Fatal("Verify() = nil, want valid result")
	}
	if !res.Valid || res.Reason != "" {
		t.Errorf("Verify() Valid = %v, Reason = %q", res.Valid, res.Reason)
	}
	if res.Version != 1 {
		t.Errorf("Version = %d, want 1", res.Version)
	}
	if res.UserIDPart != "ZqkBI1ZnmIJG" {
		t.Errorf("UserIDPart = %q, want %q", res.UserIDPart, "ZqkBI1ZnmIJG")
	}
	if res.RandomPart != "ABCDEFGHIJKLMNOP" {
		t.Errorf("RandomPart = %q, want %q", res.RandomPart, "ABCDEFGHIJKLMNOP")
	}
	if !reflect.DeepEqual(res.Permissions, []Permission{PermRead, PermWrite}) {
		t.Errorf("Permissions = %v, want [read write]", res.Permissions)
	}
	if !res.CreatedAt.Equal(vectorTime) {
		t.Errorf("CreatedAt = %v, want %v", res.CreatedAt, vectorTime)
	}
	wantExpiry := vectorTime.Add(30 * 24 * time.Hour)
	if res.ExpiresAt == nil || !res.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", res.ExpiresAt, wantExpiry)
	}

	res = c.Verify(vectorKeyNoExpiry)
	if res == nil || !res.Valid {
		t.Fatalf("Verify(no expiry) = %+v, want valid", res)
	}
	if res.ExpiresAt != nil {
		t.Errorf("ExpiresAt = %v, want nil", res.ExpiresAt)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t)

	rapid.Check(t, func(t *rapid.T) {
		userID := rapid.String().Draw(t, "userID")
		perms := rapid.SliceOfDistinct(rapid.SampledFrom(Permissions()), func(p Permission) Permission { return p }).Draw(t, "perms")
		var opts []GenerateOption
		var days *int
		if rapid.Bool().Draw(t, "expires") {
			// Draw near the top of the range too, not only small counts.
			d := rapid.OneOf(rapid.IntRange(1, 1000), rapid.IntRange(100000, MaxExpiryDays)).Draw(t, "days")
			days = &d
			opts = append(opts, WithExpiryDays(d))
		}

		key, err := c.Generate(userID, perms, opts...)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(key) != c.ExpectedLength() {
			t.Fatalf("len(key) = %d, want %d", len(key), c.ExpectedLength())
		}
		if !charset.Token.Contains(key) {
			t.Fatalf("key %q contains foreign symbols", key)
		}

		res := c.Verify(key)
		if res == nil || !res.Valid {
			t.Fatalf("Verify(%q) = %+v, want valid", key, res)
		}
		if days != nil {
			want := res.CreatedAt.AddDate(0, 0, *days)
			if res.ExpiresAt == nil || !res.ExpiresAt.Equal(want) {
				t.Fatalf("ExpiresAt = %v, want %v", res.ExpiresAt, want)
			}
		}

		want := append([]Permission(nil), perms...)
		sort.Slice(want, func(i, j int) bool { return want[i].Bit() < want[j].Bit() })
		if len(want) == 0 {
			want = []Permission{}
		}
		if !reflect.DeepEqual(res.Permissions, want) {
			t.Fatalf("Permissions = %v, want %v", res.Permissions, want)
		}
		if res.UserIDPart != c.UserIDPart(userID) {
			t.Fatalf("UserIDPart = %q, want %q", res.UserIDPart, c.UserIDPart(userID))
		}
	})
}

func TestCodec_LongExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		days int
		want time.Time
	}{
		{100000, time.Date(2298, 10, 17, 0, 0, 0, 0, time.UTC)},
		{150000, time.Date(2435, 9, 9, 0, 0, 0, 0, time.UTC)},
		{MaxExpiryDays, time.Date(2677, 7, 9, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.days), func(t *testing.T) {
			c := newTestCodec(t, WithClock(fixedClock(now)))
			key, err := c.Generate("user123", nil, WithExpiryDays(tt.days))
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}

			res := c.Verify(key)
			if res == nil || !res.Valid {
				t.Fatalf("Verify() = %+v, want valid", res)
			}
			if res.ExpiresAt == nil || !res.ExpiresAt.Equal(tt.want) {
				t.Errorf("ExpiresAt = %v, want %v", res.ExpiresAt, tt.want)
			}
			if !res.ExpiresAt.Equal(now.AddDate(0, 0, tt.days)) {
				t.Errorf("ExpiresAt = %v, want createdAt + %d days", res.ExpiresAt, tt.days)
			}
		})
	}
}

func TestCodec_GenerateUnique(t *testing.T) {
	c := newTestCodec(t)

	a, err := c.Generate("user123", []Permission{PermRead})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := c.Generate("user123", []Permission{PermRead})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if a == b {
		t.Error("Generate() returned identical keys")
	}

	ra, rb := c.Verify(a), c.Verify(b)
	if ra == nil || rb == nil {
		t.Fatal("Verify() rejected a fresh key")
	}
	if ra.UserIDPart != rb.UserIDPart {
		t.Errorf("UserIDPart differs across generations: %q != %q", ra.UserIDPart, rb.UserIDPart)
	}
	if ra.RandomPart == rb.RandomPart {
		t.Error("RandomPart should differ across generations")
	}
}

func TestCodec_VerifyTampered(t *testing.T) {
	var reasons []string
	c := newTestCodec(t,
		WithClock(fixedClock(vectorTime)),
		WithRejectHook(func(reason string) { reasons = append(reasons, reason) }),
	)
	symbols := charset.Token.String()

	for i := 0; i < len(vectorKey); i++ {
		tampered := []byte(vectorKey)
		idx := charset.Token.Index(tampered[i])
		tampered[i] = symbols[(idx+1)%charset.Size]

		if res := c.Verify(string(tampered)); res != nil {
			t.Errorf("Verify() accepted key tampered at position %d: %+v", i, res)
		}
	}

	if len(reasons) != len(vectorKey) {
		t.Fatalf("reject hook called %d times, want %d", len(reasons), len(vectorKey))
	}
	for _, r := range reasons {
		if r != RejectChecksum {
			t.Errorf("reject reason = %q, want %q", r, RejectChecksum)
		}
	}
}

func TestCodec_VerifyMalformed(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		reason string
	}{
		{"empty", "", RejectLength},
		{"too short", vectorKey[:51], RejectLength},
		{"too long", vectorKey + "A", RejectLength},
		{"foreign symbol", vectorKey[:10] + "-" + vectorKey[11:], RejectCharset},
		{"all zero symbols", string(bytes.Repeat([]byte{'A'}, 52)), RejectChecksum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			c := newTestCodec(t, WithRejectHook(func(reason string) { got = reason }))

			if res := c.Verify(tt.key); res != nil {
				t.Errorf("Verify() = %+v, want nil", res)
			}
			if got != tt.reason {
				t.Errorf("reject reason = %q, want %q", got, tt.reason)
			}
		})
	}
}

func TestCodec_VerifyOtherSecrets(t *testing.T) {
	other, err := New(testPrimary, "another-secondary", DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if res := other.Verify(vectorKey); res != nil {
		t.Errorf("Verify() with other secrets = %+v, want nil", res)
	}
}

func TestCodec_Expiry(t *testing.T) {
	perms := []Permission{PermRead, PermWrite}

	t.Run("zero days expires after creation", func(t *testing.T) {
		now := vectorTime
		c := newTestCodec(t, WithClock(func() time.Time { return now }))

		key, err := c.Generate("user123", perms, WithExpiryDays(0))
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if res := c.Verify(key); res == nil || !res.Valid {
			t.Fatalf("Verify() at creation = %+v, want valid", res)
		}

		now = vectorTime.Add(time.Second)
		res := c.Verify(key)
		if res == nil {
			t.Fatal("Verify() = nil, want expired result")
		}
		if res.Valid || res.Reason != ReasonExpired || !res.Expired() {
			t.Errorf("Verify() = %+v, want expired", res)
		}
		if res.UserIDPart != "ZqkBI1ZnmIJG" || res.Version != 1 {
			t.Errorf("expired result lost fields: %+v", res)
		}
		if res.RandomPart != "" || res.Permissions != nil {
			t.Errorf("expired result should omit random part and permissions: %+v", res)
		}
		if res.ExpiresAt == nil || !res.ExpiresAt.Equal(vectorTime) {
			t.Errorf("ExpiresAt = %v, want %v", res.ExpiresAt, vectorTime)
		}
	})

	t.Run("vector expires after thirty days", func(t *testing.T) {
		expiry := vectorTime.Add(30 * 24 * time.Hour)

		c := newTestCodec(t, WithClock(fixedClock(expiry)))
		if res := c.Verify(vectorKey); res == nil || !res.Valid {
			t.Errorf("Verify() at expiry instant = %+v, want valid", res)
		}

		c = newTestCodec(t, WithClock(fixedClock(expiry.Add(time.Second))))
		if res := c.Verify(vectorKey); !res.Expired() {
			t.Errorf("Verify() after expiry = %+v, want expired", res)
		}
	})

	t.Run("no expiry never expires", func(t *testing.T) {
		c := newTestCodec(t, WithClock(fixedClock(vectorTime.AddDate(100, 0, 0))))
		if res := c.Verify(vectorKeyNoExpiry); res == nil || !res.Valid {
			t.Errorf("Verify() = %+v, want valid", res)
		}
	})

	t.Run("default expiry applies", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DefaultExpiryDays = intPtr(7)
		c, err := New(testPrimary, testSecondary, cfg, WithClock(fixedClock(vectorTime)))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		key, err := c.Generate("user123", perms)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		res := c.Verify(key)
		want := vectorTime.Add(7 * 24 * time.Hour)
		if res == nil || res.ExpiresAt == nil || !res.ExpiresAt.Equal(want) {
			t.Fatalf("Verify() = %+v, want expiry at %v", res, want)
		}

		key, err = c.Generate("user123", perms, WithoutExpiry())
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if res := c.Verify(key); res == nil || res.ExpiresAt != nil {
			t.Errorf("WithoutExpiry() should override default, got %+v", res)
		}
	})
}

func TestCodec_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(*Config)
		opts    []Option
		perms   []Permission
		genOpts []GenerateOption
		want    error
	}{
		{
			name:    "negative expiry",
			genOpts: []GenerateOption{WithExpiryDays(-1)},
			want:    ErrExpiryOutOfRange,
		},
		{
			name:    "expiry too large",
			genOpts: []GenerateOption{WithExpiryDays(MaxExpiryDays + 1)},
			want:    ErrExpiryOutOfRange,
		},
		{
			name:  "unknown permission",
			perms: []Permission{"owner"},
			want:  ErrUnknownPermission,
		},
		{
			name:  "permission out of range",
			cfg:   func(c *Config) { c.PermissionBits = 4 },
			perms: []Permission{PermSpecial},
			want:  ErrPermissionOutOfRange,
		},
		{
			name: "timestamp overflow",
			cfg:  func(c *Config) { c.TimestampPrecision = 5 },
			opts: []Option{WithClock(fixedClock(vectorTime))},
			want: ErrTimestampOverflow,
		},
		{
			name: "time before epoch",
			opts: []Option{WithClock(fixedClock(time.Unix(-1, 0)))},
			want: ErrTimestampOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			c, err := New(testPrimary, testSecondary, cfg, tt.opts...)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			key, err := c.Generate("user123", tt.perms, tt.genOpts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("Generate() error = %v, want %v", err, tt.want)
			}
			if key != "" {
				t.Errorf("Generate() = %q on error, want empty", key)
			}
		})
	}
}

func TestCodec_RandomFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	c := newTestCodec(t, WithRandom(iotest.ErrReader(boom)))

	_, err := c.Generate("user123", nil)
	if !errors.Is(err, boom) {
		t.Errorf("Generate() error = %v, want %v", err, boom)
	}
	if !errors.Is(err, ErrRandomSource) {
		t.Errorf("Generate() error = %v, want %v", err, ErrRandomSource)
	}
}

func TestCodec_CustomConfig(t *testing.T) {
	cfg := Config{
		Version:            42,
		UserIDLength:       20,
		RandomPartLength:   40,
		ChecksumLength:     16,
		TimestampPrecision: 8,
		PermissionBits:     16,
		HashRounds:         5,
	}
	c, err := New(testPrimary, testSecondary, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	key, err := c.Generate("user123", []Permission{PermAdmin, PermSpecial}, WithExpiryDays(MaxExpiryDays))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(key) != c.ExpectedLength() {
		t.Fatalf("len(key) = %d, want %d", len(key), c.ExpectedLength())
	}

	res := c.Verify(key)
	if res == nil || !res.Valid {
		t.Fatalf("Verify() = %+v, want valid", res)
	}
	if want := res.CreatedAt.AddDate(0, 0, MaxExpiryDays); res.ExpiresAt == nil || !res.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", res.ExpiresAt, want)
	}
	if res.Version != 42 {
		t.Errorf("Version = %d, want 42", res.Version)
	}
	if len(res.RandomPart) != 40 {
		t.Errorf("len(RandomPart) = %d, want 40", len(res.RandomPart))
	}
	if !reflect.DeepEqual(res.Permissions, []Permission{PermAdmin, PermSpecial}) {
		t.Errorf("Permissions = %v", res.Permissions)
	}

	def := newTestCodec(t)
	if def.Verify(key) != nil {
		t.Error("default codec should reject a key of another layout")
	}
}

func TestCodec_ConfigIsCopied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultExpiryDays = intPtr(5)
	c, err := New(testPrimary, testSecondary, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	*cfg.DefaultExpiryDays = 99
	got := c.Config()
	if *got.DefaultExpiryDays != 5 {
		t.Errorf("DefaultExpiryDays = %d, want 5", *got.DefaultExpiryDays)
	}
	*got.DefaultExpiryDays = 1
	if *c.Config().DefaultExpiryDays != 5 {
		t.Error("Config() exposed internal state")
	}

	layout := c.Layout()
	layout[0].Width = 99
	if c.Layout()[0].Width != VersionDigits {
		t.Error("Layout() exposed internal state")
	}
}

func TestCodec_Concurrent(t *testing.T) {
	c := newTestCodec(t, WithFragmentCache(8))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key, err := c.Generate("user123", []Permission{PermRead})
				if err != nil {
					errs <- err
					return
				}
				if res := c.Verify(key); res == nil || !res.Valid {
					errs <- errors.New("fresh key rejected")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestCodec_FragmentCache(t *testing.T) {
	plain := newTestCodec(t)
	cached := newTestCodec(t,
		WithFragmentCache(4),
		WithClock(fixedClock(vectorTime)),
		WithRandom(sequentialRandom()),
	)

	got, err := cached.Generate("user123", []Permission{PermRead, PermWrite}, WithExpiryDays(30))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != vectorKey {
		t.Errorf("Generate() = %q, want %q", got, vectorKey)
	}

	for i := 0; i < 20; i++ {
		id := string(rune('a'+i)) + "-user"
		if a, b := cached.UserIDPart(id), plain.UserIDPart(id); a != b {
			t.Errorf("UserIDPart(%q) = %q, want %q", id, a, b)
		}
		// Second lookup comes from the cache.
		if a, b := cached.UserIDPart(id), plain.UserIDPart(id); a != b {
			t.Errorf("cached UserIDPart(%q) = %q, want %q", id, a, b)
		}
	}
	if n := cached.fragments.Len(); n == 0 || n > 4+cmap.DefaultShardCount {
		t.Errorf("cache holds %d entries", n)
	}

	off := newTestCodec(t, WithFragmentCache(4), WithFragmentCache(0))
	if off.fragments != nil {
		t.Error("WithFragmentCache(0) left the cache enabled")
	}
}

func BenchmarkGenerate(b *testing.B) {
	c := newTestCodec(b)
	perms := []Permission{PermRead, PermWrite}
	for i := 0; i < b.N; i++ {
		if _, err := c.Generate("user123", perms, WithExpiryDays(30)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerify(b *testing.B) {
	c := newTestCodec(b, WithClock(fixedClock(vectorTime)))
	for i := 0; i < b.N; i++ {
		if c.Verify(vectorKey) == nil {
			b.Fatal("vector rejected")
		}
	}
}
