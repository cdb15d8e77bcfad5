// Package apikey provides structured, tamper-evident API keys.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/keyforge-go/pkg/charset"
	"github.com/yndnr/keyforge-go/pkg/cmap"
	"github.com/yndnr/keyforge-go/pkg/token"
)

const secondsPerDay = 24 * 60 * 60

// minRandomBytes is the minimum number of random bytes behind the random part.
const minRandomBytes = 32

// Expiry flag symbols and the expiry field of keys that never expire.
const (
	expiryFlagSet       = '1'
	expiryFlagUnset     = '0'
	noExpiryPlaceholder = "000"
)

// Reject reasons passed to the hook installed with WithRejectHook.
const (
	RejectCharset  = "charset"
	RejectLength   = "length"
	RejectChecksum = "checksum"
	RejectField    = "field"
)

// Reason explains why an authentic key is not valid.
type Reason string

// ReasonExpired marks a key past its expiry.
const ReasonExpired Reason = "expired"

// Result is the outcome of verifying an authentic key.
type Result struct {
	Valid       bool         `json:"valid" yaml:"valid"`
	Reason      Reason       `json:"reason,omitempty" yaml:"reason,omitempty"`
	Version     int          `json:"version" yaml:"version"`
	UserIDPart  string       `json:"user_id_part" yaml:"user_id_part"`
	RandomPart  string       `json:"random_part,omitempty" yaml:"random_part,omitempty"`
	Permissions []Permission `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at" yaml:"created_at"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// Expired reports whether the result describes an expired key.
func (r *Result) Expired() bool {
	return r != nil && r.Reason == ReasonExpired
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock sets the time source used for creation and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRandom sets the random source of the random part.
// The reader must be safe for concurrent use if the Codec is shared.
func WithRandom(r io.Reader) Option {
	return func(c *Codec) {
		if r != nil {
			c.random = r
		}
	}
}

// WithRejectHook installs a callback that receives the internal reason
// whenever Verify returns nil. It is meant for debug logging only.
func WithRejectHook(fn func(reason string)) Option {
	return func(c *Codec) {
		c.onReject = fn
	}
}

// WithFragmentCache memoizes user id fragments for up to size user ids.
// Deriving a fragment costs HashRounds HMAC passes, so callers issuing
// many keys for the same users benefit. Zero or less disables the cache.
func WithFragmentCache(size int) Option {
	return func(c *Codec) {
		if size > 0 {
			c.fragments = cmap.New[string](cmap.WithLimit(size))
		} else {
			c.fragments = nil
		}
	}
}

// GenerateOption configures a single Generate call.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	set  bool
	days *int
}

// WithExpiryDays makes the key expire days days after creation.
func WithExpiryDays(days int) GenerateOption {
	return func(o *generateOptions) {
		o.set = true
		o.days = &days
	}
}

// WithoutExpiry makes the key never expire, overriding the default.
func WithoutExpiry() GenerateOption {
	return func(o *generateOptions) {
		o.set = true
		o.days = nil
	}
}

// Codec generates and verifies API keys.
type Codec struct {
	cfg        Config
	hasher     *token.Hasher
	obfuscator *Obfuscator
	alphabet   *charset.Alphabet
	layout     []Field
	length     int

	now       func() time.Time
	random    io.Reader
	onReject  func(reason string)
	fragments *cmap.Map[string]
}

// New creates a Codec bound to the given secrets.
func New(primary, secondary string, cfg Config, opts ...Option) (*Codec, error) {
	if primary == "" {
		return nil, &ConfigError{Field: "primary_secret", Reason: "must not be empty"}
	}
	if secondary == "" {
		return nil, &ConfigError{Field: "secondary_secret", Reason: "must not be empty"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.DefaultExpiryDays != nil {
		days := *cfg.DefaultExpiryDays
		cfg.DefaultExpiryDays = &days
	}

	hasher := token.NewHasher(primary, secondary, charset.Token)
	c := &Codec{
		cfg:        cfg,
		hasher:     hasher,
		obfuscator: NewObfuscator(hasher),
		alphabet:   charset.Token,
		layout:     cfg.Layout(),
		length:     cfg.ExpectedLength(),
		now:        time.Now,
		random:     rand.Reader,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns a copy of the codec configuration.
func (c *Codec) Config() Config {
	cfg := c.cfg
	if cfg.DefaultExpiryDays != nil {
		days := *cfg.DefaultExpiryDays
		cfg.DefaultExpiryDays = &days
	}
	return cfg
}

// ExpectedLength returns the length of every key this codec issues.
func (c *Codec) ExpectedLength() int {
	return c.length
}

// Layout returns the fields of the plain key in order.
func (c *Codec) Layout() []Field {
	out := make([]Field, len(c.layout))
	copy(out, c.layout)
	return out
}

// UserIDPart returns the user id fragment embedded in keys for userID.
func (c *Codec) UserIDPart(userID string) string {
	if c.fragments == nil {
		return c.fragment(userID)
	}
	return c.fragments.GetOrCompute(userID, func() string {
		return c.fragment(userID)
	})
}

func (c *Codec) fragment(userID string) string {
	return c.hasher.Fragment(userID, c.cfg.HashRounds, c.cfg.UserIDLength)
}

// Generate issues a key for userID granting perms.
//
// Without an expiry option the configured default applies.
func (c *Codec) Generate(userID string, perms []Permission, opts ...GenerateOption) (string, error) {
	var o generateOptions
	for _, opt := range opts {
		opt(&o)
	}
	days := c.cfg.DefaultExpiryDays
	if o.set {
		days = o.days
	}
	if days != nil && (*days < 0 || *days > MaxExpiryDays) {
		return "", fmt.Errorf("%w: %d", ErrExpiryOutOfRange, *days)
	}

	bitmap, err := EncodePermissions(perms, c.cfg.PermissionBits)
	if err != nil {
		return "", err
	}

	ts, err := c.encodeTimestamp(c.now())
	if err != nil {
		return "", err
	}

	randomPart, err := c.randomPart()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(c.length)
	b.WriteString(c.alphabet.EncodeNumber(uint64(c.cfg.Version), VersionDigits))
	b.WriteString(c.UserIDPart(userID))
	b.WriteString(randomPart)
	b.WriteString(bitmap)
	b.WriteString(ts)
	if days != nil {
		b.WriteByte(expiryFlagSet)
		b.WriteString(c.alphabet.EncodeNumber(uint64(*days), ExpiryDaysDigits))
	} else {
		b.WriteByte(expiryFlagUnset)
		b.WriteString(noExpiryPlaceholder)
	}

	payload := b.String()
	plain := payload + c.hasher.Checksum(payload, c.cfg.ChecksumLength)
	return c.obfuscator.Obfuscate(plain)
}

// Verify checks key and decodes its fields.
//
// It returns nil for malformed or tampered keys, a Result with
// Reason == ReasonExpired for authentic keys past expiry, and a valid
// Result otherwise.
func (c *Codec) Verify(key string) *Result {
	if len(key) != c.length {
		c.reject(RejectLength)
		return nil
	}

	plain, err := c.obfuscator.Deobfuscate(key)
	if err != nil {
		c.reject(RejectCharset)
		return nil
	}

	fields := make(map[string]string, len(c.layout))
	for _, f := range c.layout {
		fields[f.Name] = plain[f.Offset : f.Offset+f.Width]
	}

	sumField := c.layout[len(c.layout)-1]
	if !c.hasher.VerifyChecksum(plain[:sumField.Offset], fields[FieldChecksum]) {
		c.reject(RejectChecksum)
		return nil
	}

	version, err := c.alphabet.DecodeNumber(fields[FieldVersion])
	if err != nil {
		c.reject(RejectField)
		return nil
	}

	seconds, err := strconv.ParseUint(fields[FieldTimestamp], 36, 63)
	if err != nil {
		c.reject(RejectField)
		return nil
	}
	createdAt := time.Unix(int64(seconds), 0).UTC()

	var expiresAt *time.Time
	switch fields[FieldExpiryFlag][0] {
	case expiryFlagSet:
		days, err := c.alphabet.DecodeNumber(fields[FieldExpiryDays])
		if err != nil {
			c.reject(RejectField)
			return nil
		}
		// Whole seconds: a time.Duration overflows past about 106751 days.
		t := time.Unix(int64(seconds)+int64(days)*secondsPerDay, 0).UTC()
		expiresAt = &t
	case expiryFlagUnset:
	default:
		c.reject(RejectField)
		return nil
	}

	if expiresAt != nil && expiresAt.Before(c.now()) {
		return &Result{
			Valid:      false,
			Reason:     ReasonExpired,
			Version:    int(version),
			UserIDPart: fields[FieldUserID],
			CreatedAt:  createdAt,
			ExpiresAt:  expiresAt,
		}
	}

	perms, err := DecodePermissions(fields[FieldPermissions])
	if err != nil {
		c.reject(RejectField)
		return nil
	}

	return &Result{
		Valid:       true,
		Version:     int(version),
		UserIDPart:  fields[FieldUserID],
		RandomPart:  fields[FieldRandom],
		Permissions: perms,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
	}
}

func (c *Codec) reject(reason string) {
	if c.onReject != nil {
		c.onReject(reason)
	}
}

func (c *Codec) encodeTimestamp(now time.Time) (string, error) {
	sec := now.Unix()
	if sec < 0 {
		return "", fmt.Errorf("%w: %s is before the epoch", ErrTimestampOverflow, now)
	}
	ts := strconv.FormatInt(sec, 36)
	if len(ts) > c.cfg.TimestampPrecision {
		return "", fmt.Errorf("%w: %d symbols needed, %d available", ErrTimestampOverflow, len(ts), c.cfg.TimestampPrecision)
	}
	return strings.Repeat("0", c.cfg.TimestampPrecision-len(ts)) + ts, nil
}

func (c *Codec) randomPart() (string, error) {
	n := c.cfg.RandomPartLength
	if n < minRandomBytes {
		n = minRandomBytes
	}
	raw, err := token.ReadBytes(c.random, n)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRandomSource, err)
	}
	part, err := c.alphabet.MapHexDigest(hex.EncodeToString(raw), c.cfg.RandomPartLength)
	if err != nil {
		return "", fmt.Errorf("apikey: map random part: %w", err)
	}
	return part, nil
}
