// Package apikey provides structured, tamper-evident API keys.
package apikey

import "fmt"

// Fixed field widths.
const (
	VersionDigits     = 2
	ExpiryFlagDigits  = 1
	ExpiryDaysDigits  = 3
	MaxVersion        = 62*62 - 1
	MaxExpiryDays     = 62*62*62 - 1
	MaxTimestampWidth = 12
	MaxPermissionBits = 64
)

// Config holds the field widths and defaults of a Codec.
type Config struct {
	// Version is the format version embedded in every key.
	Version int `json:"version" yaml:"version"`

	// UserIDLength is the width of the user id fragment.
	UserIDLength int `json:"user_id_length" yaml:"user_id_length"`

	// RandomPartLength is the width of the random part.
	RandomPartLength int `json:"random_part_length" yaml:"random_part_length"`

	// ChecksumLength is the width of the checksum.
	ChecksumLength int `json:"checksum_length" yaml:"checksum_length"`

	// TimestampPrecision is the width of the base-36 creation timestamp.
	TimestampPrecision int `json:"timestamp_precision" yaml:"timestamp_precision"`

	// PermissionBits is the size of the permission bitset.
	PermissionBits int `json:"permission_bits" yaml:"permission_bits"`

	// HashRounds is the number of HMAC rounds for the user id fragment.
	HashRounds int `json:"hash_rounds" yaml:"hash_rounds"`

	// DefaultExpiryDays applies when Generate gets no expiry option.
	// Nil means keys never expire.
	DefaultExpiryDays *int `json:"default_expiry_days,omitempty" yaml:"default_expiry_days,omitempty"`
}

// DefaultConfig returns the default configuration (52-symbol keys).
func DefaultConfig() Config {
	return Config{
		Version:            1,
		UserIDLength:       12,
		RandomPartLength:   16,
		ChecksumLength:     10,
		TimestampPrecision: 6,
		PermissionBits:     8,
		HashRounds:         3,
	}
}

// Validate checks the configuration.
// The returned error, if any, is a *ConfigError.
func (c Config) Validate() error {
	switch {
	case c.Version < 0 || c.Version > MaxVersion:
		return &ConfigError{Field: "version", Reason: fmt.Sprintf("must be in [0, %d]", MaxVersion)}
	case c.UserIDLength < 1:
		return &ConfigError{Field: "user_id_length", Reason: "must be positive"}
	case c.RandomPartLength < 1:
		return &ConfigError{Field: "random_part_length", Reason: "must be positive"}
	case c.ChecksumLength < 1:
		return &ConfigError{Field: "checksum_length", Reason: "must be positive"}
	case c.TimestampPrecision < 1 || c.TimestampPrecision > MaxTimestampWidth:
		return &ConfigError{Field: "timestamp_precision", Reason: fmt.Sprintf("must be in [1, %d]", MaxTimestampWidth)}
	case c.PermissionBits < 1 || c.PermissionBits > MaxPermissionBits:
		return &ConfigError{Field: "permission_bits", Reason: fmt.Sprintf("must be in [1, %d]", MaxPermissionBits)}
	case c.HashRounds < 1:
		return &ConfigError{Field: "hash_rounds", Reason: "must be positive"}
	case c.DefaultExpiryDays != nil && (*c.DefaultExpiryDays < 0 || *c.DefaultExpiryDays > MaxExpiryDays):
		return &ConfigError{Field: "default_expiry_days", Reason: fmt.Sprintf("must be in [0, %d]", MaxExpiryDays)}
	}
	return nil
}

// BitmapWidth returns the number of hex digits of the permission bitmap.
func (c Config) BitmapWidth() int {
	return BitmapWidth(c.PermissionBits)
}

// ExpectedLength returns the total key length for this configuration.
func (c Config) ExpectedLength() int {
	return VersionDigits + c.UserIDLength + c.RandomPartLength + c.BitmapWidth() +
		c.TimestampPrecision + ExpiryFlagDigits + ExpiryDaysDigits + c.ChecksumLength
}

// Field names a fixed-width segment of the plain key.
type Field struct {
	Name   string `json:"name" yaml:"name"`
	Offset int    `json:"offset" yaml:"offset"`
	Width  int    `json:"width" yaml:"width"`
}

// Field names, in key order.
const (
	FieldVersion     = "version"
	FieldUserID      = "user_id"
	FieldRandom      = "random"
	FieldPermissions = "permissions"
	FieldTimestamp   = "timestamp"
	FieldExpiryFlag  = "has_expiry"
	FieldExpiryDays  = "expiry_days"
	FieldChecksum    = "checksum"
)

// Layout returns the fields of the plain key in order.
func (c Config) Layout() []Field {
	widths := []struct {
		name  string
		width int
	}{
		{FieldVersion, VersionDigits},
		{FieldUserID, c.UserIDLength},
		{FieldRandom, c.RandomPartLength},
		{FieldPermissions, c.BitmapWidth()},
		{FieldTimestamp, c.TimestampPrecision},
		{FieldExpiryFlag, ExpiryFlagDigits},
		{FieldExpiryDays, ExpiryDaysDigits},
		{FieldChecksum, c.ChecksumLength},
	}

	fields := make([]Field, len(widths))
	offset := 0
	for i, w := range widths {
		fields[i] = Field{Name: w.name, Offset: offset, Width: w.width}
		offset += w.width
	}
	return fields
}
