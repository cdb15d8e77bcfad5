package logger

import (
	"log/slog"
	"strings"
)

const (
	redactedValue = "***REDACTED***"
	// MaskToken keeps no hint of values shorter than this.
	minMaskLength = 12
)

type keyClass int

const (
	keyPublic keyClass = iota
	keyMasked
	keySensitive
)

// keyRules are tried in order against the lowercased attribute key.
var keyRules = []struct {
	class    keyClass
	suffix   bool
	patterns []string
}{
	// Identifiers and derived values stay readable even when the key
	// contains a sensitive word, e.g. "master_key_id" or "token_hint".
	{keyPublic, true, []string{"_id", "_hint", "_part", "_length"}},
	{keyMasked, false, []string{"token", "api_key", "apikey"}},
	{keySensitive, false, []string{"password", "passphrase", "secret", "master", "salt", "credential", "bearer", "key"}},
}

func classifyKey(key string) keyClass {
	k := strings.ToLower(key)
	for _, r := range keyRules {
		for _, p := range r.patterns {
			if (r.suffix && strings.HasSuffix(k, p)) || (!r.suffix && strings.Contains(k, p)) {
				return r.class
			}
		}
	}
	return keyPublic
}

// redact rewrites string attributes according to their key, descending
// into groups.
func redact(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i := range attrs {
			out[i] = redact(attrs[i])
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		switch classifyKey(a.Key) {
		case keyMasked:
			return slog.String(a.Key, MaskToken(v))
		case keySensitive:
			return slog.String(a.Key, redactedValue)
		}
	}
	return a
}

// MaskToken shortens an API key to its first and last four symbols,
// e.g. "GCbu...QAWm". Short values are replaced entirely.
func MaskToken(value string) string {
	if len(value) < minMaskLength {
		return redactedValue
	}
	return value[:4] + "..." + value[len(value)-4:]
}
