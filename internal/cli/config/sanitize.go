package config

import "strings"

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for displaying and logging configuration without exposing
// secrets.
func Sanitize(cfg *Spec) *Spec {
	sanitized := *cfg

	if cfg.Codec.DefaultExpiryDays != nil {
		days := *cfg.Codec.DefaultExpiryDays
		sanitized.Codec.DefaultExpiryDays = &days
	}

	s := &sanitized.Secrets
	s.Primary = maskSecret(s.Primary)
	s.Secondary = maskSecret(s.Secondary)
	s.Master = maskSecret(s.Master)
	s.Passphrase = maskSecret(s.Passphrase)
	s.Salt = maskSecret(s.Salt)

	return &sanitized
}

// maskSecret masks a secret value for safe display. Empty stays empty.
func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
	}
}
