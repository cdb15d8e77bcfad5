package config

import (
	"github.com/yndnr/keyforge-go/internal/core/domain"
	"github.com/yndnr/keyforge-go/internal/telemetry/logger"
	"github.com/yndnr/keyforge-go/pkg/apikey"
)

// Spec is the root configuration for keyforge-cli.
type Spec struct {
	Codec   CodecSection   `koanf:"codec" json:"codec" yaml:"codec"`
	Secrets SecretsSection `koanf:"secrets" json:"secrets" yaml:"secrets"`
	Log     logger.Config  `koanf:"log" json:"log" yaml:"log"`
	Metrics MetricsSection `koanf:"metrics" json:"metrics" yaml:"metrics"`
	CLI     CLISection     `koanf:"cli" json:"cli" yaml:"cli"`
}

// CodecSection configures the API key layout.
// Every field maps to the apikey.Config field of the same name.
type CodecSection struct {
	Version            int  `koanf:"version" json:"version" yaml:"version"`
	UserIDLength       int  `koanf:"user_id_length" json:"user_id_length" yaml:"user_id_length"`
	RandomPartLength   int  `koanf:"random_part_length" json:"random_part_length" yaml:"random_part_length"`
	ChecksumLength     int  `koanf:"checksum_length" json:"checksum_length" yaml:"checksum_length"`
	TimestampPrecision int  `koanf:"timestamp_precision" json:"timestamp_precision" yaml:"timestamp_precision"`
	PermissionBits     int  `koanf:"permission_bits" json:"permission_bits" yaml:"permission_bits"`
	HashRounds         int  `koanf:"hash_rounds" json:"hash_rounds" yaml:"hash_rounds"`
	DefaultExpiryDays  *int `koanf:"default_expiry_days" json:"default_expiry_days,omitempty" yaml:"default_expiry_days,omitempty"`
}

// SecretsSection configures the secret material keys are bound to.
//
// Exactly one source is used: an explicit primary/secondary pair, a
// base64url master secret expanded with HKDF, or a passphrase and salt
// stretched with Argon2id and then expanded.
type SecretsSection struct {
	Primary    string `koanf:"primary" json:"primary,omitempty" yaml:"primary,omitempty"`
	Secondary  string `koanf:"secondary" json:"secondary,omitempty" yaml:"secondary,omitempty"`
	Master     string `koanf:"master" json:"master,omitempty" yaml:"master,omitempty"`
	Passphrase string `koanf:"passphrase" json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
	Salt       string `koanf:"salt" json:"salt,omitempty" yaml:"salt,omitempty"`
}

// MetricsSection configures metric export.
type MetricsSection struct {
	// Textfile is a path the metrics are written to after a run,
	// in the node_exporter textfile format. Empty disables export.
	Textfile string `koanf:"textfile" json:"textfile,omitempty" yaml:"textfile,omitempty"`
}

// CLISection configures interactive behavior.
type CLISection struct {
	Output      string `koanf:"output" json:"output" yaml:"output"` // table, json, yaml
	HistoryFile string `koanf:"history_file" json:"history_file,omitempty" yaml:"history_file,omitempty"`
}

// SecretSource names where Resolve takes the secrets from.
type SecretSource string

// Secret sources.
const (
	SourceNone       SecretSource = "none"
	SourceExplicit   SecretSource = "explicit"
	SourceMaster     SecretSource = "master"
	SourcePassphrase SecretSource = "passphrase"
)

// APIKeyConfig converts the section into an apikey.Config.
func (c CodecSection) APIKeyConfig() apikey.Config {
	cfg := apikey.Config{
		Version:            c.Version,
		UserIDLength:       c.UserIDLength,
		RandomPartLength:   c.RandomPartLength,
		ChecksumLength:     c.ChecksumLength,
		TimestampPrecision: c.TimestampPrecision,
		PermissionBits:     c.PermissionBits,
		HashRounds:         c.HashRounds,
	}
	if c.DefaultExpiryDays != nil {
		days := *c.DefaultExpiryDays
		cfg.DefaultExpiryDays = &days
	}
	return cfg
}

// Source reports which secret source is configured.
// It returns domain.ErrArgumentConflict when more than one is set.
func (s SecretsSection) Source() (SecretSource, error) {
	var sources []SecretSource
	if s.Primary != "" || s.Secondary != "" {
		sources = append(sources, SourceExplicit)
	}
	if s.Master != "" {
		sources = append(sources, SourceMaster)
	}
	if s.Passphrase != "" || s.Salt != "" {
		sources = append(sources, SourcePassphrase)
	}

	switch len(sources) {
	case 0:
		return SourceNone, nil
	case 1:
		return sources[0], nil
	default:
		return SourceNone, domain.ErrArgumentConflict.WithDetails(
			"secrets: set only one of primary/secondary, master, passphrase/salt")
	}
}

// Resolve returns the codec secrets from the configured source.
func (s SecretsSection) Resolve() (domain.Secrets, error) {
	source, err := s.Source()
	if err != nil {
		return domain.Secrets{}, err
	}

	switch source {
	case SourceExplicit:
		secrets := domain.Secrets{Primary: s.Primary, Secondary: s.Secondary}
		if err := secrets.Validate(); err != nil {
			return domain.Secrets{}, err
		}
		return secrets, nil
	case SourceMaster:
		master, err := domain.DecodeMaster(s.Master)
		if err != nil {
			return domain.Secrets{}, err
		}
		return domain.DeriveSecrets(master)
	case SourcePassphrase:
		master, err := domain.StretchPassphrase(s.Passphrase, s.Salt)
		if err != nil {
			return domain.Secrets{}, err
		}
		return domain.DeriveSecrets(master)
	default:
		return domain.Secrets{}, domain.ErrSecretMissing.WithDetails(
			"configure secrets.primary and secrets.secondary, secrets.master, or secrets.passphrase and secrets.salt")
	}
}
