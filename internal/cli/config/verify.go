package config

import (
	"github.com/yndnr/keyforge-go/internal/core/domain"
	"github.com/yndnr/keyforge-go/internal/telemetry/logger"
)

// Verify validates the configuration.
//
// Missing secrets are not an error here: invite codes need none. Secret
// material that is present must be usable.
func Verify(cfg *Spec) error {
	if err := verifyCodec(&cfg.Codec); err != nil {
		return err
	}
	if err := verifySecrets(&cfg.Secrets); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	return verifyCLI(&cfg.CLI)
}

func verifyCodec(c *CodecSection) error {
	if err := c.APIKeyConfig().Validate(); err != nil {
		return domain.ErrConfigInvalid.WithDetails("codec").WithCause(err)
	}
	return nil
}

func verifySecrets(s *SecretsSection) error {
	source, err := s.Source()
	if err != nil {
		return err
	}
	if source == SourceNone {
		return nil
	}
	_, err = s.Resolve()
	return err
}

func verifyLog(l *logger.Config) error {
	if !logger.ValidLevel(l.Level) {
		return domain.ErrConfigInvalid.WithDetails("log.level must be one of debug, info, warn, error")
	}
	switch l.Format {
	case "text", "json":
		return nil
	default:
		return domain.ErrConfigInvalid.WithDetails("log.format must be text or json")
	}
}

func verifyCLI(c *CLISection) error {
	switch c.Output {
	case "table", "json", "yaml":
		return nil
	default:
		return domain.ErrConfigInvalid.WithDetails("cli.output must be table, json or yaml")
	}
}
