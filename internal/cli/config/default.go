package config

import (
	"os"
	"path/filepath"

	"github.com/yndnr/keyforge-go/internal/telemetry/logger"
	"github.com/yndnr/keyforge-go/pkg/apikey"
)

// Default configuration values.
const (
	DefaultOutput    = "table"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"

	configDirName  = ".keyforge"
	configFileName = "config.yaml"
	historyName    = "history"
)

// Default returns the default configuration.
func Default() *Spec {
	codec := apikey.DefaultConfig()
	return &Spec{
		Codec: CodecSection{
			Version:            codec.Version,
			UserIDLength:       codec.UserIDLength,
			RandomPartLength:   codec.RandomPartLength,
			ChecksumLength:     codec.ChecksumLength,
			TimestampPrecision: codec.TimestampPrecision,
			PermissionBits:     codec.PermissionBits,
			HashRounds:         codec.HashRounds,
		},
		Log: logger.Config{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Output: os.Stderr,
		},
		CLI: CLISection{
			Output:      DefaultOutput,
			HistoryFile: DefaultHistoryPath(),
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, configDirName, configFileName)
}

// DefaultHistoryPath returns the default shell history file path.
func DefaultHistoryPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, configDirName, historyName)
}
