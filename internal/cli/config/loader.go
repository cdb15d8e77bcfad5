package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/yndnr/keyforge-go/internal/core/domain"
	"github.com/yndnr/keyforge-go/internal/infra/confloader"
)

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// Path is the config file. Empty means DefaultConfigPath, which is
	// skipped silently when it does not exist.
	Path string

	// EnvPrefix overrides confloader.DefaultEnvPrefix.
	EnvPrefix string

	// Overrides are dotted keys from command-line flags ("log.level").
	Overrides map[string]any
}

// Load builds the configuration from defaults, file, environment and
// overrides, in increasing order of priority. It does not call Verify.
func Load(opts LoadOptions) (*Spec, string, error) {
	path, err := resolvePath(opts.Path)
	if err != nil {
		return nil, "", err
	}

	loaderOpts := []confloader.Option{confloader.WithConfigFile(path)}
	if opts.EnvPrefix != "" {
		loaderOpts = append(loaderOpts, confloader.WithEnvPrefix(opts.EnvPrefix))
	}
	l := confloader.NewLoader(loaderOpts...)

	if err := l.LoadFile(path); err != nil {
		return nil, path, domain.ErrConfigFile.WithDetails(path).WithCause(err)
	}
	if err := l.LoadEnv(); err != nil {
		return nil, path, domain.ErrConfigInvalid.WithDetails("environment").WithCause(err)
	}
	if len(opts.Overrides) > 0 {
		if err := l.LoadMap(opts.Overrides); err != nil {
			return nil, path, domain.ErrConfigInvalid.WithDetails("flags").WithCause(err)
		}
	}

	cfg := Default()
	if err := l.Unmarshal(cfg); err != nil {
		return nil, path, domain.ErrConfigInvalid.WithCause(err)
	}
	return cfg, path, nil
}

// resolvePath returns the file to load, or "" when there is none.
// An explicit path must exist.
func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", domain.ErrConfigFile.WithDetails(path).WithCause(err)
		}
		return path, nil
	}

	path = DefaultConfigPath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", domain.ErrConfigFile.WithDetails(path).WithCause(err)
	}
	return path, nil
}
