package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/keyforge-go/internal/cli/config"
	"github.com/yndnr/keyforge-go/internal/cli/output"
	"github.com/yndnr/keyforge-go/internal/core/service"
	"github.com/yndnr/keyforge-go/internal/telemetry/logger"
	"github.com/yndnr/keyforge-go/internal/telemetry/metric"
	"github.com/yndnr/keyforge-go/pkg/apikey"
)

// Runtime is the state shared by the commands of one invocation,
// or of one shell session.
type Runtime struct {
	Config     *config.Spec
	ConfigPath string
	Overrides  map[string]any
	Logger     logger.Logger
	Metrics    *metric.Registry
	Format     output.Format
	Wide       bool

	codecOpts []apikey.Option
	keys      *service.KeyService
	invites   *service.InviteService
}

// loadRuntime loads and verifies the configuration on first use.
func loadRuntime(c *cli.Context) (*Runtime, error) {
	o := appOptions(c)
	if o.rt != nil {
		return o.rt, nil
	}

	overrides, err := flagOverrides(c)
	if err != nil {
		return nil, err
	}

	cfg, path, err := config.Load(config.LoadOptions{
		Path:      c.String("config"),
		Overrides: overrides,
	})
	if err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, err
	}

	cfg.Log.Output = c.App.ErrWriter
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(cfg.CLI.Output)
	if err != nil {
		return nil, err
	}

	reg := o.metrics
	if reg == nil {
		reg = metric.NewRegistry()
	}
	codecCfg := cfg.Codec.APIKeyConfig()
	if err := reg.Register(metric.NewCollector(metric.CodecInfo{
		FormatVersion: codecCfg.Version,
		KeyLength:     codecCfg.ExpectedLength(),
	})); err != nil {
		log.Debug("codec info metric not registered", "error", err)
	}

	o.rt = &Runtime{
		Config:     cfg,
		ConfigPath: path,
		Overrides:  overrides,
		Logger:     log,
		Metrics:    reg,
		Format:     format,
		Wide:       c.Bool("wide"),
		codecOpts:  o.codecOpts,
	}
	log.Debug("configuration loaded",
		"path", path,
		"key_length", codecCfg.ExpectedLength(),
	)
	return o.rt, nil
}

// KeyService returns the API key service, resolving secrets on first use.
func (rt *Runtime) KeyService() (*service.KeyService, error) {
	if rt.keys != nil {
		return rt.keys, nil
	}

	secrets, err := rt.Config.Secrets.Resolve()
	if err != nil {
		return nil, err
	}

	svc, err := service.NewKeyService(secrets, rt.Config.Codec.APIKeyConfig(),
		service.WithMetrics(rt.Metrics),
		service.WithLogger(rt.Logger),
		service.WithCodecOptions(rt.codecOpts...),
	)
	if err != nil {
		return nil, err
	}
	rt.keys = svc
	return svc, nil
}

// InviteService returns the invite code service.
func (rt *Runtime) InviteService() *service.InviteService {
	if rt.invites == nil {
		rt.invites = service.NewInviteService(
			service.WithMetrics(rt.Metrics),
			service.WithLogger(rt.Logger),
		)
	}
	return rt.invites
}

// outputFormat returns the format for c; a command-line --output wins
// over the configured one.
func (rt *Runtime) outputFormat(c *cli.Context) (output.Format, error) {
	if c.IsSet("output") {
		return output.ParseFormat(c.String("output"))
	}
	return rt.Format, nil
}

// render writes data to the application's writer.
func (rt *Runtime) render(c *cli.Context, data any) error {
	format, err := rt.outputFormat(c)
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(format, rt.Wide || c.Bool("wide"))
	return formatter.Format(c.App.Writer, data)
}

// writeMetrics writes the textfile if one is configured.
func (rt *Runtime) writeMetrics() error {
	path := rt.Config.Metrics.Textfile
	if path == "" {
		return nil
	}
	if err := rt.Metrics.WriteTextfile(path); err != nil {
		rt.Logger.Warn("failed to write metrics textfile", "path", path, "error", err)
		return err
	}
	rt.Logger.Debug("metrics textfile written", "path", path)
	return nil
}
