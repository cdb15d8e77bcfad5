package service

import (
	"context"
	"time"

	"github.com/yndnr/keyforge-go/internal/telemetry/logger"
	"github.com/yndnr/keyforge-go/internal/telemetry/metric"
	"github.com/yndnr/keyforge-go/pkg/apikey"
)

// Option configures a service.
type Option func(*options)

type options struct {
	metrics   *metric.Registry
	logger    logger.Logger
	codecOpts []apikey.Option
}

// WithMetrics sets the metrics registry. Defaults to metric.Global().
func WithMetrics(reg *metric.Registry) Option {
	return func(o *options) {
		if reg != nil {
			o.metrics = reg
		}
	}
}

// WithLogger sets the logger used when the request context carries none.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCodecOptions passes options through to apikey.New.
func WithCodecOptions(opts ...apikey.Option) Option {
	return func(o *options) {
		o.codecOpts = append(o.codecOpts, opts...)
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		metrics: metric.Global(),
		logger:  logger.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// observe records the duration of operation since start.
func (o *options) observe(operation string, start time.Time) {
	o.metrics.ObserveOperationDuration(operation, time.Since(start).Seconds())
}

func (o *options) log(ctx context.Context) logger.Logger {
	return logger.FromContext(ctx, o.logger)
}
