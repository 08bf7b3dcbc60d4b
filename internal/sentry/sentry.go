// Package sentry manages the process wide Sentry client. Every method is a
// no-op when Sentry is disabled in config, so callers never branch on it.
package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/printprice/printprice/internal/config"
	"github.com/printprice/printprice/internal/logger"
	"go.uber.org/fx"
)

type Service struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

func NewSentryService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// RegisterHooks initializes Sentry on startup and flushes buffered events on
// shutdown.
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return svc.start() },
		OnStop:  func(ctx context.Context) error { return svc.stop() },
	})
}

func (s *Service) start() error {
	if !s.cfg.Sentry.Enabled {
		s.logger.Info("sentry disabled")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              s.cfg.Sentry.DSN,
		Environment:      s.cfg.Sentry.Environment,
		EnableTracing:    true,
		TracesSampleRate: s.cfg.Sentry.SampleRate,
		TracesSampler:    s.sampler(),
	})
	if err != nil {
		s.logger.Errorw("sentry initialization failed", "error", err)
		return err
	}

	s.logger.Infow("sentry initialized",
		"environment", s.cfg.Sentry.Environment,
		"sample_rate", s.cfg.Sentry.SampleRate,
	)
	return nil
}

func (s *Service) stop() error {
	if s.cfg.Sentry.Enabled {
		sentry.Flush(2 * time.Second)
	}
	return nil
}

// sampler drops health check traces, which would otherwise dominate the
// sample at typical probe intervals.
func (s *Service) sampler() sentry.TracesSampler {
	return func(ctx sentry.SamplingContext) float64 {
		if ctx.Span.Name == "GET /health" {
			return 0.0
		}
		return s.cfg.Sentry.SampleRate
	}
}

// CaptureException forwards an error to Sentry.
func (s *Service) CaptureException(err error) {
	if !s.cfg.Sentry.Enabled {
		return
	}
	sentry.CaptureException(err)
}

// StartDBSpan opens a database span under the surrounding transaction and
// returns the context to run the operation with. The span is nil when
// Sentry is disabled; callers finish it only when non-nil.
func (s *Service) StartDBSpan(ctx context.Context, operation string, data map[string]interface{}) (*sentry.Span, context.Context) {
	if !s.cfg.Sentry.Enabled {
		return nil, ctx
	}

	span := sentry.StartSpan(ctx, operation)
	span.Description = operation
	span.Op = "db.postgres"
	for k, v := range data {
		span.SetData(k, v)
	}

	return span, span.Context()
}
