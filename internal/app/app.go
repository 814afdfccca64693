// Package app assembles the screening session and its collaborators from
// configuration. Binaries build one App in main and pass it down.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/joelkehle/sanctionguard/internal/casefile"
	"github.com/joelkehle/sanctionguard/internal/notify"
	"github.com/joelkehle/sanctionguard/internal/platform/config"
	"github.com/joelkehle/sanctionguard/internal/platform/metrics"
	"github.com/joelkehle/sanctionguard/internal/platform/telemetry"
	"github.com/joelkehle/sanctionguard/internal/screening"
	"github.com/joelkehle/sanctionguard/internal/tribunal"
)

type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Tribunal *tribunal.Tribunal
	Session  *screening.Session
	Cases    *casefile.Store

	closers []func(context.Context) error
}

// New wires telemetry, model callers, the optional case store and mailer, and
// the screening session. Model selection probes run here, once.
func New(ctx context.Context, cfg config.Config, service string, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}

	shutdown, err := telemetry.Setup(ctx, service, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdown)

	callers := tribunal.NewCallers(ctx, cfg.Credentials, logger)
	a.Tribunal = tribunal.New(callers, cfg.Models, logger, a.Metrics)
	a.Tribunal.SelectModels(ctx)

	opts := screening.Options{
		Threshold: cfg.Threshold,
		Metrics:   a.Metrics,
		Logger:    logger,
	}
	if cfg.CaseDBPath != "" {
		store, err := casefile.Open(cfg.CaseDBPath)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("open case store: %w", err)
		}
		a.Cases = store
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		opts.Store = store
	}
	if mailer := notify.NewMailer(cfg.SMTP, logger); mailer != nil {
		opts.Notifier = mailer
		logger.Info("email alerts enabled", zap.String("to", cfg.SMTP.To))
	}

	a.Session, err = screening.Open(cfg.DatabasePath, a.Tribunal, opts)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
