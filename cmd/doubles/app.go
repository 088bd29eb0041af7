package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/reglet-dev/doublecount/config"
	domainErrors "github.com/reglet-dev/doublecount/domain/errors"
	"github.com/reglet-dev/doublecount/extension"
	"github.com/reglet-dev/doublecount/hostfuncs"
	dlog "github.com/reglet-dev/doublecount/log"
	"github.com/reglet-dev/doublecount/observability/metrics"
	"github.com/reglet-dev/doublecount/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// app is the wiring shared by subcommands that go through the registry.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	module  *extension.Module
	metrics *metrics.Collector
	tracer  *sdktrace.TracerProvider
}

func newApp(configPath string, stderr io.Writer) (*app, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	level, err := dlog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := dlog.New(
		dlog.WithWriter(stderr),
		dlog.WithLevel(level),
		dlog.WithFormat(cfg.Log.Format),
		dlog.WithSource(cfg.Log.Source),
	)

	mod, err := extension.New(cfg.ModuleOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build module: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, module: mod}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewCollector()
	}
	if cfg.Tracing.Enabled {
		a.tracer = tracing.NewLogProvider(logger)
	}
	return a, nil
}

// registry builds the module registry with the configured middleware.
func (a *app) registry() (*hostfuncs.HandlerRegistry, error) {
	mw := []hostfuncs.Middleware{
		hostfuncs.PanicRecoveryMiddleware(),
		hostfuncs.LoggingMiddleware(a.logger),
	}
	if a.tracer != nil {
		mw = append(mw, tracing.Middleware(a.tracer))
	}
	if a.metrics != nil {
		mw = append(mw, a.metrics.Middleware())
	}
	return a.module.Registry(
		hostfuncs.WithMiddleware(mw...),
		hostfuncs.WithMaxRequestSize(a.cfg.Limits.MaxRequestSize),
	)
}

// close flushes tracing and prints the metrics summary when enabled.
func (a *app) close(ctx context.Context, stderr io.Writer) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.logger.WarnContext(ctx, "tracer shutdown failed", "error", err)
		}
	}
	if a.metrics != nil {
		if err := a.metrics.WriteSummary(stderr); err != nil {
			a.logger.WarnContext(ctx, "metrics summary failed", "error", err)
		}
	}
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// reportError prints err as a typed error detail, e.g.
// "doubles: config: config validation failed for field 'log.level': ... [log.level]".
// Joined errors print one indented line per error after the first.
func reportError(stderr io.Writer, err error) {
	detail := domainErrors.ToErrorDetail(err)
	fmt.Fprintf(stderr, "doubles: %v\n", detail)
	if msgs, ok := detail.Details["errors"].([]string); ok {
		for _, msg := range msgs[1:] {
			fmt.Fprintf(stderr, "  %s\n", msg)
		}
	}
}
