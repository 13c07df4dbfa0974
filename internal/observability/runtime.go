package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/registrack/backoffice-gateway/internal/config"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Runtime owns the gateway's telemetry providers. Providers register a
// shutdown hook as they come up; Shutdown and the mid-init unwind both run
// the hooks newest-first, so the log pipeline outlives the trace and metric
// exporters and can still report their flush failures.
type Runtime struct {
	LoggerProvider *sdklog.LoggerProvider
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider

	shutdowns []func(context.Context) error
}

func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	lp, err := InitLogs(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.LoggerProvider = lp
	if lp != nil {
		rt.shutdowns = append(rt.shutdowns, lp.Shutdown)
	}

	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		rt.unwind(ctx)
		return nil, err
	}
	rt.MeterProvider = mp
	if mp != nil {
		rt.shutdowns = append(rt.shutdowns, mp.Shutdown)
	}

	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		rt.unwind(ctx)
		return nil, err
	}
	rt.TracerProvider = tp
	if tp != nil {
		rt.shutdowns = append(rt.shutdowns, tp.Shutdown)
	}

	return rt, nil
}

func (r *Runtime) unwind(ctx context.Context) {
	for i := len(r.shutdowns) - 1; i >= 0; i-- {
		_ = r.shutdowns[i](ctx)
	}
	r.shutdowns = nil
}

func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.shutdowns) - 1; i >= 0; i-- {
		if err := r.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.shutdowns = nil
	return errors.Join(errs...)
}
