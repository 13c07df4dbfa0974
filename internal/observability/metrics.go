package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/registrack/backoffice-gateway/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
	"go.opentelemetry.io/otel/sdk/resource"
)

type AppMetrics struct {
	accessDecisionCounter       metric.Int64Counter
	accessClassificationCounter metric.Int64Counter
	accessSnapshotCacheCounter  metric.Int64Counter
	tokenValidationCounter      metric.Int64Counter
	shapeProbeCounter           metric.Int64Counter
	recordSetSize               metric.Float64Histogram
	recordCacheCounter          metric.Int64Counter
	upstreamReqDuration         metric.Float64Histogram
	auditWriteCounter           metric.Int64Counter
	rateLimitDecisionCounter    metric.Int64Counter
	healthCheckResultCounter    metric.Int64Counter
	healthCheckDuration         metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "upstream.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter("registrack-backoffice-gateway")
	accessDecisionCounter, err := meter.Int64Counter("access.decisions",
		metric.WithDescription("Permission checks evaluated by route guards"))
	if err != nil {
		return nil, err
	}
	accessClassificationCounter, err := meter.Int64Counter("access.classifications",
		metric.WithDescription("Role classifications by source shape"))
	if err != nil {
		return nil, err
	}
	accessSnapshotCacheCounter, err := meter.Int64Counter("access.snapshot.cache.events")
	if err != nil {
		return nil, err
	}
	tokenValidationCounter, err := meter.Int64Counter("auth.access_token.validation.events")
	if err != nil {
		return nil, err
	}
	shapeProbeCounter, err := meter.Int64Counter("normalize.shape_probe.outcomes",
		metric.WithDescription("How each raw payload's collection was located"))
	if err != nil {
		return nil, err
	}
	recordSetSize, err := meter.Float64Histogram("normalize.record_set.size",
		metric.WithDescription("Canonical records produced per payload"))
	if err != nil {
		return nil, err
	}
	recordCacheCounter, err := meter.Int64Counter("records.cache.events")
	if err != nil {
		return nil, err
	}
	upstreamReqDuration, err := meter.Float64Histogram("upstream.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of business-API requests in seconds"))
	if err != nil {
		return nil, err
	}
	auditWriteCounter, err := meter.Int64Counter("audit.write.events")
	if err != nil {
		return nil, err
	}
	rateLimitDecisionCounter, err := meter.Int64Counter("http.rate_limit.decisions")
	if err != nil {
		return nil, err
	}
	healthCheckResultCounter, err := meter.Int64Counter("health.check.results")
	if err != nil {
		return nil, err
	}
	healthCheckDuration, err := meter.Float64Histogram("health.check.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of health dependency checks in seconds"))
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		accessDecisionCounter:       accessDecisionCounter,
		accessClassificationCounter: accessClassificationCounter,
		accessSnapshotCacheCounter:  accessSnapshotCacheCounter,
		tokenValidationCounter:      tokenValidationCounter,
		shapeProbeCounter:           shapeProbeCounter,
		recordSetSize:               recordSetSize,
		recordCacheCounter:          recordCacheCounter,
		upstreamReqDuration:         upstreamReqDuration,
		auditWriteCounter:           auditWriteCounter,
		rateLimitDecisionCounter:    rateLimitDecisionCounter,
		healthCheckResultCounter:    healthCheckResultCounter,
		healthCheckDuration:         healthCheckDuration,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func current() *AppMetrics {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	return m
}

func RecordAccessDecision(ctx context.Context, module, action string, allowed bool) {
	m := current()
	if m == nil {
		return
	}
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	m.accessDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("module", module),
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

func RecordAccessClassification(ctx context.Context, sourceShape string, administrative bool) {
	m := current()
	if m == nil {
		return
	}
	m.accessClassificationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source_shape", sourceShape),
		attribute.Bool("administrative", administrative),
	))
}

func RecordAccessSnapshotCacheEvent(ctx context.Context, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.accessSnapshotCacheCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func RecordAccessTokenValidation(ctx context.Context, outcome, source string) {
	m := current()
	if m == nil {
		return
	}
	m.tokenValidationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("source", source),
	))
}

func RecordShapeProbeOutcome(ctx context.Context, kind, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.shapeProbeCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

func RecordRecordSetSize(ctx context.Context, kind string, size int) {
	m := current()
	if m == nil {
		return
	}
	m.recordSetSize.Record(ctx, float64(size), metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

func RecordRecordCacheEvent(ctx context.Context, kind, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.recordCacheCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

func RecordUpstreamRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.upstreamReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func RecordAuditWrite(ctx context.Context, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.auditWriteCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("check", check),
	))
}
