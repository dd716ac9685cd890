package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"content-portal/client/internal/telemetry"
)

const instrumentationName = "content-portal/recovery"

// NewEventEmitter returns an EventEmitter that sends recovery events as OTel log records via provider
// and records them on the recovery.submissions counter and recovery.request.duration histogram.
// If provider is nil, returns a no-op emitter. meterProvider may be nil; then metrics are dropped.
func NewEventEmitter(provider *sdklog.LoggerProvider, meterProvider metric.MeterProvider) (telemetry.EventEmitter, error) {
	if provider == nil {
		return noopEmitter{}, nil
	}
	return newEmitter(provider.Logger(instrumentationName), meterProvider)
}

func newEmitter(logger otellog.Logger, meterProvider metric.MeterProvider) (*otelEmitter, error) {
	if meterProvider == nil {
		meterProvider = noop.NewMeterProvider()
	}
	meter := meterProvider.Meter(instrumentationName)
	submissions, err := meter.Int64Counter("recovery.submissions",
		metric.WithDescription("Recovery requests dispatched, by phase and outcome."))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("recovery.request.duration",
		metric.WithDescription("Time from dispatch to resolution of a recovery request."),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &otelEmitter{logger: logger, submissions: submissions, duration: duration}, nil
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.RecoveryEvent) error { return nil }

type otelEmitter struct {
	logger      otellog.Logger
	submissions metric.Int64Counter
	duration    metric.Float64Histogram
}

// Emit converts the recovery event to an OTel log record and metric points. Best-effort.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.RecoveryEvent) error {
	if event == nil {
		return nil
	}
	attrs := metric.WithAttributes(
		attribute.String("phase", event.Phase),
		attribute.String("request", event.Request),
		attribute.String("outcome", event.Outcome),
	)
	e.submissions.Add(ctx, 1, attrs)
	e.duration.Record(ctx, float64(event.Duration)/float64(time.Millisecond), attrs)

	rec := otellog.Record{}
	rec.SetTimestamp(event.CreatedAt)
	if rec.Timestamp().IsZero() {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetBody(otellog.StringValue("recovery request resolved"))
	if event.Outcome == "success" {
		rec.SetSeverity(otellog.SeverityInfo)
		rec.SetSeverityText("INFO")
	} else {
		rec.SetSeverity(otellog.SeverityWarn)
		rec.SetSeverityText("WARN")
	}
	if event.FlowID != "" {
		rec.AddAttributes(otellog.String("flow_id", event.FlowID))
	}
	rec.AddAttributes(
		otellog.String("phase", event.Phase),
		otellog.String("request", event.Request),
		otellog.String("outcome", event.Outcome),
		otellog.Int("http_status", event.HTTPStatus),
		otellog.Int64("duration_ms", event.Duration.Milliseconds()),
	)
	e.logger.Emit(ctx, rec)
	return nil
}
