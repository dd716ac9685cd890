package otel

import (
	"context"
	"sync"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"content-portal/client/internal/telemetry"
)

var _ sdklog.Processor = (*captureProcessor)(nil)

// captureProcessor stores the attributes of every emitted record for assertion.
type captureProcessor struct {
	mu      sync.Mutex
	records []map[string]string
	sev     []otellog.Severity
}

func (p *captureProcessor) OnEmit(ctx context.Context, rec *sdklog.Record) error {
	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.String()
		return true
	})
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, attrs)
	p.sev = append(p.sev, rec.Severity())
	return nil
}

func (p *captureProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }
func (p *captureProcessor) Shutdown(context.Context) error                         { return nil }
func (p *captureProcessor) ForceFlush(context.Context) error                       { return nil }

func TestNewEventEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em, err := NewEventEmitter(nil, nil)
	if err != nil {
		t.Fatalf("NewEventEmitter: %v", err)
	}
	if em == nil {
		t.Fatal("NewEventEmitter(nil) returned nil")
	}
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("noop Emit(ctx, nil): %v", err)
	}
	if err := em.Emit(context.Background(), &telemetry.RecoveryEvent{FlowID: "flow-1"}); err != nil {
		t.Errorf("noop Emit(ctx, event): %v", err)
	}
}

func TestEmit_NilEvent_ReturnsNil(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em, err := NewEventEmitter(provider, nil)
	if err != nil {
		t.Fatalf("NewEventEmitter: %v", err)
	}
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(ctx, nil): %v", err)
	}
}

func TestEmit_AttributeMapping(t *testing.T) {
	proc := &captureProcessor{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(proc))
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em, err := NewEventEmitter(provider, nil)
	if err != nil {
		t.Fatalf("NewEventEmitter: %v", err)
	}

	event := &telemetry.RecoveryEvent{
		FlowID:     "flow-1",
		Phase:      "awaiting_code_and_password",
		Request:    "reset_password",
		Outcome:    "server_error",
		HTTPStatus: 400,
		Duration:   250 * time.Millisecond,
		CreatedAt:  time.Now().UTC(),
	}
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	proc.mu.Lock()
	defer proc.mu.Unlock()
	if len(proc.records) != 1 {
		t.Fatalf("records = %d, want 1", len(proc.records))
	}
	want := map[string]string{
		"flow_id":     "flow-1",
		"phase":       "awaiting_code_and_password",
		"request":     "reset_password",
		"outcome":     "server_error",
		"http_status": "400",
		"duration_ms": "250",
	}
	for k, v := range want {
		if got := proc.records[0][k]; got != v {
			t.Errorf("attr %s = %q, want %q", k, got, v)
		}
	}
	if proc.sev[0] != otellog.SeverityWarn {
		t.Errorf("severity = %v, want %v", proc.sev[0], otellog.SeverityWarn)
	}
}

func TestEmit_RecordsSubmissionCounter(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(ctx) }()
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(ctx) }()

	em, err := NewEventEmitter(provider, mp)
	if err != nil {
		t.Fatalf("NewEventEmitter: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := em.Emit(ctx, &telemetry.RecoveryEvent{Phase: "awaiting_email", Request: "send_code", Outcome: "success"}); err != nil {
			t.Fatalf("Emit: %v", err)
		}
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var total int64
	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "recovery.submissions" {
				continue
			}
			found = true
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("recovery.submissions data = %T, want Sum[int64]", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if !found {
		t.Fatal("recovery.submissions metric not collected")
	}
	if total != 3 {
		t.Errorf("recovery.submissions = %d, want 3", total)
	}
}
