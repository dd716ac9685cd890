// Package telemetry defines recovery flow events and best-effort delivery of them.
package telemetry

import (
	"context"
	"time"
)

// RecoveryEvent describes one resolved recovery request. It never carries field values.
type RecoveryEvent struct {
	// FlowID identifies the recovery flow instance (uuid, regenerated on return to sign-in).
	FlowID string
	// Phase is the phase the request was submitted from (e.g. "awaiting_email").
	Phase string
	// Request is the endpoint kind ("send_code" or "reset_password").
	Request string
	// Outcome is the outcome kind ("success", "server_error", ...).
	Outcome string
	// HTTPStatus is the response status, 0 when no response was received.
	HTTPStatus int
	Duration   time.Duration
	CreatedAt  time.Time
}

// EventEmitter emits recovery events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *RecoveryEvent) error
}
