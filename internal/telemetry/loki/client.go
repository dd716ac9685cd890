// Package loki pushes recovery events to Grafana Loki as JSON log lines.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"content-portal/client/internal/telemetry"
)

const defaultJob = "recovery-client"

// PushRequest is the Loki push API request body (v1).
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a single stream with labels and log entries.
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"` // each entry is [timestamp_ns, log_line]
}

// labelSanitize replaces characters that are invalid in Loki label values.
var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:]`)

// eventLine is the JSON log line pushed for one RecoveryEvent. It never carries field values.
type eventLine struct {
	FlowID     string `json:"flowId"`
	Phase      string `json:"phase"`
	Request    string `json:"request"`
	Outcome    string `json:"outcome"`
	HTTPStatus int    `json:"httpStatus"`
	DurationMs int64  `json:"durationMs"`
	CreatedAt  string `json:"createdAt"`
}

// Emitter implements telemetry.EventEmitter by pushing each event to Loki.
type Emitter struct {
	BaseURL    string
	Job        string
	HTTPClient *http.Client
}

// NewEmitter returns an Emitter for the Loki instance at baseURL (e.g. http://localhost:3100).
func NewEmitter(baseURL, job string) *Emitter {
	if job == "" {
		job = defaultJob
	}
	return &Emitter{
		BaseURL:    baseURL,
		Job:        job,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Emit pushes event with phase, request and outcome as stream labels.
func (e *Emitter) Emit(ctx context.Context, event *telemetry.RecoveryEvent) error {
	if event == nil {
		return nil
	}
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	line, err := json.Marshal(eventLine{
		FlowID:     event.FlowID,
		Phase:      event.Phase,
		Request:    event.Request,
		Outcome:    event.Outcome,
		HTTPStatus: event.HTTPStatus,
		DurationMs: event.Duration.Milliseconds(),
		CreatedAt:  ts.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	labels := map[string]string{
		"phase":   event.Phase,
		"request": event.Request,
		"outcome": event.Outcome,
	}
	return e.PushEvent(ctx, ts, string(line), labels)
}

// PushEvent sends a single log line to Loki. labels are added to the stream alongside job.
// Returns an error if the HTTP request fails or Loki returns non-2xx.
func (e *Emitter) PushEvent(ctx context.Context, timestamp time.Time, line string, labels map[string]string) error {
	if e.BaseURL == "" {
		return fmt.Errorf("loki: base URL is empty")
	}
	streamLabels := make(map[string]string, len(labels)+1)
	streamLabels["job"] = e.Job
	for k, v := range labels {
		sanitized := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_")
		if sanitized != "" {
			streamLabels[k] = sanitized
		}
	}
	body := PushRequest{
		Streams: []Stream{{
			Stream: streamLabels,
			Values: [][]string{{fmt.Sprintf("%d", timestamp.UnixNano()), line}},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := strings.TrimSuffix(e.BaseURL, "/") + "/loki/api/v1/push"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	hc := e.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}
