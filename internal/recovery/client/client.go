// Package client is the HTTP gateway to the account-recovery endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"content-portal/client/internal/recovery/domain"
)

const (
	defaultTimeout = 15 * time.Second

	sendForgotPasswordEmailPath = "/api/Email/SendForgotPasswordEmail"
	resetPasswordPath           = "/api/Email/ResetPassword"

	// maxErrorBody caps how much of a failure response is read when looking for a message.
	maxErrorBody = 64 << 10
)

// RequestIDHeader carries a per-request uuid so client and server logs can be correlated.
const RequestIDHeader = "X-Request-Id"

// Client calls the recovery endpoints under BaseURL. It implements service.Gateway.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for baseURL with the given per-request timeout (15s when zero).
// The transport is instrumented with otelhttp so each call produces a client span.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type sendForgotPasswordEmailBody struct {
	Email string `json:"email"`
}

type resetPasswordBody struct {
	Email       string `json:"email"`
	VerifyCode  string `json:"verifyCode"`
	NewPassword string `json:"newPassword"`
}

type errorBody struct {
	Message string `json:"message"`
}

// SendForgotPasswordEmail asks the server to email a verification code to email.
// Any 2xx is success; the body of a non-2xx response is not inspected.
func (c *Client) SendForgotPasswordEmail(ctx context.Context, email string) domain.Outcome {
	resp, out, ok := c.post(ctx, sendForgotPasswordEmailPath, sendForgotPasswordEmailBody{Email: email})
	if !ok {
		return out
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	if isSuccess(resp.StatusCode) {
		return domain.Success(resp.StatusCode)
	}
	log.Printf("recovery client: send code failed status=%d", resp.StatusCode)
	return domain.ServerError(resp.StatusCode, "")
}

// ResetPassword submits the verification code and new password for email.
// For a non-2xx response the body is parsed as JSON and a non-empty "message" is returned on the outcome.
func (c *Client) ResetPassword(ctx context.Context, email, verifyCode, newPassword string) domain.Outcome {
	resp, out, ok := c.post(ctx, resetPasswordPath, resetPasswordBody{
		Email:       email,
		VerifyCode:  verifyCode,
		NewPassword: newPassword,
	})
	if !ok {
		return out
	}
	defer resp.Body.Close()
	if isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return domain.Success(resp.StatusCode)
	}
	log.Printf("recovery client: reset password failed status=%d", resp.StatusCode)
	return domain.ServerError(resp.StatusCode, readMessage(resp.Body))
}

// post sends body as JSON to path. ok is false when no response was obtained; out then holds the outcome.
func (c *Client) post(ctx context.Context, path string, body any) (resp *http.Response, out domain.Outcome, ok bool) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, domain.UnexpectedFault(fmt.Errorf("recovery client: encode body: %w", err)), false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(raw))
	if err != nil {
		return nil, domain.UnexpectedFault(fmt.Errorf("recovery client: build request: %w", err)), false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.New().String())

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	resp, err = hc.Do(req)
	if err != nil {
		log.Printf("recovery client: %s: %v", path, err)
		return nil, domain.TransportError(err), false
	}
	return resp, domain.Outcome{}, true
}

func (c *Client) endpoint(path string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + path
}

// readMessage returns the "message" field of a JSON error body, or "" if the body is absent or malformed.
func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		return ""
	}
	return strings.TrimSpace(eb.Message)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
