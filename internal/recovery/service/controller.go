// Package service implements the account-recovery flow: pure state transitions plus a Controller
// that owns one flow instance and orchestrates its network requests.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"content-portal/client/internal/recovery/domain"
	"content-portal/client/internal/telemetry"
)

// Result is the state after a Submit or Finish, plus whether the flow completed.
type Result struct {
	State     domain.State
	Completed bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithEmitter sets the emitter that receives one RecoveryEvent per resolved request.
func WithEmitter(e telemetry.EventEmitter) Option {
	return func(c *Controller) { c.emitter = e }
}

// WithSignIn sets the callback invoked when the flow hands control back to the sign-in surface,
// either after a successful reset or on ReturnToSignIn.
func WithSignIn(fn func()) Option {
	return func(c *Controller) { c.onSignIn = fn }
}

// Controller owns the state of one recovery flow. It is safe for concurrent use: at most one
// request is outstanding at a time, and fields may be edited while it is in flight.
type Controller struct {
	gateway  Gateway
	emitter  telemetry.EventEmitter
	onSignIn func()
	nowF     func() time.Time

	mu        sync.Mutex
	state     domain.State
	flowID    string
	pending   *domain.Request
	startedAt time.Time
}

// NewController returns a Controller in the initial state that dispatches requests through gw.
func NewController(gw Gateway, opts ...Option) *Controller {
	c := &Controller{
		gateway: gw,
		nowF:    time.Now,
		state:   domain.NewState(),
		flowID:  uuid.New().String(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// FlowID returns the identifier of the current flow instance.
func (c *Controller) FlowID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flowID
}

// EditField overwrites a field value and clears its error. Allowed while a request is in flight.
func (c *Controller) EditField(f domain.Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = EditField(c.state, f, value)
}

// Begin runs the submit transition. On success the returned request must be dispatched and it and its
// outcome passed to Finish; on ErrValidation or ErrSubmitInFlight there is nothing to dispatch.
func (c *Controller) Begin() (*domain.Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, req, err := Submit(c.state)
	c.state = next
	if err != nil {
		return nil, err
	}
	c.pending = req
	c.startedAt = c.nowF()
	return req, nil
}

// Dispatch performs req through the controller's gateway without touching state. Front ends that run
// the request on their own goroutine call Begin, Dispatch and then Finish.
func (c *Controller) Dispatch(ctx context.Context, req *domain.Request) domain.Outcome {
	if req == nil {
		return domain.UnexpectedFault(errors.New("recovery: nil request"))
	}
	return Execute(ctx, c.gateway, *req)
}

// Finish resolves the in-flight request req with o and releases Submitting. If req is no longer the
// outstanding request (the flow was discarded meanwhile), the outcome is dropped and the current state returned.
func (c *Controller) Finish(ctx context.Context, req *domain.Request, o domain.Outcome) Result {
	c.mu.Lock()
	if req == nil || c.pending != req {
		res := Result{State: c.state.Clone()}
		c.mu.Unlock()
		return res
	}
	now := c.nowF()
	event := &telemetry.RecoveryEvent{
		FlowID:     c.flowID,
		Phase:      c.state.Phase.String(),
		Request:    req.Kind.String(),
		Outcome:    o.Kind.String(),
		HTTPStatus: o.Status,
		Duration:   now.Sub(c.startedAt),
		CreatedAt:  now.UTC(),
	}
	next, completed := Resolve(c.state, o)
	c.state = next
	c.pending = nil
	res := Result{State: next.Clone(), Completed: completed}
	onSignIn := c.onSignIn
	c.mu.Unlock()

	telemetry.EmitAsync(c.emitter, ctx, event)
	if completed && onSignIn != nil {
		onSignIn()
	}
	return res
}

// Submit validates the active phase and, when it passes, dispatches exactly one request and waits for it.
// Submitting is released before Submit returns regardless of how the request resolves.
// It returns ErrValidation or ErrSubmitInFlight without contacting the network.
func (c *Controller) Submit(ctx context.Context) (Result, error) {
	req, err := c.Begin()
	if err != nil {
		return Result{State: c.State()}, err
	}
	resolved := false
	defer func() {
		if !resolved {
			c.Finish(ctx, req, domain.UnexpectedFault(errors.New("recovery: request aborted")))
		}
	}()
	res := c.Finish(ctx, req, c.Dispatch(ctx, req))
	resolved = true
	return res, nil
}

// ReturnToSignIn discards all state, starts a new flow identity and hands control to the sign-in surface.
func (c *Controller) ReturnToSignIn() {
	c.mu.Lock()
	c.state = ReturnToSignIn()
	c.flowID = uuid.New().String()
	c.pending = nil
	onSignIn := c.onSignIn
	c.mu.Unlock()
	if onSignIn != nil {
		onSignIn()
	}
}
