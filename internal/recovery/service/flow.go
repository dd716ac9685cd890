package service

import (
	"context"
	"errors"
	"fmt"

	"content-portal/client/internal/recovery/domain"
)

// Sentinel errors for the recovery flow; front ends map them to UI behaviour.
var (
	// ErrValidation means at least one active-phase field failed validation; FieldErrors holds the details.
	ErrValidation = errors.New("recovery: validation failed")
	// ErrSubmitInFlight means a request for this flow is already outstanding.
	ErrSubmitInFlight = errors.New("recovery: submission already in flight")
)

// Gateway performs the two recovery requests. Implementations report every failure as an Outcome.
type Gateway interface {
	SendForgotPasswordEmail(ctx context.Context, email string) domain.Outcome
	ResetPassword(ctx context.Context, email, verifyCode, newPassword string) domain.Outcome
}

// EditField overwrites the value of f and clears any error recorded for it. The field is not re-validated.
// Unknown fields leave the state unchanged.
func EditField(s domain.State, f domain.Field, value string) domain.State {
	if !f.Known() {
		return s
	}
	next := s.Clone()
	next.Fields[f] = value
	delete(next.FieldErrors, f)
	return next
}

// Submit validates the active phase and, if it passes, marks the state as submitting and returns the
// single request to dispatch. A send-code request records its email as CodeEmail; the reset request
// is always for CodeEmail, so editing the email field after the code was sent has no effect on it.
// A rejected submit returns a nil request and ErrSubmitInFlight or ErrValidation;
// Submitting is never changed by a rejected submit.
func Submit(s domain.State) (domain.State, *domain.Request, error) {
	if s.Submitting {
		return s, nil, ErrSubmitInFlight
	}
	next := s.Clone()
	if errs := domain.Validate(s.Phase, s.Fields); len(errs) > 0 {
		next.FieldErrors = errs
		return next, nil, ErrValidation
	}
	next.Submitting = true
	next.FieldErrors = domain.FieldErrors{}
	next.Notice = domain.Notice{}

	if s.Phase == domain.PhaseAwaitingCodeAndPassword {
		return next, &domain.Request{
			Kind:        domain.RequestResetPassword,
			Email:       s.CodeEmail,
			VerifyCode:  s.Fields[domain.FieldVerifyCode],
			NewPassword: s.Fields[domain.FieldNewPassword],
		}, nil
	}
	next.CodeEmail = s.Fields[domain.FieldEmail]
	return next, &domain.Request{Kind: domain.RequestSendCode, Email: next.CodeEmail}, nil
}

// Resolve applies the outcome of the in-flight request. Submitting is always released.
// completed is true when the reset-password request succeeded; the caller then hands off to sign-in.
// Field values are kept on failure so the user can retry.
func Resolve(s domain.State, o domain.Outcome) (next domain.State, completed bool) {
	next = s.Clone()
	next.Submitting = false

	switch o.Kind {
	case domain.OutcomeSuccess:
		if s.Phase == domain.PhaseAwaitingEmail {
			next.Notice = domain.Notice{Kind: domain.NoticeInfo, Message: domain.MsgCodeSent}
			next.Phase = domain.PhaseAwaitingCodeAndPassword
			return next, false
		}
		next.Notice = domain.Notice{Kind: domain.NoticeInfo, Message: domain.MsgPasswordReset}
		return next, true
	case domain.OutcomeServerError:
		msg := o.Message
		if msg == "" || s.Phase == domain.PhaseAwaitingEmail {
			msg = genericFailure(s.Phase)
		}
		next.Notice = domain.Notice{Kind: domain.NoticeError, Message: msg}
	case domain.OutcomeTransportError:
		next.Notice = domain.Notice{Kind: domain.NoticeError, Message: domain.MsgServerUnreachable}
	default:
		next.Notice = domain.Notice{Kind: domain.NoticeError, Message: domain.MsgUnexpectedFault}
	}
	return next, false
}

// ReturnToSignIn discards the flow and returns a fresh initial state.
func ReturnToSignIn() domain.State {
	return domain.NewState()
}

// Execute dispatches req through gw. A panic inside the gateway is reported as an unexpected fault
// so the caller can always resolve the request.
func Execute(ctx context.Context, gw Gateway, req domain.Request) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = domain.UnexpectedFault(fmt.Errorf("recovery: gateway panic: %v", r))
		}
	}()
	if gw == nil {
		return domain.UnexpectedFault(errors.New("recovery: no gateway configured"))
	}
	switch req.Kind {
	case domain.RequestResetPassword:
		return gw.ResetPassword(ctx, req.Email, req.VerifyCode, req.NewPassword)
	default:
		return gw.SendForgotPasswordEmail(ctx, req.Email)
	}
}

func genericFailure(p domain.Phase) string {
	if p == domain.PhaseAwaitingCodeAndPassword {
		return domain.MsgResetFailed
	}
	return domain.MsgSendCodeFailed
}
