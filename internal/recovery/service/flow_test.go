package service

import (
	"context"
	"errors"
	"testing"

	"content-portal/client/internal/recovery/domain"
)

// fakeGateway records calls and returns canned outcomes.
type fakeGateway struct {
	sendOutcome  domain.Outcome
	resetOutcome domain.Outcome
	panicWith    any

	sendCalls  []string
	resetCalls []domain.Request
}

func (g *fakeGateway) SendForgotPasswordEmail(_ context.Context, email string) domain.Outcome {
	g.sendCalls = append(g.sendCalls, email)
	if g.panicWith != nil {
		panic(g.panicWith)
	}
	return g.sendOutcome
}

func (g *fakeGateway) ResetPassword(_ context.Context, email, verifyCode, newPassword string) domain.Outcome {
	g.resetCalls = append(g.resetCalls, domain.Request{
		Kind: domain.RequestResetPassword, Email: email, VerifyCode: verifyCode, NewPassword: newPassword,
	})
	if g.panicWith != nil {
		panic(g.panicWith)
	}
	return g.resetOutcome
}

func codePhaseState() domain.State {
	s := domain.NewState()
	s.Phase = domain.PhaseAwaitingCodeAndPassword
	s.Fields[domain.FieldEmail] = "user@example.com"
	s.CodeEmail = "user@example.com"
	s.Fields[domain.FieldVerifyCode] = "000000"
	s.Fields[domain.FieldNewPassword] = "abc123"
	s.Fields[domain.FieldConfirmNewPassword] = "abc123"
	return s
}

func TestEditField_ClearsOnlyThatFieldError(t *testing.T) {
	s := domain.NewState()
	s.Phase = domain.PhaseAwaitingCodeAndPassword
	s.FieldErrors[domain.FieldNewPassword] = domain.MsgNewPasswordTooShort
	s.FieldErrors[domain.FieldVerifyCode] = domain.MsgVerifyCodeRequired

	next := EditField(s, domain.FieldNewPassword, "a")
	if next.Fields[domain.FieldNewPassword] != "a" {
		t.Errorf("newPassword = %q, want %q", next.Fields[domain.FieldNewPassword], "a")
	}
	if _, ok := next.FieldErrors[domain.FieldNewPassword]; ok {
		t.Error("newPassword error should be cleared even though the value is still invalid")
	}
	if next.FieldErrors[domain.FieldVerifyCode] != domain.MsgVerifyCodeRequired {
		t.Error("verifyCode error should be untouched")
	}
	if _, ok := s.FieldErrors[domain.FieldNewPassword]; !ok {
		t.Error("input state was mutated")
	}
}

func TestEditField_UnknownFieldIgnored(t *testing.T) {
	s := domain.NewState()
	next := EditField(s, domain.Field("username"), "x")
	if _, ok := next.Fields[domain.Field("username")]; ok {
		t.Error("unknown field should not be stored")
	}
}

func TestSubmit_ValidationBlocksRequest(t *testing.T) {
	s := domain.NewState()
	s.Fields[domain.FieldEmail] = "bad-email"
	next, req, err := Submit(s)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if req != nil {
		t.Errorf("req = %+v, want nil", req)
	}
	if next.Submitting {
		t.Error("Submitting should stay false")
	}
	if next.FieldErrors[domain.FieldEmail] != domain.MsgEmailInvalid {
		t.Errorf("email error = %q, want %q", next.FieldErrors[domain.FieldEmail], domain.MsgEmailInvalid)
	}
}

func TestSubmit_InFlightRejected(t *testing.T) {
	s := domain.NewState()
	s.Fields[domain.FieldEmail] = "user@example.com"
	s.Submitting = true
	next, req, err := Submit(s)
	if !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("err = %v, want ErrSubmitInFlight", err)
	}
	if req != nil || !next.Submitting {
		t.Errorf("req = %+v, Submitting = %v", req, next.Submitting)
	}
}

func TestSubmit_ClearsNoticeAndBuildsRequest(t *testing.T) {
	s := codePhaseState()
	s.Notice = domain.Notice{Kind: domain.NoticeError, Message: "old"}
	next, req, err := Submit(s)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !next.Submitting {
		t.Error("Submitting should be true")
	}
	if !next.Notice.IsZero() {
		t.Errorf("Notice = %+v, want zero", next.Notice)
	}
	want := domain.Request{
		Kind: domain.RequestResetPassword, Email: "user@example.com", VerifyCode: "000000", NewPassword: "abc123",
	}
	if *req != want {
		t.Errorf("req = %+v, want %+v", *req, want)
	}
}

func TestSubmit_SendCodeRecordsCodeEmail(t *testing.T) {
	s := domain.NewState()
	s.Fields[domain.FieldEmail] = "user@example.com"
	next, req, err := Submit(s)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if req.Kind != domain.RequestSendCode || req.Email != "user@example.com" {
		t.Errorf("req = %+v", *req)
	}
	if next.CodeEmail != "user@example.com" {
		t.Errorf("CodeEmail = %q, want %q", next.CodeEmail, "user@example.com")
	}
}

func TestSubmit_ResetUsesCodeEmail(t *testing.T) {
	s := EditField(codePhaseState(), domain.FieldEmail, "other@example.com")
	_, req, err := Submit(s)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if req.Email != "user@example.com" {
		t.Errorf("reset email = %q, want the address the code was sent to", req.Email)
	}
}

func TestResolve(t *testing.T) {
	testCases := []struct {
		name          string
		phase         domain.Phase
		outcome       domain.Outcome
		wantPhase     domain.Phase
		wantNotice    domain.Notice
		wantCompleted bool
	}{
		{"send code success", domain.PhaseAwaitingEmail, domain.Success(200),
			domain.PhaseAwaitingCodeAndPassword, domain.Notice{Kind: domain.NoticeInfo, Message: domain.MsgCodeSent}, false},
		{"send code server error ignores message", domain.PhaseAwaitingEmail, domain.ServerError(500, "boom"),
			domain.PhaseAwaitingEmail, domain.Notice{Kind: domain.NoticeError, Message: domain.MsgSendCodeFailed}, false},
		{"send code transport error", domain.PhaseAwaitingEmail, domain.TransportError(errors.New("dial")),
			domain.PhaseAwaitingEmail, domain.Notice{Kind: domain.NoticeError, Message: domain.MsgServerUnreachable}, false},
		{"reset success", domain.PhaseAwaitingCodeAndPassword, domain.Success(204),
			domain.PhaseAwaitingCodeAndPassword, domain.Notice{Kind: domain.NoticeInfo, Message: domain.MsgPasswordReset}, true},
		{"reset server message", domain.PhaseAwaitingCodeAndPassword, domain.ServerError(400, "invalid code"),
			domain.PhaseAwaitingCodeAndPassword, domain.Notice{Kind: domain.NoticeError, Message: "invalid code"}, false},
		{"reset server no message", domain.PhaseAwaitingCodeAndPassword, domain.ServerError(500, ""),
			domain.PhaseAwaitingCodeAndPassword, domain.Notice{Kind: domain.NoticeError, Message: domain.MsgResetFailed}, false},
		{"unexpected fault", domain.PhaseAwaitingCodeAndPassword, domain.UnexpectedFault(nil),
			domain.PhaseAwaitingCodeAndPassword, domain.Notice{Kind: domain.NoticeError, Message: domain.MsgUnexpectedFault}, false},
		{"zero outcome is a fault", domain.PhaseAwaitingEmail, domain.Outcome{},
			domain.PhaseAwaitingEmail, domain.Notice{Kind: domain.NoticeError, Message: domain.MsgUnexpectedFault}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := codePhaseState()
			s.Phase = tc.phase
			s.Submitting = true
			next, completed := Resolve(s, tc.outcome)
			if next.Submitting {
				t.Error("Submitting should be released")
			}
			if next.Phase != tc.wantPhase {
				t.Errorf("Phase = %v, want %v", next.Phase, tc.wantPhase)
			}
			if next.Notice != tc.wantNotice {
				t.Errorf("Notice = %+v, want %+v", next.Notice, tc.wantNotice)
			}
			if completed != tc.wantCompleted {
				t.Errorf("completed = %v, want %v", completed, tc.wantCompleted)
			}
			if next.Fields[domain.FieldNewPassword] != "abc123" {
				t.Error("fields should be retained")
			}
		})
	}
}

func TestExecute_DispatchesByKind(t *testing.T) {
	gw := &fakeGateway{sendOutcome: domain.Success(200), resetOutcome: domain.ServerError(400, "x")}
	out := Execute(context.Background(), gw, domain.Request{Kind: domain.RequestSendCode, Email: "a@b.co"})
	if out.Kind != domain.OutcomeSuccess || len(gw.sendCalls) != 1 || gw.sendCalls[0] != "a@b.co" {
		t.Errorf("send: out = %+v, calls = %v", out, gw.sendCalls)
	}
	out = Execute(context.Background(), gw, domain.Request{Kind: domain.RequestResetPassword, Email: "a@b.co"})
	if out.Kind != domain.OutcomeServerError || len(gw.resetCalls) != 1 {
		t.Errorf("reset: out = %+v, calls = %v", out, gw.resetCalls)
	}
}

func TestExecute_PanicBecomesFault(t *testing.T) {
	gw := &fakeGateway{panicWith: "boom"}
	out := Execute(context.Background(), gw, domain.Request{Kind: domain.RequestSendCode})
	if out.Kind != domain.OutcomeUnexpectedFault || out.Err == nil {
		t.Errorf("out = %+v, want unexpected fault with error", out)
	}
}

func TestExecute_NilGateway(t *testing.T) {
	out := Execute(context.Background(), nil, domain.Request{})
	if out.Kind != domain.OutcomeUnexpectedFault {
		t.Errorf("out = %+v, want unexpected fault", out)
	}
}

func TestReturnToSignIn_FreshState(t *testing.T) {
	s := ReturnToSignIn()
	if s.Phase != domain.PhaseAwaitingEmail || s.Submitting || s.Fields[domain.FieldEmail] != "" {
		t.Errorf("state = %+v, want initial", s)
	}
}
