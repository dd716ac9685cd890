// Package domain holds the account-recovery form state, its validation rules, and the
// request/outcome values exchanged with the recovery endpoints.
package domain

// Phase is one step of the two-step recovery sequence.
type Phase int

const (
	// PhaseAwaitingEmail collects the account email and requests a verification code.
	PhaseAwaitingEmail Phase = iota
	// PhaseAwaitingCodeAndPassword collects the emailed code and the new password.
	PhaseAwaitingCodeAndPassword
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingEmail:
		return "awaiting_email"
	case PhaseAwaitingCodeAndPassword:
		return "awaiting_code_and_password"
	default:
		return "unknown"
	}
}

// Field names a form input.
type Field string

const (
	FieldEmail              Field = "email"
	FieldVerifyCode         Field = "verifyCode"
	FieldNewPassword        Field = "newPassword"
	FieldConfirmNewPassword Field = "confirmNewPassword"
)

// Known reports whether f is one of the recognised form fields.
func (f Field) Known() bool {
	switch f {
	case FieldEmail, FieldVerifyCode, FieldNewPassword, FieldConfirmNewPassword:
		return true
	}
	return false
}

// Secret reports whether the field holds a password and must be masked.
func (f Field) Secret() bool {
	return f == FieldNewPassword || f == FieldConfirmNewPassword
}

// AllFields returns every recognised field in display order.
func AllFields() []Field {
	return []Field{FieldEmail, FieldVerifyCode, FieldNewPassword, FieldConfirmNewPassword}
}

// PhaseFields returns the fields validated and shown in phase p, in display order.
func PhaseFields(p Phase) []Field {
	switch p {
	case PhaseAwaitingCodeAndPassword:
		return []Field{FieldVerifyCode, FieldNewPassword, FieldConfirmNewPassword}
	default:
		return []Field{FieldEmail}
	}
}

// Fields maps a field to its current value.
type Fields map[Field]string

// FieldErrors maps a field to a human-readable validation message. A missing key means the field is valid.
type FieldErrors map[Field]string

// NoticeKind distinguishes informational notices from error notices.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeInfo
	NoticeError
)

// Notice is the single outcome message surfaced after a submission completes.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// IsZero reports whether no notice is set.
func (n Notice) IsZero() bool {
	return n.Kind == NoticeNone && n.Message == ""
}

// State is the session-scoped recovery form state. It is never persisted.
type State struct {
	Phase       Phase
	Fields      Fields
	FieldErrors FieldErrors
	// Submitting is true for the whole lifetime of exactly one in-flight request.
	Submitting bool
	Notice     Notice
	// CodeEmail is the address the last verification code was requested for.
	// Reset requests are sent for it, whatever the email field holds later.
	CodeEmail string
}

// NewState returns the initial state: phase AwaitingEmail with every field empty.
func NewState() State {
	return State{
		Phase:       PhaseAwaitingEmail,
		Fields:      Fields{FieldEmail: "", FieldVerifyCode: "", FieldNewPassword: "", FieldConfirmNewPassword: ""},
		FieldErrors: FieldErrors{},
	}
}

// Clone returns a deep copy of s so transitions never share maps with their input.
func (s State) Clone() State {
	out := s
	out.Fields = make(Fields, len(s.Fields))
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	out.FieldErrors = make(FieldErrors, len(s.FieldErrors))
	for k, v := range s.FieldErrors {
		out.FieldErrors[k] = v
	}
	return out
}

// Value returns the current value of f, or "" if unset.
func (s State) Value(f Field) string {
	return s.Fields[f]
}
