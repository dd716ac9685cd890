package domain

// RequestKind identifies which recovery endpoint a Request targets.
type RequestKind int

const (
	RequestSendCode RequestKind = iota
	RequestResetPassword
)

func (k RequestKind) String() string {
	if k == RequestResetPassword {
		return "reset_password"
	}
	return "send_code"
}

// Request is the single network effect produced by a successful submit.
type Request struct {
	Kind        RequestKind
	Email       string
	VerifyCode  string
	NewPassword string
}

// OutcomeKind classifies how a request resolved.
// The zero value is OutcomeUnexpectedFault so an unset outcome never reads as success.
type OutcomeKind int

const (
	OutcomeUnexpectedFault OutcomeKind = iota
	OutcomeSuccess
	OutcomeServerError
	OutcomeTransportError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeServerError:
		return "server_error"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "unexpected_fault"
	}
}

// Outcome is the typed result of one recovery request.
type Outcome struct {
	Kind OutcomeKind
	// Status is the HTTP status code when a response was received, else 0.
	Status int
	// Message is the server-supplied message for a ServerError, if any.
	Message string
	// Err is the underlying cause for transport errors and unexpected faults.
	Err error
}

// Success returns a success outcome for the given HTTP status.
func Success(status int) Outcome {
	return Outcome{Kind: OutcomeSuccess, Status: status}
}

// ServerError returns an outcome for a non-2xx response. message may be empty.
func ServerError(status int, message string) Outcome {
	return Outcome{Kind: OutcomeServerError, Status: status, Message: message}
}

// TransportError returns an outcome for a request that never obtained a response.
func TransportError(err error) Outcome {
	return Outcome{Kind: OutcomeTransportError, Err: err}
}

// UnexpectedFault returns an outcome for any failure outside the other categories.
func UnexpectedFault(err error) Outcome {
	return Outcome{Kind: OutcomeUnexpectedFault, Err: err}
}

// Notice messages surfaced after a request resolves.
const (
	MsgCodeSent          = "A verification code has been sent to your email"
	MsgPasswordReset     = "Your password has been reset. Please sign in."
	MsgSendCodeFailed    = "Could not send verification email. Please try again."
	MsgResetFailed       = "Could not reset password. Please try again."
	MsgServerUnreachable = "Unable to reach the server. Please try again."
	MsgUnexpectedFault   = "Something went wrong. Please try again."
)
