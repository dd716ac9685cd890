package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength is the minimum new-password length in characters.
const MinPasswordLength = 6

// Validation messages. Empty and malformed values use distinct messages.
const (
	MsgEmailRequired           = "Email is required"
	MsgEmailInvalid            = "Enter a valid email address"
	MsgVerifyCodeRequired      = "Verification code is required"
	MsgNewPasswordRequired     = "New password is required"
	MsgNewPasswordTooShort     = "Password must be at least 6 characters"
	MsgConfirmPasswordRequired = "Please confirm your new password"
	MsgPasswordsDoNotMatch     = "Passwords do not match"
)

// Validate checks the fields active in phase and returns an error message for every field that fails
// its rule. The result is empty when all pass. Fields of the inactive phase are ignored.
func Validate(phase Phase, fields Fields) FieldErrors {
	errs := FieldErrors{}
	switch phase {
	case PhaseAwaitingEmail:
		email := fields[FieldEmail]
		switch {
		case strings.TrimSpace(email) == "":
			errs[FieldEmail] = MsgEmailRequired
		case !ValidEmail(email):
			errs[FieldEmail] = MsgEmailInvalid
		}
	case PhaseAwaitingCodeAndPassword:
		if strings.TrimSpace(fields[FieldVerifyCode]) == "" {
			errs[FieldVerifyCode] = MsgVerifyCodeRequired
		}
		password := fields[FieldNewPassword]
		switch {
		case password == "":
			errs[FieldNewPassword] = MsgNewPasswordRequired
		case utf8.RuneCountInString(password) < MinPasswordLength:
			errs[FieldNewPassword] = MsgNewPasswordTooShort
		}
		confirm := fields[FieldConfirmNewPassword]
		switch {
		case confirm == "":
			errs[FieldConfirmNewPassword] = MsgConfirmPasswordRequired
		case confirm != password:
			errs[FieldConfirmNewPassword] = MsgPasswordsDoNotMatch
		}
	}
	return errs
}

// ValidEmail reports whether s has the shape local@domain.tld: no whitespace, a single '@',
// a non-empty local part and a dotted domain with no empty labels.
func ValidEmail(s string) bool {
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return false
		}
	}
	return true
}
