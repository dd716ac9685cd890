// Package devstub is a local, in-memory implementation of the two recovery endpoints for development.
// It is not the production email-delivery or password-storage system: codes are logged instead of mailed.
package devstub

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"content-portal/client/internal/recovery/domain"
)

const (
	devCodeNote = "DEV MODE ONLY"

	msgInvalidCode     = "invalid code"
	msgShortPassword   = "password must be at least 6 characters"
	msgLongPassword    = "password must be at most 72 bytes"
	msgInvalidEmail    = "invalid email"
	msgMalformedBody   = "malformed request body"
	msgInternal        = "internal error"
	maxRequestBodySize = 1 << 20

	// bcrypt rejects longer passwords.
	maxPasswordBytes = 72
)

// Options configures a Server.
type Options struct {
	// CodeTTL is how long an issued code stays valid; default 10m.
	CodeTTL time.Duration
	// ReturnCode enables GET /dev/recovery/code.
	ReturnCode bool
}

// Server serves the recovery endpoints from in-memory stores.
type Server struct {
	codes    CodeStore
	accounts *AccountStore
	hasher   *Hasher
	opts     Options
	nowF     func() time.Time
	genCode  func() (string, error)
}

// NewServer returns a stub server over the given stores.
func NewServer(codes CodeStore, accounts *AccountStore, hasher *Hasher, opts Options) *Server {
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 10 * time.Minute
	}
	return &Server{
		codes:    codes,
		accounts: accounts,
		hasher:   hasher,
		opts:     opts,
		nowF:     func() time.Time { return time.Now().UTC() },
		genCode:  GenerateCode,
	}
}

// Handler returns the routed, otelhttp-instrumented handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestLog(map[string]bool{"/health": true}))
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/api/Email/SendForgotPasswordEmail", s.sendForgotPasswordEmail).Methods(http.MethodPost)
	r.HandleFunc("/api/Email/ResetPassword", s.resetPassword).Methods(http.MethodPost)
	if s.opts.ReturnCode {
		r.HandleFunc("/dev/recovery/code", s.devCode).Methods(http.MethodGet)
	}
	return otelhttp.NewHandler(r, "devstub")
}

type sendForgotPasswordEmailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	VerifyCode  string `json:"verifyCode"`
	NewPassword string `json:"newPassword"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type devCodeResponse struct {
	Code string `json:"code"`
	Note string `json:"note"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

// sendForgotPasswordEmail issues a code for known accounts. Unknown accounts get the same 200 so the
// endpoint cannot be used to enumerate accounts.
func (s *Server) sendForgotPasswordEmail(w http.ResponseWriter, r *http.Request) {
	var req sendForgotPasswordEmailRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgMalformedBody)
		return
	}
	if !domain.ValidEmail(req.Email) {
		writeMessage(w, http.StatusBadRequest, msgInvalidEmail)
		return
	}
	if !s.accounts.Exists(req.Email) {
		log.Printf("devstub: send code for unknown account request_id=%s", requestID(r))
		w.WriteHeader(http.StatusOK)
		return
	}
	code, err := s.genCode()
	if err != nil {
		log.Printf("devstub: generate code: %v", err)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}
	s.codes.Put(r.Context(), req.Email, code, s.nowF().Add(s.opts.CodeTTL))
	log.Printf("devstub: verification code for %s is %s (%s) request_id=%s", req.Email, code, devCodeNote, requestID(r))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgMalformedBody)
		return
	}
	if !s.accounts.Exists(req.Email) || !s.codes.Verify(r.Context(), req.Email, req.VerifyCode) {
		log.Printf("devstub: reset rejected: invalid code request_id=%s", requestID(r))
		writeMessage(w, http.StatusBadRequest, msgInvalidCode)
		return
	}
	if utf8.RuneCountInString(req.NewPassword) < domain.MinPasswordLength {
		writeMessage(w, http.StatusBadRequest, msgShortPassword)
		return
	}
	if len(req.NewPassword) > maxPasswordBytes {
		writeMessage(w, http.StatusBadRequest, msgLongPassword)
		return
	}
	hash, err := s.hasher.Hash([]byte(req.NewPassword))
	if err != nil {
		log.Printf("devstub: hash password: %v", err)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if !s.codes.Redeem(r.Context(), req.Email, req.VerifyCode) {
		log.Printf("devstub: reset rejected: code already used request_id=%s", requestID(r))
		writeMessage(w, http.StatusBadRequest, msgInvalidCode)
		return
	}
	s.accounts.SetPasswordHash(req.Email, hash)
	log.Printf("devstub: password reset for %s request_id=%s", req.Email, requestID(r))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) devCode(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeMessage(w, http.StatusBadRequest, "email is required")
		return
	}
	code, ok := s.codes.Latest(r.Context(), email)
	if !ok {
		writeMessage(w, http.StatusNotFound, "code not found or expired")
		return
	}
	writeJSON(w, http.StatusOK, devCodeResponse{Code: code, Note: devCodeNote})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("devstub: trailing data after body")
	}
	return nil
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("devstub: encode response: %v", err)
	}
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return "-"
}
