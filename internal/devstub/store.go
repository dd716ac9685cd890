package devstub

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CodeStore holds the outstanding verification code per account email.
type CodeStore interface {
	// Put replaces any code for email with code, valid until expiresAt. Only the hash is used for verification.
	Put(ctx context.Context, email, code string, expiresAt time.Time)
	// Verify reports whether code matches the unexpired code for email.
	Verify(ctx context.Context, email, code string) bool
	// Redeem verifies code and, on a match, removes it in the same step so it cannot be used twice.
	Redeem(ctx context.Context, email, code string) bool
	// Latest returns the plain code for email if present and not expired. Dev retrieval only.
	Latest(ctx context.Context, email string) (code string, ok bool)
}

type codeEntry struct {
	hash      string
	plain     string
	expiresAt time.Time
}

// MemoryCodeStore is an in-memory CodeStore keyed by lowercased email.
type MemoryCodeStore struct {
	mu   sync.RWMutex
	m    map[string]codeEntry
	nowF func() time.Time
}

// NewMemoryCodeStore returns an empty in-memory code store.
func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{
		m:    make(map[string]codeEntry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Put stores code for email until expiresAt.
func (s *MemoryCodeStore) Put(ctx context.Context, email, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[normalizeEmail(email)] = codeEntry{hash: HashCode(code), plain: code, expiresAt: expiresAt}
}

// Verify reports whether code matches the stored, unexpired code for email.
func (s *MemoryCodeStore) Verify(ctx context.Context, email, code string) bool {
	e, ok := s.get(email)
	if !ok {
		return false
	}
	return CodeEqual(code, e.hash)
}

// Redeem reports whether code matches the unexpired code for email and deletes it when it does.
// A mismatch leaves the code in place.
func (s *MemoryCodeStore) Redeem(ctx context.Context, email, code string) bool {
	key := normalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[key]
	if !ok {
		return false
	}
	if !e.expiresAt.After(s.nowF()) {
		delete(s.m, key)
		return false
	}
	if !CodeEqual(code, e.hash) {
		return false
	}
	delete(s.m, key)
	return true
}

// Latest returns the plain code for email if present and not expired.
func (s *MemoryCodeStore) Latest(ctx context.Context, email string) (string, bool) {
	e, ok := s.get(email)
	if !ok {
		return "", false
	}
	return e.plain, true
}

func (s *MemoryCodeStore) get(email string) (codeEntry, bool) {
	key := normalizeEmail(email)
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return codeEntry{}, false
	}
	if !e.expiresAt.After(s.nowF()) {
		s.mu.Lock()
		// A Put may have replaced the entry since the read lock was released.
		if cur, ok := s.m[key]; ok && cur == e {
			delete(s.m, key)
		}
		s.mu.Unlock()
		return codeEntry{}, false
	}
	return e, true
}

// AccountStore holds the known accounts and their bcrypt password hashes.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]string
}

// NewAccountStore returns a store seeded with emails, each with no password set.
func NewAccountStore(emails []string) *AccountStore {
	s := &AccountStore{accounts: make(map[string]string, len(emails))}
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			s.accounts[e] = ""
		}
	}
	return s
}

// Exists reports whether email is a known account.
func (s *AccountStore) Exists(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[normalizeEmail(email)]
	return ok
}

// SetPasswordHash replaces the password hash of a known account. Returns false for unknown accounts.
func (s *AccountStore) SetPasswordHash(email, hash string) bool {
	key := normalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[key]; !ok {
		return false
	}
	s.accounts[key] = hash
	return true
}

// PasswordHash returns the stored hash for email; empty when unknown or never set.
func (s *AccountStore) PasswordHash(email string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[normalizeEmail(email)]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
