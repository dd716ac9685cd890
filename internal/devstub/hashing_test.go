package devstub

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewHasher_ClampsCost(t *testing.T) {
	testCases := []struct {
		in, want int
	}{
		{0, bcrypt.DefaultCost},
		{-1, bcrypt.DefaultCost},
		{1, bcrypt.MinCost},
		{12, 12},
		{99, bcrypt.MaxCost},
	}
	for _, tc := range testCases {
		if got := NewHasher(tc.in).Cost; got != tc.want {
			t.Errorf("NewHasher(%d).Cost = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash([]byte("abc123"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "abc123" {
		t.Fatal("hash should not equal plaintext")
	}
	if err := h.Compare(hash, []byte("abc123")); err != nil {
		t.Errorf("Compare(correct): %v", err)
	}
	if err := h.Compare(hash, []byte("abc124")); !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		t.Errorf("Compare(wrong) = %v, want ErrMismatchedHashAndPassword", err)
	}
}
