package auth

import (
	"strings"
	"testing"
)

// bcrypt's minimum cost keeps these tests fast; production uses
// defaultCost.
func newTestPasswordService() *PasswordService {
	return newPasswordServiceWithCost(4)
}

func TestHashAndVerify(t *testing.T) {
	svc := newTestPasswordService()

	hash, err := svc.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if !svc.Verify(hash, "correct horse battery staple") {
		t.Error("Verify() rejected the correct password")
	}
	if svc.Verify(hash, "wrong password") {
		t.Error("Verify() accepted a wrong password")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	svc := newTestPasswordService()

	if _, err := svc.Hash(""); err == nil {
		t.Error("Hash() should reject an empty password")
	}
}

func TestHash_TooLong(t *testing.T) {
	svc := newTestPasswordService()

	// bcrypt silently truncates past 72 bytes, so longer inputs are
	// rejected outright.
	if _, err := svc.Hash(strings.Repeat("a", 73)); err == nil {
		t.Error("Hash() should reject passwords over 72 bytes")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	svc := newTestPasswordService()

	first, err := svc.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := svc.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical; salt missing")
	}
}
