package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !ComparePassword(hash, "correct horse battery") {
		t.Fatal("expected password to match its hash")
	}
	if ComparePassword(hash, "wrong password") {
		t.Fatal("expected mismatch for wrong password")
	}
}

func TestHashPassword_UsesRequestedCost(t *testing.T) {
	hash, err := HashPassword("password123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != bcrypt.MinCost {
		t.Fatalf("expected cost %d, got %d", bcrypt.MinCost, cost)
	}
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword("password123", 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cost, _ := bcrypt.Cost([]byte(hash))
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost %d, got %d", bcrypt.DefaultCost, cost)
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73), bcrypt.MinCost)
	if !IsPasswordTooLong(err) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestComparePassword_MalformedHash(t *testing.T) {
	if ComparePassword("not-a-bcrypt-hash", "anything") {
		t.Fatal("malformed hash must never match")
	}
}
