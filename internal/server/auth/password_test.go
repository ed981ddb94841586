package auth

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "correct horse" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash: %q", hash)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatal("expected match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected mismatch")
	}
	if CheckPassword("not-a-hash", "correct horse") {
		t.Fatal("malformed hash must not match")
	}
}
