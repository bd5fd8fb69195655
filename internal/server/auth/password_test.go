package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_VerifiesAndSalts(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword([]byte("secret1"), 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword([]byte("secret1"), 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("two hashes of the same password are identical; salt missing")
	}
	if strings.Contains(h1, "secret1") {
		t.Fatalf("digest leaks the plaintext")
	}

	if !CheckPassword([]byte("secret1"), h1) {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword([]byte("secret2"), h1) {
		t.Fatalf("wrong password accepted")
	}
}

func TestHashPassword_DefaultCost(t *testing.T) {
	t.Parallel()

	h, err := HashPassword([]byte("pw"), 0)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(h, "$2a$10$") {
		t.Fatalf("expected default cost 10 digest, got %q", h)
	}
}

func TestCheckPassword_MalformedDigest(t *testing.T) {
	t.Parallel()

	if CheckPassword([]byte("pw"), "not-a-bcrypt-digest") {
		t.Fatalf("malformed digest accepted")
	}
}
