package secrets

import (
	"strings"
	"testing"
)

func TestHashSecret_Encoding(t *testing.T) {
	hash, err := HashSecret("correct-secret")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("hash = %q, want $argon2id$v=19$ prefix", hash)
	}
	if parts := strings.Split(hash, "$"); len(parts) != 6 {
		t.Errorf("hash has %d segments, want 6: %q", len(parts), hash)
	}
}

func TestHashSecret_SaltedPerCall(t *testing.T) {
	h1, err := HashSecret("same-secret")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}
	h2, err := HashSecret("same-secret")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same secret are identical; salt is not being applied")
	}
}

func TestVerifySecret(t *testing.T) {
	hash, err := HashSecret("correct-secret")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}

	tests := []struct {
		name    string
		secret  string
		encoded string
		want    bool
	}{
		{"correct secret", "correct-secret", hash, true},
		{"wrong secret", "wrong-secret", hash, false},
		{"empty secret", "", hash, false},
		{"empty hash", "correct-secret", "", false},
		{"garbage hash", "correct-secret", "not-a-hash", false},
		{"wrong algorithm", "correct-secret", "$argon2i$v=19$m=65536,t=1,p=4$AAAA$BBBB", false},
		{"truncated hash", "correct-secret", hash[:len(hash)-10], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySecret(tt.secret, tt.encoded); got != tt.want {
				t.Errorf("VerifySecret(%q, ...) = %v, want %v", tt.secret, got, tt.want)
			}
		})
	}
}
