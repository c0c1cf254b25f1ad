package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// lightParams keeps hashing fast in tests that do not care about cost.
var lightParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

func TestHasher_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params Argon2Params
	}{
		{name: "default", params: DefaultArgon2Params},
		{name: "light", params: lightParams},
		{name: "long key", params: Argon2Params{Time: 2, Memory: 16 * 1024, Threads: 2, KeyLen: 48, SaltLen: 24}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash, err := NewHasher(tt.params).Hash("Refugio2024")
			if err != nil {
				t.Fatalf("Hash failed: %v", err)
			}

			parts := strings.Split(hash, "$")
			if len(parts) != 6 {
				t.Fatalf("expected 6 PHC parts, got %d in %s", len(parts), hash)
			}
			if parts[1] != "argon2id" || parts[2] != "v=19" {
				t.Errorf("unexpected algorithm/version %s/%s", parts[1], parts[2])
			}
			wantParams := fmt.Sprintf("m=%d,t=%d,p=%d", tt.params.Memory, tt.params.Time, tt.params.Threads)
			if parts[3] != wantParams {
				t.Errorf("expected %s, got %s", wantParams, parts[3])
			}

			salt, err := base64.RawStdEncoding.DecodeString(parts[4])
			if err != nil || len(salt) != tt.params.SaltLen {
				t.Errorf("expected %d byte salt, got %d (%v)", tt.params.SaltLen, len(salt), err)
			}
			key, err := base64.RawStdEncoding.DecodeString(parts[5])
			if err != nil || uint32(len(key)) != tt.params.KeyLen {
				t.Errorf("expected %d byte key, got %d (%v)", tt.params.KeyLen, len(key), err)
			}
		})
	}
}

func TestHasher_SaltsDiffer(t *testing.T) {
	t.Parallel()

	h := NewHasher(lightParams)

	hash1, err := h.Hash("MismaClave123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hash2, err := h.Hash("MismaClave123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if hash1 == hash2 {
		t.Fatal("same password should hash differently under fresh salts")
	}
	if strings.Split(hash1, "$")[4] == strings.Split(hash2, "$")[4] {
		t.Error("salts should differ")
	}
	if PasswordFingerprint(hash1) == PasswordFingerprint(hash2) {
		t.Error("re-hashing the same password should change the revocation fingerprint")
	}

	for _, hash := range []string{hash1, hash2} {
		if ok, err := h.Verify("MismaClave123", hash); err != nil || !ok {
			t.Errorf("expected %s to verify, got %v, %v", hash, ok, err)
		}
	}
}

func TestHasher_Verify(t *testing.T) {
	t.Parallel()

	h := NewHasher(lightParams)
	hash, err := h.Hash("Refugio2024")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "correct", password: "Refugio2024", want: true},
		{name: "last char", password: "Refugio2025", want: false},
		{name: "case", password: "refugio2024", want: false},
		{name: "empty", password: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			match, err := h.Verify(tt.password, hash)
			if err != nil {
				t.Fatalf("Verify should not fail for a well formed hash: %v", err)
			}
			if match != tt.want {
				t.Errorf("Verify(%q) = %v, want %v", tt.password, match, tt.want)
			}
		})
	}
}

func TestVerifyPassword_UsesEmbeddedParams(t *testing.T) {
	t.Parallel()

	hash, err := NewHasher(lightParams).Hash("Secreto123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// The default hasher verifies hashes made with other parameters.
	match, err := VerifyPassword("Secreto123", hash)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !match {
		t.Error("expected hash made with light params to verify")
	}

	def, err := HashPassword("Secreto123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.Contains(def, "$m=65536,t=3,p=4$") {
		t.Errorf("expected default params in %s", def)
	}
	if ok, _ := NewHasher(lightParams).Verify("Secreto123", def); !ok {
		t.Error("expected light hasher to verify a default hash")
	}
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong format", "not-a-hash", ErrInvalidHash},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$salt$hash", ErrInvalidHash},
		{"missing parts", "$argon2id$v=19$m=65536", ErrInvalidHash},
		{"bad params", "$argon2id$v=19$m=x,t=3,p=4$c2FsdA$aGFzaA", ErrInvalidHash},
		{"bad salt", "$argon2id$v=19$m=8192,t=1,p=1$***$aGFzaA", ErrInvalidHash},
		{"empty key", "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$", ErrInvalidHash},
		{"old version", "$argon2id$v=18$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJl", ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			match, err := VerifyPassword("password", tt.hash)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyPassword(%q) error = %v, want %v", tt.hash, err, tt.wantErr)
			}
			if match {
				t.Error("malformed hash must never match")
			}
		})
	}
}

func TestPasswordFingerprint(t *testing.T) {
	t.Parallel()

	// md5("hash") in hex.
	if got := PasswordFingerprint("hash"); got != "0800fc577294c34e0b28ad2839435945" {
		t.Errorf("PasswordFingerprint = %s", got)
	}
	if PasswordFingerprint("a") == PasswordFingerprint("b") {
		t.Error("different hashes should give different fingerprints")
	}
	if len(PasswordFingerprint("")) != 32 {
		t.Error("fingerprint should be 32 hex chars")
	}
}
