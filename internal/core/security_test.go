// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash format = %q, want argon2id encoding", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Error("correct password rejected")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password are identical")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("pw", "not-a-hash"); err == nil {
		t.Error("malformed hash accepted")
	}
	if _, err := VerifyPassword("pw", "$bcrypt$v=19$m=1,t=1,p=1$a$b"); err == nil {
		t.Error("foreign algorithm accepted")
	}
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	ok, err := VerifyPasswordTimingSafe("secret123", &hash)
	if err != nil || !ok {
		t.Errorf("valid = %v, err = %v, want true, nil", ok, err)
	}

	ok, err = VerifyPasswordTimingSafe("secret123", nil)
	if err != nil || ok {
		t.Errorf("nil hash: valid = %v, err = %v, want false, nil", ok, err)
	}

	empty := ""
	ok, err = VerifyPasswordTimingSafe("secret123", &empty)
	if err != nil || ok {
		t.Errorf("empty hash: valid = %v, err = %v, want false, nil", ok, err)
	}
}
