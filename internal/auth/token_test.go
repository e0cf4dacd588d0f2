// AngelaMos | 2026
// token_test.go

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ulearner/ulearner-backend/internal/config"
	"github.com/ulearner/ulearner-backend/internal/core"
	"github.com/ulearner/ulearner-backend/internal/middleware"
)

func testIssuer(t *testing.T) *TokenIssuer {
	t.Helper()

	issuer, err := NewTokenIssuer(config.JWTConfig{
		Secret:             "unit-test-signing-secret",
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: time.Hour,
		Issuer:             "ulearner-test",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	return issuer
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	issuer := testIssuer(t)
	principal := middleware.Principal{
		Email: "student@example.com",
		Roles: []string{"STUDENT", "INSTRUCTOR"},
	}

	issued, err := issuer.Issue(principal, KindAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if issued.Value == "" {
		t.Fatal("issued token value is empty")
	}
	if time.Until(issued.ExpiresAt) <= 0 {
		t.Fatal("issued token already expired")
	}

	got, err := issuer.VerifyAccessToken(context.Background(), issued.Value)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}

	if got.Email != principal.Email {
		t.Errorf("email = %q, want %q", got.Email, principal.Email)
	}
	if len(got.Roles) != 2 || !got.HasRole("STUDENT") ||
		!got.HasRole("INSTRUCTOR") {
		t.Errorf("roles = %v, want both STUDENT and INSTRUCTOR", got.Roles)
	}
}

func TestTokenKindSeparation(t *testing.T) {
	issuer := testIssuer(t)
	principal := middleware.Principal{Email: "student@example.com"}

	access, err := issuer.Issue(principal, KindAccess)
	if err != nil {
		t.Fatalf("Issue access: %v", err)
	}
	refresh, err := issuer.Issue(principal, KindRefresh)
	if err != nil {
		t.Fatalf("Issue refresh: %v", err)
	}

	if err := issuer.RequireRefreshToken(access.Value); err == nil {
		t.Error("access token accepted as refresh token")
	}
	if err := issuer.RequireRefreshToken(refresh.Value); err != nil {
		t.Errorf("refresh token rejected: %v", err)
	}

	if _, err := issuer.VerifyAccessToken(
		context.Background(),
		refresh.Value,
	); err == nil {
		t.Error("refresh token accepted as access token")
	}
}

func TestExtractors(t *testing.T) {
	issuer := testIssuer(t)
	principal := middleware.Principal{Email: "student@example.com"}

	issued, err := issuer.Issue(principal, KindRefresh)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	subject, err := issuer.ExtractSubject(issued.Value)
	if err != nil {
		t.Fatalf("ExtractSubject: %v", err)
	}
	if subject != principal.Email {
		t.Errorf("subject = %q, want %q", subject, principal.Email)
	}

	kind, err := issuer.ExtractKind(issued.Value)
	if err != nil {
		t.Fatalf("ExtractKind: %v", err)
	}
	if kind != KindRefresh {
		t.Errorf("kind = %q, want %q", kind, KindRefresh)
	}

	expiry, err := issuer.ExtractExpiry(issued.Value)
	if err != nil {
		t.Fatalf("ExtractExpiry: %v", err)
	}
	if d := expiry.Sub(issued.ExpiresAt); d > time.Second || d < -time.Second {
		t.Errorf("expiry = %v, want about %v", expiry, issued.ExpiresAt)
	}
}

func TestExpiredTokenMapsToExpiredSentinel(t *testing.T) {
	issuer, err := NewTokenIssuer(config.JWTConfig{
		Secret:             "unit-test-signing-secret",
		AccessTokenExpire:  -time.Minute,
		RefreshTokenExpire: -time.Minute,
		Issuer:             "ulearner-test",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	issued, err := issuer.Issue(
		middleware.Principal{Email: "student@example.com"},
		KindAccess,
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := issuer.Verify(issued.Value); !errors.Is(err, core.ErrTokenExpired) {
		t.Errorf("Verify error = %v, want ErrTokenExpired", err)
	}
}

func TestTamperedTokenIsInvalid(t *testing.T) {
	issuer := testIssuer(t)

	issued, err := issuer.Issue(
		middleware.Principal{Email: "student@example.com"},
		KindAccess,
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tampered := issued.Value + "x"
	if err := issuer.Verify(tampered); !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("Verify error = %v, want ErrTokenInvalid", err)
	}

	if err := issuer.Verify("not-a-token"); !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("Verify error = %v, want ErrTokenInvalid", err)
	}
}

func TestWrongKeyIsInvalid(t *testing.T) {
	issuer := testIssuer(t)

	other, err := NewTokenIssuer(config.JWTConfig{
		Secret:             "a-different-signing-secret",
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: time.Hour,
		Issuer:             "ulearner-test",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	issued, err := other.Issue(
		middleware.Principal{Email: "student@example.com"},
		KindAccess,
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := issuer.Verify(issued.Value); !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("Verify error = %v, want ErrTokenInvalid", err)
	}
}

func TestIsAccessTokenValidFor(t *testing.T) {
	issuer := testIssuer(t)
	principal := middleware.Principal{Email: "student@example.com"}

	access, err := issuer.Issue(principal, KindAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	refresh, err := issuer.Issue(principal, KindRefresh)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if !issuer.IsAccessTokenValidFor(access.Value, principal) {
		t.Error("valid access token rejected for its own principal")
	}
	if issuer.IsAccessTokenValidFor(refresh.Value, principal) {
		t.Error("refresh token accepted as access token")
	}
	if issuer.IsAccessTokenValidFor(
		access.Value,
		middleware.Principal{Email: "other@example.com"},
	) {
		t.Error("access token accepted for a different principal")
	}
}

func TestDefaultSecretFallback(t *testing.T) {
	issuer, err := NewTokenIssuer(config.JWTConfig{
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: time.Hour,
		Issuer:             "ulearner-test",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	if !issuer.UsesDefaultSecret() {
		t.Error("UsesDefaultSecret = false with empty secret")
	}

	issued, err := issuer.Issue(
		middleware.Principal{Email: "student@example.com"},
		KindAccess,
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := issuer.Verify(issued.Value); err != nil {
		t.Errorf("Verify: %v", err)
	}
}
