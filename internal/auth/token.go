// AngelaMos | 2026
// token.go

package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/ulearner/ulearner-backend/internal/config"
	"github.com/ulearner/ulearner-backend/internal/core"
	"github.com/ulearner/ulearner-backend/internal/middleware"
)

// TokenKind discriminates access from refresh tokens. Both kinds share one
// signing key; the embedded claim is what prevents an access token from
// being replayed as a refresh token.
type TokenKind string

const (
	KindAccess  TokenKind = "ACCESS"
	KindRefresh TokenKind = "REFRESH"
)

const kindClaim = "type"

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer creates and validates signed, time-limited tokens. Signing is
// HS256 with a symmetric key derived from configuration.
type TokenIssuer struct {
	key    jwk.Key
	config config.JWTConfig
}

func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	secret := cfg.SecretOrDefault()

	keyBytes, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		keyBytes = []byte(secret)
	}

	key, err := jwk.Import(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("import signing key: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &TokenIssuer{key: key, config: cfg}, nil
}

// UsesDefaultSecret reports whether the issuer runs on the built-in
// development secret.
func (m *TokenIssuer) UsesDefaultSecret() bool {
	return m.config.Secret == ""
}

// Issue signs a token of the given kind for the principal. Claims carry the
// subject email, the role-name set, the kind discriminator and a unique id.
func (m *TokenIssuer) Issue(
	principal middleware.Principal,
	kind TokenKind,
) (*IssuedToken, error) {
	now := time.Now()

	expire := m.config.AccessTokenExpire
	if kind == KindRefresh {
		expire = m.config.RefreshTokenExpire
	}
	expiresAt := now.Add(expire)

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.config.Issuer).
		Subject(principal.Email).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim("roles", principal.Roles).
		Claim(kindClaim, string(kind)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &IssuedToken{Value: string(signed), ExpiresAt: expiresAt}, nil
}

// parse validates signature and expiry. Failures collapse to the token
// sentinels so callers can treat every malformed input uniformly.
func (m *TokenIssuer) parse(tokenString string) (jwt.Token, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("parse token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("parse token: %w", core.ErrTokenInvalid)
	}

	return token, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

// Verify checks signature, structure and expiry.
func (m *TokenIssuer) Verify(tokenString string) error {
	_, err := m.parse(tokenString)
	return err
}

func (m *TokenIssuer) ExtractSubject(tokenString string) (string, error) {
	token, err := m.parse(tokenString)
	if err != nil {
		return "", err
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return "", fmt.Errorf("missing subject: %w", core.ErrTokenInvalid)
	}

	return subject, nil
}

func (m *TokenIssuer) ExtractExpiry(tokenString string) (time.Time, error) {
	token, err := m.parse(tokenString)
	if err != nil {
		return time.Time{}, err
	}

	expiry, ok := token.Expiration()
	if !ok {
		return time.Time{}, fmt.Errorf(
			"missing expiry: %w",
			core.ErrTokenInvalid,
		)
	}

	return expiry, nil
}

func (m *TokenIssuer) ExtractKind(tokenString string) (TokenKind, error) {
	token, err := m.parse(tokenString)
	if err != nil {
		return "", err
	}

	return tokenKind(token)
}

func tokenKind(token jwt.Token) (TokenKind, error) {
	var kind string
	if err := token.Get(kindClaim, &kind); err != nil {
		return "", fmt.Errorf("missing kind claim: %w", core.ErrTokenInvalid)
	}

	switch TokenKind(strings.ToUpper(kind)) {
	case KindAccess:
		return KindAccess, nil
	case KindRefresh:
		return KindRefresh, nil
	default:
		return "", fmt.Errorf("unknown kind %q: %w", kind, core.ErrTokenInvalid)
	}
}

func tokenRoles(token jwt.Token) []string {
	var raw []any
	if err := token.Get("roles", &raw); err != nil {
		return nil
	}

	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

// IsAccessTokenValidFor reports whether the token is an unexpired ACCESS
// token whose subject matches the principal.
func (m *TokenIssuer) IsAccessTokenValidFor(
	tokenString string,
	principal middleware.Principal,
) bool {
	token, err := m.parse(tokenString)
	if err != nil {
		return false
	}

	kind, err := tokenKind(token)
	if err != nil || kind != KindAccess {
		return false
	}

	subject, ok := token.Subject()
	return ok && subject == principal.Email
}

// RequireRefreshToken fails unless the token is a valid, unexpired REFRESH
// token.
func (m *TokenIssuer) RequireRefreshToken(tokenString string) error {
	kind, err := m.ExtractKind(tokenString)
	if err != nil {
		return err
	}

	if kind != KindRefresh {
		return fmt.Errorf(
			"token is not a refresh token: %w",
			core.ErrTokenInvalid,
		)
	}

	return nil
}

// VerifyAccessToken satisfies middleware.TokenVerifier.
func (m *TokenIssuer) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (*middleware.Principal, error) {
	token, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}

	kind, err := tokenKind(token)
	if err != nil {
		return nil, err
	}
	if kind != KindAccess {
		return nil, fmt.Errorf(
			"token is not an access token: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("missing subject: %w", core.ErrTokenInvalid)
	}

	return &middleware.Principal{
		Email: subject,
		Roles: tokenRoles(token),
	}, nil
}
