// AngelaMos | 2026
// store.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ulearner/ulearner-backend/internal/core"
)

// TokenStore owns the persisted refresh-token lifecycle: store, redeem,
// rotate, revoke. It never inspects token signatures; that is the issuer's
// job.
type TokenStore struct {
	repo   *Repository
	logger *slog.Logger
}

func NewTokenStore(repo *Repository, logger *slog.Logger) *TokenStore {
	return &TokenStore{repo: repo, logger: logger}
}

// Store persists a freshly issued refresh token for the user.
func (s *TokenStore) Store(
	ctx context.Context,
	userID int64,
	issued *IssuedToken,
) (*RefreshToken, error) {
	token := &RefreshToken{
		Token:     issued.Value,
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: issued.ExpiresAt,
		Revoked:   false,
	}

	return s.repo.Create(ctx, token)
}

// GetActive loads a refresh token and rejects it with a distinct reason when
// it is unknown, revoked or expired. Every failure maps to 401 at the edge,
// but logs keep the reasons apart.
func (s *TokenStore) GetActive(
	ctx context.Context,
	value string,
) (*RefreshToken, error) {
	token, err := s.repo.FindByToken(ctx, value)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.UnauthorizedError("refresh token not recognized")
		}
		return nil, err
	}

	if token.IsRevoked() {
		return nil, fmt.Errorf(
			"refresh token revoked: %w",
			core.TokenRevokedError(),
		)
	}

	if token.IsExpired() {
		return nil, fmt.Errorf(
			"refresh token expired: %w",
			core.TokenExpiredError(),
		)
	}

	return token, nil
}

// Revoke retires a token. Revoking an already-revoked token is a no-op so
// logout stays idempotent.
func (s *TokenStore) Revoke(ctx context.Context, token *RefreshToken) error {
	if token.IsRevoked() {
		return nil
	}

	if err := s.repo.Revoke(ctx, token.ID); err != nil {
		return err
	}

	now := time.Now()
	token.Revoked = true
	token.RevokedAt = &now

	return nil
}

// Rotate retires the old token and persists its replacement.
func (s *TokenStore) Rotate(
	ctx context.Context,
	old *RefreshToken,
	issued *IssuedToken,
) (*RefreshToken, error) {
	if err := s.Revoke(ctx, old); err != nil {
		return nil, err
	}

	return s.Store(ctx, old.UserID, issued)
}

// RevokeByValue revokes the stored row matching the raw token value, if any.
// Best-effort: unknown values are ignored.
func (s *TokenStore) RevokeByValue(ctx context.Context, value string) {
	token, err := s.repo.FindByToken(ctx, value)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.Warn("refresh token lookup failed during revoke",
				"error", err,
			)
		}
		return
	}

	if err := s.Revoke(ctx, token); err != nil {
		s.logger.Warn("refresh token revoke failed",
			"token_id", token.ID,
			"error", err,
		)
	}
}

// PurgeExpired deletes long-expired rows. Returns the number removed.
func (s *TokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}
