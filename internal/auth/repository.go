// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ulearner/ulearner-backend/internal/core"
)

type Repository struct {
	db *core.Database
}

func NewRepository(db *core.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(
	ctx context.Context,
	token *RefreshToken,
) (*RefreshToken, error) {
	query := `
		INSERT INTO refresh_tokens (token, user_id, created_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.Querier(ctx).QueryRowxContext(
		ctx,
		query,
		token.Token,
		token.UserID,
		token.CreatedAt,
		token.ExpiresAt,
		token.Revoked,
	).Scan(&token.ID)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return nil, core.DuplicateError("refresh token")
		}
		return nil, fmt.Errorf("insert refresh token: %w", err)
	}

	return token, nil
}

func (r *Repository) FindByToken(
	ctx context.Context,
	value string,
) (*RefreshToken, error) {
	var token RefreshToken

	query := `
		SELECT id, token, user_id, created_at, expires_at, revoked, revoked_at
		FROM refresh_tokens
		WHERE token = $1`

	err := r.db.Querier(ctx).GetContext(ctx, &token, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NotFoundError("refresh token")
		}
		return nil, fmt.Errorf("select refresh token: %w", err)
	}

	return &token, nil
}

// Revoke marks the token revoked and stamps revoked_at. Already-revoked rows
// are left untouched so the original revocation time survives.
func (r *Repository) Revoke(ctx context.Context, id int64) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = NOW()
		WHERE id = $1 AND revoked = FALSE`

	if _, err := r.db.Querier(ctx).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

// DeleteExpired removes rows whose expiry has long passed. Used by the
// maintenance sweep, not by the request path.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < NOW() - INTERVAL '30 days'`

	res, err := r.db.Querier(ctx).ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return affected, nil
}
