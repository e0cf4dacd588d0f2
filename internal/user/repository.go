// AngelaMos | 2026
// repository.go

package user

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

func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, phone, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.Querier(ctx).QueryRowxContext(
		ctx,
		query,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Phone,
		u.Status,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return nil, core.DuplicateError("email")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

func (r *Repository) AssignRoles(
	ctx context.Context,
	userID int64,
	roleIDs []int64,
) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	for _, roleID := range roleIDs {
		_, err := r.db.Querier(ctx).ExecContext(ctx, query, userID, roleID)
		if err != nil {
			return fmt.Errorf("assign role %d: %w", roleID, err)
		}
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User

	query := `
		SELECT id, email, password_hash, first_name, last_name, phone, status,
		       created_at, updated_at
		FROM users
		WHERE id = $1`

	if err := r.db.Querier(ctx).GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NotFoundError("user")
		}
		return nil, fmt.Errorf("select user by id: %w", err)
	}

	return &u, nil
}

func (r *Repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	var u User

	query := `
		SELECT id, email, password_hash, first_name, last_name, phone, status,
		       created_at, updated_at
		FROM users
		WHERE email = $1`

	if err := r.db.Querier(ctx).GetContext(ctx, &u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NotFoundError("user")
		}
		return nil, fmt.Errorf("select user by email: %w", err)
	}

	return &u, nil
}

func (r *Repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	err := r.db.Querier(ctx).GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *Repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	if err := r.db.Querier(ctx).GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return exists, nil
}

func (r *Repository) RolesForUser(
	ctx context.Context,
	userID int64,
) ([]Role, error) {
	roles := []Role{}

	query := `
		SELECT r.id, r.name, r.description
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name`

	err := r.db.Querier(ctx).SelectContext(ctx, &roles, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select roles for user: %w", err)
	}

	return roles, nil
}

func (r *Repository) FindRoleByName(
	ctx context.Context,
	name string,
) (*Role, error) {
	var role Role

	query := `SELECT id, name, description FROM roles WHERE name = $1`

	if err := r.db.Querier(ctx).GetContext(ctx, &role, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NotFoundError("role")
		}
		return nil, fmt.Errorf("select role by name: %w", err)
	}

	return &role, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64

	query := `SELECT COUNT(*) FROM users`

	if err := r.db.Querier(ctx).GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}
