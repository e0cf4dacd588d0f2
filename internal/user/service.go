// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ulearner/ulearner-backend/internal/auth"
	"github.com/ulearner/ulearner-backend/internal/core"
)

// store is the persistence surface the service uses; *Repository satisfies
// it.
type store interface {
	Create(ctx context.Context, u *User) (*User, error)
	AssignRoles(ctx context.Context, userID int64, roleIDs []int64) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	RolesForUser(ctx context.Context, userID int64) ([]Role, error)
	FindRoleByName(ctx context.Context, name string) (*Role, error)
}

// Service manages accounts and roles. It backs the auth flows through
// auth.UserProvider and answers the profile endpoints.
type Service struct {
	repo   store
	logger *slog.Logger
}

func NewService(repo store, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create builds an ACTIVE account with resolved roles. Satisfies
// auth.UserProvider.
func (s *Service) Create(
	ctx context.Context,
	params auth.CreateUserParams,
) (*auth.UserInfo, error) {
	roles, err := s.resolveRoles(ctx, params.RoleNames)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &User{
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Phone:        params.Phone,
		Status:       auth.UserStatusActive,
	})
	if err != nil {
		return nil, err
	}

	roleIDs := make([]int64, len(roles))
	for i, role := range roles {
		roleIDs[i] = role.ID
	}

	if err := s.repo.AssignRoles(ctx, created.ID, roleIDs); err != nil {
		return nil, err
	}

	return userInfo(created, roles), nil
}

// resolveRoles maps role names to stored roles. The first unknown name fails
// the whole request as a validation error.
func (s *Service) resolveRoles(
	ctx context.Context,
	names []string,
) ([]Role, error) {
	if len(names) == 0 {
		names = []string{auth.DefaultRoleName}
	}

	roles := make([]Role, 0, len(names))
	for _, name := range names {
		role, err := s.repo.FindRoleByName(ctx, name)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, core.FieldValidationError(
					"roleNames",
					fmt.Sprintf("unknown role %q", name),
				)
			}
			return nil, err
		}
		roles = append(roles, *role)
	}

	return roles, nil
}

// GetByEmail satisfies auth.UserProvider.
func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	roles, err := s.repo.RolesForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	return userInfo(u, roles), nil
}

// EmailExists satisfies auth.UserProvider.
func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

// ExistsByID reports whether an account exists. Course and enrollment flows
// use this for instructor and student checks.
func (s *Service) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return s.repo.ExistsByID(ctx, id)
}

// GetUser answers the profile endpoint.
func (s *Service) GetUser(ctx context.Context, id int64) (*Response, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	roles, err := s.repo.RolesForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	return newResponse(u, roles), nil
}

func userInfo(u *User, roles []Role) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		Status:       u.Status,
		Roles:        roleNames(roles),
		PasswordHash: u.PasswordHash,
	}
}

func roleNames(roles []Role) []string {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = role.Name
	}
	return names
}
