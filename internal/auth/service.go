// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ulearner/ulearner-backend/internal/core"
	"github.com/ulearner/ulearner-backend/internal/middleware"
)

const (
	UserStatusActive  = "ACTIVE"
	UserStatusBlocked = "BLOCKED"

	// DefaultRoleName is assigned when a registration names no roles.
	DefaultRoleName = "STUDENT"
)

// UserInfo is the account view the auth flows work with. PasswordHash never
// serializes.
type UserInfo struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `json:"phone,omitempty"`
	Status    string   `json:"status"`
	Roles     []string `json:"roles"`

	PasswordHash string `json:"-"`
}

func (u *UserInfo) principal() middleware.Principal {
	return middleware.Principal{Email: u.Email, Roles: u.Roles}
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	RoleNames    []string
}

// UserProvider is the account surface auth needs from the user package.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, params CreateUserParams) (*UserInfo, error)
}

// RefreshTokenStore abstracts the persisted refresh-token lifecycle.
type RefreshTokenStore interface {
	Store(
		ctx context.Context,
		userID int64,
		issued *IssuedToken,
	) (*RefreshToken, error)
	GetActive(ctx context.Context, value string) (*RefreshToken, error)
	Revoke(ctx context.Context, token *RefreshToken) error
	Rotate(
		ctx context.Context,
		old *RefreshToken,
		issued *IssuedToken,
	) (*RefreshToken, error)
	RevokeByValue(ctx context.Context, value string)
}

// Service orchestrates registration, login and the refresh-token flows. It
// owns no persistence of its own; users and tokens live behind the injected
// providers.
type Service struct {
	txr    core.TxRunner
	issuer *TokenIssuer
	tokens RefreshTokenStore
	users  UserProvider
	logger *slog.Logger
}

func NewService(
	txr core.TxRunner,
	issuer *TokenIssuer,
	tokens RefreshTokenStore,
	users UserProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		txr:    txr,
		issuer: issuer,
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// Register creates the account and signs the first token pair. Account
// creation and refresh-token persistence share one unit of work.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	roleNames := req.RoleNames
	if len(roleNames) == 0 {
		roleNames = []string{DefaultRoleName}
	}

	var response *AuthResponse

	err = s.txr.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.users.EmailExists(ctx, req.Email)
		if err != nil {
			return err
		}
		if exists {
			return core.DuplicateError("email")
		}

		user, err := s.users.Create(ctx, CreateUserParams{
			Email:        req.Email,
			PasswordHash: hash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
			RoleNames:    roleNames,
		})
		if err != nil {
			return err
		}

		response, err = s.issueTokenPair(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		"user_id", response.User.ID,
		"email", response.User.Email,
	)

	return response, nil
}

// Login verifies credentials and signs a fresh pair. Unknown accounts and bad
// passwords are indistinguishable to the caller.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	var storedHash *string
	if user != nil {
		storedHash = &user.PasswordHash
	}

	valid, err := core.VerifyPasswordTimingSafe(req.Password, storedHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid || user == nil {
		return nil, core.UnauthorizedError("invalid email or password")
	}

	if user.Status != UserStatusActive {
		return nil, core.ForbiddenError("account is not active")
	}

	var response *AuthResponse
	err = s.txr.WithinTx(ctx, func(ctx context.Context) error {
		response, err = s.issueTokenPair(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return response, nil
}

// Refresh redeems a refresh token for a new pair. The presented token is
// validated in layers: signature and kind first, then stored state, then
// account state and ownership. Any signature-level rejection, and any
// ownership mismatch, defensively revokes the stored row.
func (s *Service) Refresh(
	ctx context.Context,
	req RefreshRequest,
) (*AuthResponse, error) {
	if err := s.issuer.RequireRefreshToken(req.RefreshToken); err != nil {
		s.tokens.RevokeByValue(ctx, req.RefreshToken)
		return nil, err
	}

	stored, err := s.tokens.GetActive(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}

	subject, err := s.issuer.ExtractSubject(req.RefreshToken)
	if err != nil {
		if revokeErr := s.tokens.Revoke(ctx, stored); revokeErr != nil {
			s.logger.Warn("defensive revoke failed",
				"token_id", stored.ID,
				"error", revokeErr,
			)
		}
		return nil, err
	}

	user, err := s.loadActiveUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	if stored.UserID != user.ID {
		// The stored row belongs to someone else; treat as theft.
		if revokeErr := s.tokens.Revoke(ctx, stored); revokeErr != nil {
			s.logger.Warn("defensive revoke failed",
				"token_id", stored.ID,
				"error", revokeErr,
			)
		}
		return nil, core.UnauthorizedError("refresh token not recognized")
	}

	var response *AuthResponse
	err = s.txr.WithinTx(ctx, func(ctx context.Context) error {
		pair, err := s.signPair(user)
		if err != nil {
			return err
		}

		if _, err := s.tokens.Rotate(ctx, stored, pair.refresh); err != nil {
			return err
		}

		response = s.buildResponse(user, pair)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tokens refreshed", "user_id", user.ID)

	return response, nil
}

// Logout retires the presented refresh token. A token that is unknown,
// already revoked or owned by someone else yields 401; repeating a logout is
// therefore not idempotent at the transport level even though revocation is
// in storage.
func (s *Service) Logout(
	ctx context.Context,
	principal *middleware.Principal,
	req RefreshRequest,
) error {
	if err := s.issuer.RequireRefreshToken(req.RefreshToken); err != nil {
		return err
	}

	stored, err := s.tokens.GetActive(ctx, req.RefreshToken)
	if err != nil {
		return err
	}

	user, err := s.loadActiveUser(ctx, principal.Email)
	if err != nil {
		return err
	}

	if stored.UserID != user.ID {
		if revokeErr := s.tokens.Revoke(ctx, stored); revokeErr != nil {
			s.logger.Warn("defensive revoke failed",
				"token_id", stored.ID,
				"error", revokeErr,
			)
		}
		return core.UnauthorizedError("refresh token not recognized")
	}

	if err := s.tokens.Revoke(ctx, stored); err != nil {
		return err
	}

	s.logger.Info("user logged out", "user_id", user.ID)

	return nil
}

// loadActiveUser resolves an account by email for a token flow. A missing
// account is an authentication failure, not a 404; a blocked one is 403.
func (s *Service) loadActiveUser(
	ctx context.Context,
	email string,
) (*UserInfo, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.UnauthorizedError("account no longer exists")
		}
		return nil, err
	}

	if user.Status != UserStatusActive {
		return nil, core.ForbiddenError("account is not active")
	}

	return user, nil
}

type tokenPair struct {
	access  *IssuedToken
	refresh *IssuedToken
}

func (s *Service) signPair(user *UserInfo) (*tokenPair, error) {
	principal := user.principal()

	access, err := s.issuer.Issue(principal, KindAccess)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.issuer.Issue(principal, KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &tokenPair{access: access, refresh: refresh}, nil
}

func (s *Service) issueTokenPair(
	ctx context.Context,
	user *UserInfo,
) (*AuthResponse, error) {
	pair, err := s.signPair(user)
	if err != nil {
		return nil, err
	}

	if _, err := s.tokens.Store(ctx, user.ID, pair.refresh); err != nil {
		return nil, err
	}

	return s.buildResponse(user, pair), nil
}

func (s *Service) buildResponse(
	user *UserInfo,
	pair *tokenPair,
) *AuthResponse {
	return &AuthResponse{
		TokenType:             "Bearer",
		AccessToken:           pair.access.Value,
		AccessTokenExpiresAt:  pair.access.ExpiresAt,
		RefreshToken:          pair.refresh.Value,
		RefreshTokenExpiresAt: pair.refresh.ExpiresAt,
		User:                  *user,
	}
}
