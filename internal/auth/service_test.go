// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/ulearner/ulearner-backend/internal/config"
	"github.com/ulearner/ulearner-backend/internal/core"
	"github.com/ulearner/ulearner-backend/internal/middleware"
)

type passTxr struct{}

func (passTxr) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	return fn(ctx)
}

type fakeUsers struct {
	byEmail    map[string]*UserInfo
	nextID     int64
	lastCreate CreateUserParams
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*UserInfo{}, nextID: 1}
}

func (f *fakeUsers) GetByEmail(
	_ context.Context,
	email string,
) (*UserInfo, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, core.NotFoundError("user")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) EmailExists(
	_ context.Context,
	email string,
) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUsers) Create(
	_ context.Context,
	params CreateUserParams,
) (*UserInfo, error) {
	f.lastCreate = params

	u := &UserInfo{
		ID:           f.nextID,
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Phone:        params.Phone,
		Status:       UserStatusActive,
		Roles:        params.RoleNames,
		PasswordHash: params.PasswordHash,
	}
	f.nextID++
	f.byEmail[params.Email] = u

	copied := *u
	return &copied, nil
}

func (f *fakeUsers) add(email, password, status string, roles ...string) *UserInfo {
	hash, err := core.HashPassword(password)
	if err != nil {
		panic(err)
	}

	u := &UserInfo{
		ID:           f.nextID,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		Status:       status,
		Roles:        roles,
		PasswordHash: hash,
	}
	f.nextID++
	f.byEmail[email] = u
	return u
}

type fakeTokens struct {
	byValue map[string]*RefreshToken
	nextID  int64
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byValue: map[string]*RefreshToken{}, nextID: 1}
}

func (f *fakeTokens) Store(
	_ context.Context,
	userID int64,
	issued *IssuedToken,
) (*RefreshToken, error) {
	token := &RefreshToken{
		ID:        f.nextID,
		Token:     issued.Value,
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: issued.ExpiresAt,
	}
	f.nextID++
	f.byValue[issued.Value] = token
	return token, nil
}

func (f *fakeTokens) GetActive(
	_ context.Context,
	value string,
) (*RefreshToken, error) {
	token, ok := f.byValue[value]
	if !ok {
		return nil, core.UnauthorizedError("refresh token not recognized")
	}
	if token.IsRevoked() {
		return nil, core.TokenRevokedError()
	}
	if token.IsExpired() {
		return nil, core.TokenExpiredError()
	}
	return token, nil
}

func (f *fakeTokens) Revoke(_ context.Context, token *RefreshToken) error {
	stored, ok := f.byValue[token.Token]
	if !ok {
		return nil
	}
	if !stored.Revoked {
		now := time.Now()
		stored.Revoked = true
		stored.RevokedAt = &now
	}
	token.Revoked = stored.Revoked
	return nil
}

func (f *fakeTokens) Rotate(
	ctx context.Context,
	old *RefreshToken,
	issued *IssuedToken,
) (*RefreshToken, error) {
	if err := f.Revoke(ctx, old); err != nil {
		return nil, err
	}
	return f.Store(ctx, old.UserID, issued)
}

func (f *fakeTokens) RevokeByValue(ctx context.Context, value string) {
	if token, ok := f.byValue[value]; ok {
		_ = f.Revoke(ctx, token) //nolint:errcheck // fake never fails
	}
}

func (f *fakeTokens) activeCount(userID int64) int {
	count := 0
	for _, token := range f.byValue {
		if token.UserID == userID && token.IsActive() {
			count++
		}
	}
	return count
}

type serviceFixture struct {
	service *Service
	issuer  *TokenIssuer
	users   *fakeUsers
	tokens  *fakeTokens
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	issuer := testIssuer(t)
	users := newFakeUsers()
	tokens := newFakeTokens()

	service := NewService(
		passTxr{},
		issuer,
		tokens,
		users,
		slog.New(slog.DiscardHandler),
	)

	return &serviceFixture{
		service: service,
		issuer:  issuer,
		users:   users,
		tokens:  tokens,
	}
}

func statusOf(err error) int {
	return core.StatusForError(err)
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	fx := newFixture(t)

	response, err := fx.service.Register(context.Background(), RegisterRequest{
		Email:     "new@example.com",
		Password:  "secret123",
		FirstName: "New",
		LastName:  "Student",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if response.TokenType != "Bearer" {
		t.Errorf("token type = %q, want Bearer", response.TokenType)
	}
	if response.AccessToken == "" || response.RefreshToken == "" {
		t.Fatal("missing token in response")
	}
	if response.User.Status != UserStatusActive {
		t.Errorf("user status = %q, want ACTIVE", response.User.Status)
	}

	if got := fx.tokens.activeCount(response.User.ID); got != 1 {
		t.Errorf("active refresh tokens = %d, want 1", got)
	}

	if err := fx.issuer.RequireRefreshToken(response.RefreshToken); err != nil {
		t.Errorf("response refresh token not a refresh token: %v", err)
	}
}

func TestRegisterDefaultsToStudentRole(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.Register(context.Background(), RegisterRequest{
		Email:     "new@example.com",
		Password:  "secret123",
		FirstName: "New",
		LastName:  "Student",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if len(fx.users.lastCreate.RoleNames) != 1 ||
		fx.users.lastCreate.RoleNames[0] != DefaultRoleName {
		t.Errorf(
			"role names = %v, want [%s]",
			fx.users.lastCreate.RoleNames,
			DefaultRoleName,
		)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	fx := newFixture(t)
	fx.users.add("taken@example.com", "secret123", UserStatusActive, "STUDENT")

	_, err := fx.service.Register(context.Background(), RegisterRequest{
		Email:     "taken@example.com",
		Password:  "secret123",
		FirstName: "New",
		LastName:  "Student",
	})
	if statusOf(err) != http.StatusConflict {
		t.Errorf("status = %d, want 409 (err %v)", statusOf(err), err)
	}
}

func TestLogin(t *testing.T) {
	fx := newFixture(t)
	u := fx.users.add(
		"student@example.com",
		"secret123",
		UserStatusActive,
		"STUDENT",
	)

	response, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "student@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if response.User.ID != u.ID {
		t.Errorf("user id = %d, want %d", response.User.ID, u.ID)
	}
	if got := fx.tokens.activeCount(u.ID); got != 1 {
		t.Errorf("active refresh tokens = %d, want 1", got)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	fx := newFixture(t)
	fx.users.add("student@example.com", "secret123", UserStatusActive)

	_, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "student@example.com",
		Password: "wrong-password",
	})
	if statusOf(err) != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 (err %v)", statusOf(err), err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	if statusOf(err) != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 (err %v)", statusOf(err), err)
	}
}

func TestLoginBlockedAccountForbidden(t *testing.T) {
	fx := newFixture(t)
	fx.users.add("blocked@example.com", "secret123", UserStatusBlocked)

	_, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "blocked@example.com",
		Password: "secret123",
	})
	if statusOf(err) != http.StatusForbidden {
		t.Errorf("status = %d, want 403 (err %v)", statusOf(err), err)
	}
}

func (fx *serviceFixture) issueStoredRefresh(
	t *testing.T,
	u *UserInfo,
) *RefreshToken {
	t.Helper()

	issued, err := fx.issuer.Issue(
		middleware.Principal{Email: u.Email, Roles: u.Roles},
		KindRefresh,
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	stored, err := fx.tokens.Store(context.Background(), u.ID, issued)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	return stored
}

func TestRefreshRotates(t *testing.T) {
	fx := newFixture(t)
	u := fx.users.add(
		"student@example.com",
		"secret123",
		UserStatusActive,
		"STUDENT",
	)
	stored := fx.issueStoredRefresh(t, u)

	response, err := fx.service.Refresh(context.Background(), RefreshRequest{
		RefreshToken: stored.Token,
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if !stored.IsRevoked() {
		t.Error("old refresh token not revoked after rotation")
	}
	if got := fx.tokens.activeCount(u.ID); got != 1 {
		t.Errorf("active refresh tokens = %d, want exactly 1", got)
	}
	if response.RefreshToken == stored.Token {
		t.Error("rotation returned the old refresh token")
	}

	// The retired token must not be redeemable again.
	_, err = fx.service.Refresh(context.Background(), RefreshRequest{
		RefreshToken: stored.Token,
	})
	if statusOf(err) != http.StatusUnauthorized {
		t.Errorf("replay status = %d, want 401 (err %v)", statusOf(err), err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	fx := newFixture(t)
	u := fx.users.add("student@example.com", "secret123", UserStatusActive)

	access, err := fx.issuer.Issue(
		middleware.Principal{Email: u.Email},
		KindAccess,
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = fx.service.Refresh(context.Background(), RefreshRequest{
		RefreshToken: access.Value,
	})
	if statusOf(err) != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 (err %v)", statusOf(err), err)
	}
}

func TestRefreshExpiredTokenRevokesStoredRow(t *testing.T) {
	fx := newFixture(t)
	u := fx.users.add("student@example.com", "secret123", UserStatusActive)

	expiredIssuer := expiredTestIssuer(t)
	issued, err := expiredIssuer.Issue(
		middleware.Principal{Email: u.Email},
		KindRefresh,
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	stored, err := fx.tokens.Store(context.Background(), u.ID, issued)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	_, err = fx.service.Refresh(context.Background(), RefreshRequest{
		RefreshToken: issued.Value,
	})
	if !errors.Is(err, core.ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
	if !stored.IsRevoked() {
		t.Error("expired token's stored row not defensively revoked")
	}
}

func TestRefreshBadSignatureRevokesStoredRow(t *testing.T) {
	fx := newFixture(t)
	u := fx.users.add("student@example.com", "secret123", UserStatusActive)

	foreignIssuer, err := NewTokenIssuer(config.JWTConfig{
		Secret:             "a-different-signing-secret",
		AccessTokenExpire:  time.Minute,
		RefreshTokenExpire: time.Hour,
		Issuer:             "ulearner-test",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	issued, err := foreignIssuer.Issue(
		middleware.Principal{Email: u.Email},
		KindRefresh,
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	stored, err := fx.tokens.Store(context.Background(), u.ID, issued)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	_, err = fx.service.Refresh(context.Background(), RefreshRequest{
		RefreshToken: issued.Value,
	})
	if statusOf(err) != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 (err %v)", statusOf(err), err)
	}
	if !stored.IsRevoked() {
		t.Error("unverifiable token's stored row not defensively revoked")
	}
}

func TestRefreshOwnershipMismatchRevokes(t *testing.T) {
	fx := newFixture(t)
	u := fx.users.add("student@example.com", "secret123", UserStatusActive)

	issued, err := fx.issuer.Issue(
		middleware.Principal{Email: u.Email},
		KindRefresh,
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Stored under a different account than the token's subject resolves to.
	stored, err := fx.tokens.Store(context.Background(), u.ID+100, issued)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	_, err = fx.service.Refresh(context.Background(), RefreshRequest{
		RefreshToken: issued.Value,
	})
	if statusOf(err) != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 (err %v)", statusOf(err), err)
	}
	if !stored.IsRevoked() {
		t.Error("mismatched token not defensively revoked")
	}
}

func TestRefreshBlockedAccountForbidden(t *testing.T) {
	fx := newFixture(t)
	u := fx.users.add("blocked@example.com", "secret123", UserStatusBlocked)
	stored := fx.issueStoredRefresh(t, u)

	_, err := fx.service.Refresh(context.Background(), RefreshRequest{
		RefreshToken: stored.Token,
	})
	if statusOf(err) != http.StatusForbidden {
		t.Errorf("status = %d, want 403 (err %v)", statusOf(err), err)
	}
}

func TestLogoutSecondCallUnauthorized(t *testing.T) {
	fx := newFixture(t)
	u := fx.users.add(
		"student@example.com",
		"secret123",
		UserStatusActive,
		"STUDENT",
	)
	stored := fx.issueStoredRefresh(t, u)

	principal := &middleware.Principal{Email: u.Email, Roles: u.Roles}
	req := RefreshRequest{RefreshToken: stored.Token}

	if err := fx.service.Logout(context.Background(), principal, req); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if !stored.IsRevoked() {
		t.Fatal("token not revoked after logout")
	}

	err := fx.service.Logout(context.Background(), principal, req)
	if statusOf(err) != http.StatusUnauthorized {
		t.Errorf("second logout status = %d, want 401 (err %v)", statusOf(err), err)
	}
}

func TestLogoutRejectsAccessToken(t *testing.T) {
	fx := newFixture(t)
	u := fx.users.add("student@example.com", "secret123", UserStatusActive)

	access, err := fx.issuer.Issue(
		middleware.Principal{Email: u.Email},
		KindAccess,
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	err = fx.service.Logout(
		context.Background(),
		&middleware.Principal{Email: u.Email},
		RefreshRequest{RefreshToken: access.Value},
	)
	if statusOf(err) != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 (err %v)", statusOf(err), err)
	}
}

func TestLogoutForeignTokenRevokesAndFails(t *testing.T) {
	fx := newFixture(t)
	owner := fx.users.add("owner@example.com", "secret123", UserStatusActive)
	other := fx.users.add("other@example.com", "secret123", UserStatusActive)
	stored := fx.issueStoredRefresh(t, owner)

	err := fx.service.Logout(
		context.Background(),
		&middleware.Principal{Email: other.Email},
		RefreshRequest{RefreshToken: stored.Token},
	)
	if statusOf(err) != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 (err %v)", statusOf(err), err)
	}
	if !stored.IsRevoked() {
		t.Error("foreign token not defensively revoked")
	}
}

func expiredTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()

	issuer, err := NewTokenIssuer(config.JWTConfig{
		Secret:             "unit-test-signing-secret",
		AccessTokenExpire:  -time.Minute,
		RefreshTokenExpire: -time.Minute,
		Issuer:             "ulearner-test",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	return issuer
}
