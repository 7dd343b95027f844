package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fbes-dev/enrollment-api/internal/models"
	appErrors "github.com/fbes-dev/enrollment-api/pkg/errors"
)

type mockAuthUsers struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	created *models.User
}

func newMockAuthUsers(users ...*models.User) *mockAuthUsers {
	m := &mockAuthUsers{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
	for _, u := range users {
		m.byEmail[u.Email] = u
		m.byID[u.ID] = u
	}
	return m
}

func (m *mockAuthUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUsers) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "new-user"
	}
	m.created = user
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockAuthUsers) RecordLoginFailure(ctx context.Context, id string, attempts int, lockoutUntil *time.Time) error {
	u := m.byID[id]
	u.FailedLoginAttempts = attempts
	u.LockoutUntil = lockoutUntil
	return nil
}

func (m *mockAuthUsers) ResetLoginState(ctx context.Context, id string, ts time.Time) error {
	u := m.byID[id]
	u.FailedLoginAttempts = 0
	u.LockoutUntil = nil
	u.LastLogin = &ts
	return nil
}

func (m *mockAuthUsers) UpdatePassword(ctx context.Context, id, passwordHash string, history models.HashList, ts time.Time) error {
	u := m.byID[id]
	u.PasswordHash = passwordHash
	u.PasswordHistory = history
	u.LastPasswordChange = &ts
	return nil
}

type mockTokens struct {
	byToken map[string]*models.RefreshToken
	revoked []string
	allFor  []string
}

func newMockTokens() *mockTokens {
	return &mockTokens{byToken: map[string]*models.RefreshToken{}}
}

func (m *mockTokens) Create(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = token.Token
	}
	m.byToken[token.Token] = token
	return nil
}

func (m *mockTokens) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.byToken[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTokens) Revoke(ctx context.Context, id string, ts time.Time) error {
	for _, t := range m.byToken {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &ts
		}
	}
	m.revoked = append(m.revoked, id)
	return nil
}

func (m *mockTokens) RevokeAllForUser(ctx context.Context, userID string, ts time.Time) error {
	for _, t := range m.byToken {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	m.allFor = append(m.allFor, userID)
	return nil
}

type mockCodes struct {
	code      string
	issued    []string
	validated []string
	consumed  bool
}

func (m *mockCodes) Issue(ctx context.Context, email string) (string, error) {
	m.issued = append(m.issued, email)
	if m.code == "" {
		m.code = "123456"
	}
	return m.code, nil
}

func (m *mockCodes) Validate(ctx context.Context, email, code string) (bool, error) {
	m.validated = append(m.validated, email)
	if m.consumed || code != m.code {
		return false, nil
	}
	m.consumed = true
	return true, nil
}

type mockAuthMailer struct {
	verifications []string
	resets        []string
}

func (m *mockAuthMailer) SendVerificationCode(email, code string)  { m.verifications = append(m.verifications, email) }
func (m *mockAuthMailer) SendPasswordResetCode(email, code string) { m.resets = append(m.resets, email) }

type mockLockoutMetrics struct {
	lockouts int
}

func (m *mockLockoutMetrics) AccountLockedOut() { m.lockouts++ }

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestAuthService(users *mockAuthUsers, tokens *mockTokens, codes *mockCodes, mailer *mockAuthMailer, metrics *mockLockoutMetrics) *AuthService {
	return NewAuthService(users, tokens, codes, mailer, metrics, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	})
}

func TestRegisterSendsVerificationCode(t *testing.T) {
	users := newMockAuthUsers()
	codes := &mockCodes{code: "654321"}
	mailer := &mockAuthMailer{}
	svc := newTestAuthService(users, newMockTokens(), codes, mailer, &mockLockoutMetrics{})

	err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "ana@example.com",
		FullName: "Ana Cruz",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, codes.issued)
	assert.Equal(t, []string{"ana@example.com"}, mailer.verifications)
}

func TestRegisterRejectsExistingEmail(t *testing.T) {
	existing := &models.User{ID: "u1", Email: "ana@example.com"}
	svc := newTestAuthService(newMockAuthUsers(existing), newMockTokens(), &mockCodes{}, &mockAuthMailer{}, &mockLockoutMetrics{})

	err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "ana@example.com",
		FullName: "Ana Cruz",
		Password: "sup3rsecret",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestVerifyEmailCreatesStudentAccount(t *testing.T) {
	users := newMockAuthUsers()
	codes := &mockCodes{code: "111222"}
	svc := newTestAuthService(users, newMockTokens(), codes, &mockAuthMailer{}, &mockLockoutMetrics{})

	info, err := svc.VerifyEmail(context.Background(), models.VerifyEmailRequest{
		Email:    "ana@example.com",
		Code:     "111222",
		FullName: "Ana Cruz",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, info.Role)

	require.NotNil(t, users.created)
	assert.True(t, users.created.EmailVerified)
	assert.True(t, users.created.Active)
	assert.Len(t, users.created.PasswordHistory, 1)
}

func TestVerifyEmailRejectsWrongCode(t *testing.T) {
	codes := &mockCodes{code: "111222"}
	svc := newTestAuthService(newMockAuthUsers(), newMockTokens(), codes, &mockAuthMailer{}, &mockLockoutMetrics{})

	_, err := svc.VerifyEmail(context.Background(), models.VerifyEmailRequest{
		Email:    "ana@example.com",
		Code:     "999999",
		FullName: "Ana Cruz",
		Password: "sup3rsecret",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCode.Code, appErr.Code)
}

func TestLoginSuccess(t *testing.T) {
	user := &models.User{
		ID:            "u1",
		Email:         "ana@example.com",
		PasswordHash:  hashPassword(t, "sup3rsecret"),
		Role:          models.RoleStudent,
		EmailVerified: true,
		Active:        true,
	}
	tokens := newMockTokens()
	svc := newTestAuthService(newMockAuthUsers(user), tokens, &mockCodes{}, &mockAuthMailer{}, &mockLockoutMetrics{})

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "sup3rsecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Contains(t, tokens.byToken, res.RefreshToken)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginFailureDisclosesRemainingAttempts(t *testing.T) {
	user := &models.User{
		ID:            "u1",
		Email:         "ana@example.com",
		PasswordHash:  hashPassword(t, "sup3rsecret"),
		EmailVerified: true,
		Active:        true,
	}
	svc := newTestAuthService(newMockAuthUsers(user), newMockTokens(), &mockCodes{}, &mockAuthMailer{}, &mockLockoutMetrics{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 attempt(s) remaining")
	assert.Equal(t, 1, user.FailedLoginAttempts)
}

func TestLoginLockoutAfterThreeFailures(t *testing.T) {
	user := &models.User{
		ID:            "u1",
		Email:         "ana@example.com",
		PasswordHash:  hashPassword(t, "sup3rsecret"),
		EmailVerified: true,
		Active:        true,
	}
	metrics := &mockLockoutMetrics{}
	svc := newTestAuthService(newMockAuthUsers(user), newMockTokens(), &mockCodes{}, &mockAuthMailer{}, metrics)

	for i := 0; i < 3; i++ {
		_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "wrong"})
		require.Error(t, err)
	}

	require.NotNil(t, user.LockoutUntil)
	assert.Equal(t, 0, user.FailedLoginAttempts)
	assert.Equal(t, 1, metrics.lockouts)

	// The correct password is refused while the lockout holds.
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "sup3rsecret"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrAccountLocked.Code, appErr.Code)
	assert.Contains(t, err.Error(), "try again in")
}

func TestLoginRefusesUnverifiedEmail(t *testing.T) {
	user := &models.User{
		ID:           "u1",
		Email:        "ana@example.com",
		PasswordHash: hashPassword(t, "sup3rsecret"),
		Active:       true,
	}
	svc := newTestAuthService(newMockAuthUsers(user), newMockTokens(), &mockCodes{}, &mockAuthMailer{}, &mockLockoutMetrics{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "sup3rsecret"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrEmailUnverified.Code, appErr.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	user := &models.User{
		ID:            "u1",
		Email:         "ana@example.com",
		PasswordHash:  hashPassword(t, "sup3rsecret"),
		EmailVerified: true,
		Active:        true,
	}
	tokens := newMockTokens()
	svc := newTestAuthService(newMockAuthUsers(user), tokens, &mockCodes{}, &mockAuthMailer{}, &mockLockoutMetrics{})

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "sup3rsecret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, tokens.byToken[login.RefreshToken].Revoked)

	// The rotated-out token cannot be replayed.
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc := newTestAuthService(newMockAuthUsers(), newMockTokens(), &mockCodes{}, &mockAuthMailer{}, &mockLockoutMetrics{})
	assert.NoError(t, svc.Logout(context.Background(), "never-issued"))
}

func TestForgotPasswordUniformMessage(t *testing.T) {
	user := &models.User{ID: "u1", Email: "ana@example.com"}
	codes := &mockCodes{}
	mailer := &mockAuthMailer{}
	svc := newTestAuthService(newMockAuthUsers(user), newMockTokens(), codes, mailer, &mockLockoutMetrics{})

	known, err := svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	unknown, err := svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err)

	assert.Equal(t, known, unknown)
	assert.Equal(t, []string{"ana@example.com"}, codes.issued)
	assert.Equal(t, []string{"ana@example.com"}, mailer.resets)
}

func TestChangePasswordRejectsReuse(t *testing.T) {
	currentHash := hashPassword(t, "currentpass")
	oldHash := hashPassword(t, "formerpass")
	user := &models.User{
		ID:              "u1",
		Email:           "ana@example.com",
		PasswordHash:    currentHash,
		PasswordHistory: models.HashList{currentHash, oldHash},
		EmailVerified:   true,
		Active:          true,
	}
	svc := newTestAuthService(newMockAuthUsers(user), newMockTokens(), &mockCodes{}, &mockAuthMailer{}, &mockLockoutMetrics{})

	t.Run("same as current", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
			OldPassword: "currentpass",
			NewPassword: "currentpass",
		})
		require.Error(t, err)
		var appErr *appErrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, appErrors.ErrPasswordReused.Code, appErr.Code)
	})

	t.Run("in recent history", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
			OldPassword: "currentpass",
			NewPassword: "formerpass",
		})
		require.Error(t, err)
		var appErr *appErrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, appErrors.ErrPasswordReused.Code, appErr.Code)
	})
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	user := &models.User{
		ID:              "u1",
		Email:           "ana@example.com",
		PasswordHash:    hashPassword(t, "currentpass"),
		PasswordHistory: models.HashList{},
		EmailVerified:   true,
		Active:          true,
	}
	tokens := newMockTokens()
	svc := newTestAuthService(newMockAuthUsers(user), tokens, &mockCodes{}, &mockAuthMailer{}, &mockLockoutMetrics{})

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "currentpass",
		NewPassword: "brandnewpass",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, tokens.allFor)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("brandnewpass")))
	assert.NotEmpty(t, user.PasswordHistory)
}

func TestResetPasswordRequiresValidCode(t *testing.T) {
	user := &models.User{
		ID:           "u1",
		Email:        "ana@example.com",
		PasswordHash: hashPassword(t, "currentpass"),
	}
	codes := &mockCodes{code: "222333"}
	svc := newTestAuthService(newMockAuthUsers(user), newMockTokens(), codes, &mockAuthMailer{}, &mockLockoutMetrics{})

	err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Email:       "ana@example.com",
		Code:        "000000",
		NewPassword: "brandnewpass",
	})
	require.Error(t, err)

	err = svc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Email:       "ana@example.com",
		Code:        "222333",
		NewPassword: "brandnewpass",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("brandnewpass")))
}
