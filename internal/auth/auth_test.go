package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ucp_service/internal/lib/jwt"
	"ucp_service/internal/models"
	"ucp_service/internal/storage"
)

const testSecret = "test-secret"

type fakeUserRepo struct {
	users  map[int64]models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]models.User{}, nextID: 1}
}

func (r *fakeUserRepo) SaveUser(_ context.Context, user models.User) (int64, error) {
	for _, u := range r.users {
		if u.Name == user.Name {
			return 0, storage.ErrUserExists
		}
		if u.Email == user.Email {
			return 0, storage.ErrEmailExists
		}
	}

	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user

	return user.ID, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID int64, passHash []byte) error {
	u := r.users[userID]
	u.PassHash = passHash
	r.users[userID] = u

	return nil
}

func (r *fakeUserRepo) UpdateUCPLoginIP(_ context.Context, userID int64, ip string) error {
	u := r.users[userID]
	u.UCPLoginIP = ip
	r.users[userID] = u

	return nil
}

func (r *fakeUserRepo) UserByUsermail(_ context.Context, usermail string) (models.User, error) {
	for _, u := range r.users {
		if u.Name == usermail || u.Email == usermail {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (r *fakeUserRepo) UserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (r *fakeUserRepo) UserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

type fakeCodeStore struct {
	codes []models.SessionCode
}

func (s *fakeCodeStore) SaveSessionCode(_ context.Context, userID int64, code, purpose string) error {
	s.codes = append(s.codes, models.SessionCode{
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: time.Now(),
	})

	return nil
}

func (s *fakeCodeStore) SessionCode(_ context.Context, code, purpose string, maxAge time.Duration) (models.SessionCode, error) {
	for _, sc := range s.codes {
		if sc.Code != code || sc.Purpose != purpose {
			continue
		}
		if maxAge > 0 && time.Since(sc.CreatedAt) > maxAge {
			return models.SessionCode{}, storage.ErrSessionCodeNotFound
		}

		return sc, nil
	}

	return models.SessionCode{}, storage.ErrSessionCodeNotFound
}

func (s *fakeCodeStore) DeleteSessionCodes(_ context.Context, userID int64, purpose string) error {
	kept := s.codes[:0]
	for _, sc := range s.codes {
		if sc.UserID != userID || sc.Purpose != purpose {
			kept = append(kept, sc)
		}
	}
	s.codes = kept

	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuth(repo *fakeUserRepo, codes *fakeCodeStore, codeTTL time.Duration) *Auth {
	return New(discardLogger(), repo, repo, codes, testSecret, time.Hour, codeTTL)
}

func seedUser(t *testing.T, repo *fakeUserRepo, name, email, password string, admin int, verified bool) int64 {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	id, err := repo.SaveUser(context.Background(), models.User{
		Name:          name,
		Email:         email,
		PassHash:      hash,
		Admin:         admin,
		EmailVerified: verified,
	})
	require.NoError(t, err)

	return id
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	codes := &fakeCodeStore{}
	id := seedUser(t, repo, "John_Doe", "john@example.com", "password123", 0, true)

	svc := newTestAuth(repo, codes, 0)
	ctx := context.Background()

	t.Run("by name", func(t *testing.T) {
		token, err := svc.Login(ctx, "John_Doe", "password123", "1.2.3.4")
		require.NoError(t, err)

		claims, err := jwt.ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, id, claims.UserID)
	})

	t.Run("by email", func(t *testing.T) {
		_, err := svc.Login(ctx, "john@example.com", "password123", "1.2.3.4")
		require.NoError(t, err)
	})

	t.Run("records login ip", func(t *testing.T) {
		_, err := svc.Login(ctx, "John_Doe", "password123", "5.6.7.8")
		require.NoError(t, err)
		assert.Equal(t, "5.6.7.8", repo.users[id].UCPLoginIP)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "John_Doe", "nope", "1.2.3.4")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "password123", "1.2.3.4")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestLoginAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	codes := &fakeCodeStore{}
	seedUser(t, repo, "Player_One", "player@example.com", "password123", 0, true)
	seedUser(t, repo, "Admin_One", "admin@example.com", "password123", 3, true)

	svc := newTestAuth(repo, codes, 0)
	ctx := context.Background()

	_, err := svc.LoginAdmin(ctx, "Admin_One", "password123", "1.2.3.4")
	require.NoError(t, err)

	// The gate fires before the password check.
	_, err = svc.LoginAdmin(ctx, "Player_One", "wrong-password", "1.2.3.4")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = svc.LoginAdmin(ctx, "Player_One", "password123", "1.2.3.4")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	codes := &fakeCodeStore{}
	svc := newTestAuth(repo, codes, 0)
	ctx := context.Background()

	token, err := svc.Register(ctx, "New_Guy", "new@example.com", "secret99", "1.2.3.4")
	require.NoError(t, err)

	claims, err := jwt.ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.NotZero(t, claims.UserID)

	_, err = svc.Register(ctx, "New_Guy", "other@example.com", "secret99", "1.2.3.4")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = svc.Register(ctx, "Other_Guy", "new@example.com", "secret99", "1.2.3.4")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestPasswordHashesSalted(t *testing.T) {
	h1, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.NoError(t, bcrypt.CompareHashAndPassword(h1, []byte("password123")))
	assert.NoError(t, bcrypt.CompareHashAndPassword(h2, []byte("password123")))
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newFakeUserRepo()
	codes := &fakeCodeStore{}
	seedUser(t, repo, "John_Doe", "john@example.com", "old-password", 0, true)

	svc := newTestAuth(repo, codes, 0)
	ctx := context.Background()

	user, code, err := svc.RequestPasswordReset(ctx, "john@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, code)
	assert.Equal(t, "john@example.com", user.Email)

	// Probing does not consume.
	require.NoError(t, svc.CheckResetCode(ctx, code))
	require.NoError(t, svc.CheckResetCode(ctx, code))

	require.NoError(t, svc.ResetPassword(ctx, code, "new-password"))

	_, err = svc.Login(ctx, "John_Doe", "old-password", "1.2.3.4")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "John_Doe", "new-password", "1.2.3.4")
	require.NoError(t, err)

	// The code is gone once used.
	assert.ErrorIs(t, svc.ResetPassword(ctx, code, "another"), ErrInvalidCode)
	assert.ErrorIs(t, svc.CheckResetCode(ctx, code), ErrInvalidCode)
}

func TestResetConsumesAllCodesForUser(t *testing.T) {
	repo := newFakeUserRepo()
	codes := &fakeCodeStore{}
	seedUser(t, repo, "John_Doe", "john@example.com", "old-password", 0, true)

	svc := newTestAuth(repo, codes, 0)
	ctx := context.Background()

	_, first, err := svc.RequestPasswordReset(ctx, "john@example.com")
	require.NoError(t, err)
	_, second, err := svc.RequestPasswordReset(ctx, "john@example.com")
	require.NoError(t, err)

	// Both links work until one of them is used.
	require.NoError(t, svc.CheckResetCode(ctx, first))
	require.NoError(t, svc.CheckResetCode(ctx, second))

	require.NoError(t, svc.ResetPassword(ctx, first, "new-password"))

	assert.ErrorIs(t, svc.CheckResetCode(ctx, second), ErrInvalidCode)
}

func TestRequestPasswordResetGuards(t *testing.T) {
	repo := newFakeUserRepo()
	codes := &fakeCodeStore{}
	seedUser(t, repo, "John_Doe", "john@example.com", "password123", 0, false)

	svc := newTestAuth(repo, codes, 0)
	ctx := context.Background()

	_, _, err := svc.RequestPasswordReset(ctx, "unknown@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = svc.RequestPasswordReset(ctx, "john@example.com")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestCodePurposeIsolation(t *testing.T) {
	repo := newFakeUserRepo()
	codes := &fakeCodeStore{}
	id := seedUser(t, repo, "John_Doe", "john@example.com", "password123", 0, true)

	svc := newTestAuth(repo, codes, 0)
	ctx := context.Background()

	require.NoError(t, codes.SaveSessionCode(ctx, id, "some-code", models.PurposeEmailVerification))

	// A verification code never opens the reset flow.
	assert.ErrorIs(t, svc.CheckResetCode(ctx, "some-code"), ErrInvalidCode)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "some-code", "new-password"), ErrInvalidCode)
}

func TestCodeTTL(t *testing.T) {
	repo := newFakeUserRepo()
	codes := &fakeCodeStore{}
	seedUser(t, repo, "John_Doe", "john@example.com", "password123", 0, true)
	ctx := context.Background()

	t.Run("expires when configured", func(t *testing.T) {
		svc := newTestAuth(repo, codes, time.Millisecond)

		_, code, err := svc.RequestPasswordReset(ctx, "john@example.com")
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		assert.ErrorIs(t, svc.CheckResetCode(ctx, code), ErrInvalidCode)
	})

	t.Run("zero keeps codes until consumed", func(t *testing.T) {
		svc := newTestAuth(repo, codes, 0)

		_, code, err := svc.RequestPasswordReset(ctx, "john@example.com")
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		assert.NoError(t, svc.CheckResetCode(ctx, code))
	})
}
