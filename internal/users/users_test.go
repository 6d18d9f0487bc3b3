package users

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ucp_service/internal/models"
	"ucp_service/internal/storage"
)

type fakeRepo struct {
	users  map[int64]models.User
	codes  []models.SessionCode
	apps   map[int64]models.UserApp
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:  map[int64]models.User{},
		apps:   map[int64]models.UserApp{},
		nextID: 1,
	}
}

func (r *fakeRepo) UserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (r *fakeRepo) UserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (r *fakeRepo) SetEmailVerified(_ context.Context, userID int64) error {
	u := r.users[userID]
	u.EmailVerified = true
	r.users[userID] = u

	return nil
}

func (r *fakeRepo) UpdatePassword(_ context.Context, userID int64, passHash []byte) error {
	u := r.users[userID]
	u.PassHash = passHash
	r.users[userID] = u

	return nil
}

func (r *fakeRepo) UpdateEmail(_ context.Context, userID int64, email string) error {
	u := r.users[userID]
	u.Email = email
	u.EmailVerified = false
	r.users[userID] = u

	return nil
}

func (r *fakeRepo) UpdateUserStatus(_ context.Context, userID int64, status int) error {
	u := r.users[userID]
	u.Status = status
	r.users[userID] = u

	return nil
}

func (r *fakeRepo) SaveSessionCode(_ context.Context, userID int64, code, purpose string) error {
	r.codes = append(r.codes, models.SessionCode{
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: time.Now(),
	})

	return nil
}

func (r *fakeRepo) SessionCode(_ context.Context, code, purpose string, maxAge time.Duration) (models.SessionCode, error) {
	for _, sc := range r.codes {
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

func (r *fakeRepo) DeleteSessionCodes(_ context.Context, userID int64, purpose string) error {
	kept := r.codes[:0]
	for _, sc := range r.codes {
		if sc.UserID != userID || sc.Purpose != purpose {
			kept = append(kept, sc)
		}
	}
	r.codes = kept

	return nil
}

func (r *fakeRepo) SaveApplication(_ context.Context, app models.UserApp) (int64, error) {
	app.ID = r.nextID
	r.nextID++
	r.apps[app.ID] = app

	return app.ID, nil
}

func (r *fakeRepo) ApplicationByID(_ context.Context, id int64) (models.UserApp, error) {
	app, ok := r.apps[id]
	if !ok {
		return models.UserApp{}, storage.ErrApplicationNotFound
	}

	return app, nil
}

func (r *fakeRepo) UpdateApplication(_ context.Context, id, adminID int64, status int, updatedAt int64) error {
	app := r.apps[id]
	app.AdminID = adminID
	app.Status = status
	app.UpdatedAt = updatedAt
	r.apps[id] = app

	return nil
}

func (r *fakeRepo) addUser(t *testing.T, user models.User) int64 {
	t.Helper()

	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user

	return user.ID
}

func newTestUsers(repo *fakeRepo) *Users {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(log, repo, repo, repo, repo, 0)
}

func TestEmailVerificationFlow(t *testing.T) {
	repo := newFakeRepo()
	id := repo.addUser(t, models.User{Name: "John_Doe", Email: "john@example.com"})
	other := repo.addUser(t, models.User{Name: "Jane_Doe", Email: "jane@example.com"})

	svc := newTestUsers(repo)
	ctx := context.Background()

	user, code, err := svc.RequestEmailVerification(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, code)
	assert.Equal(t, "john@example.com", user.Email)

	// Someone else's token cannot consume the code.
	assert.ErrorIs(t, svc.ConfirmEmailVerification(ctx, other, code), ErrInvalidCode)

	require.NoError(t, svc.ConfirmEmailVerification(ctx, id, code))
	assert.True(t, repo.users[id].EmailVerified)

	// Single use.
	assert.ErrorIs(t, svc.ConfirmEmailVerification(ctx, id, code), ErrInvalidCode)

	// Already verified accounts cannot request another code.
	_, _, err = svc.RequestEmailVerification(ctx, id)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)
	id := repo.addUser(t, models.User{Name: "John_Doe", Email: "john@example.com", PassHash: hash})

	svc := newTestUsers(repo)
	ctx := context.Background()

	_, err = svc.ChangePassword(ctx, id, "wrong", "new-password")
	assert.ErrorIs(t, err, ErrWrongOldPassword)

	user, err := svc.ChangePassword(ctx, id, "old-password", "new-password")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", user.Email)

	assert.NoError(t, bcrypt.CompareHashAndPassword(repo.users[id].PassHash, []byte("new-password")))
}

func TestChangeEmail(t *testing.T) {
	repo := newFakeRepo()
	id := repo.addUser(t, models.User{Name: "John_Doe", Email: "john@example.com", EmailVerified: true})
	repo.addUser(t, models.User{Name: "Jane_Doe", Email: "jane@example.com"})

	svc := newTestUsers(repo)
	ctx := context.Background()

	_, err := svc.ChangeEmail(ctx, id, "jane@example.com")
	assert.ErrorIs(t, err, ErrEmailExists)

	user, err := svc.ChangeEmail(ctx, id, "fresh@example.com")
	require.NoError(t, err)

	// The old address comes back for the notification mail.
	assert.Equal(t, "john@example.com", user.Email)

	assert.Equal(t, "fresh@example.com", repo.users[id].Email)
	assert.False(t, repo.users[id].EmailVerified)
}

func TestSubmitApplication(t *testing.T) {
	repo := newFakeRepo()
	id := repo.addUser(t, models.User{Name: "John_Doe", Email: "john@example.com"})

	svc := newTestUsers(repo)

	require.NoError(t, svc.SubmitApplication(context.Background(), id, 7, 85, "long form answer"))

	assert.Equal(t, models.AppStatusPending, repo.users[id].Status)
	require.Len(t, repo.apps, 1)
	for _, app := range repo.apps {
		assert.Equal(t, id, app.UserID)
		assert.Equal(t, int64(7), app.QuizID)
		assert.Equal(t, 85, app.Score)
		assert.Equal(t, models.AppStatusPending, app.Status)
	}
}

func TestReviewApplication(t *testing.T) {
	repo := newFakeRepo()
	applicantID := repo.addUser(t, models.User{Name: "John_Doe", Email: "john@example.com"})
	adminID := repo.addUser(t, models.User{Name: "Admin_One", Email: "admin@example.com", Admin: 3})

	svc := newTestUsers(repo)
	ctx := context.Background()

	require.NoError(t, svc.SubmitApplication(ctx, applicantID, 7, 85, "answer"))

	_, err := svc.ReviewApplication(ctx, 999, adminID, models.AppStatusApproved)
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	var appID int64
	for id := range repo.apps {
		appID = id
	}

	applicant, err := svc.ReviewApplication(ctx, appID, adminID, models.AppStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", applicant.Email)

	assert.Equal(t, models.AppStatusApproved, repo.users[applicantID].Status)
	assert.Equal(t, models.AppStatusApproved, repo.apps[appID].Status)
	assert.Equal(t, adminID, repo.apps[appID].AdminID)
}
