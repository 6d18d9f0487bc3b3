package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ucp_service/internal/auth"
	sl "ucp_service/internal/lib/logger"
	"ucp_service/internal/models"
	"ucp_service/internal/storage"
)

const hashCost = 12

var (
	ErrAlreadyVerified     = errors.New("your email is already verified")
	ErrWrongOldPassword    = errors.New("incorrect old password")
	ErrEmailExists         = errors.New("the email that you've entered is already exist")
	ErrInvalidCode         = errors.New("the link doesn't seem right. we couldn't help you to verify your email")
	ErrApplicationNotFound = errors.New("the id of user application you've selected does not exist")
)

type UserProvider interface {
	UserByID(ctx context.Context, id int64) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

type UserSaver interface {
	SetEmailVerified(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, passHash []byte) error
	UpdateEmail(ctx context.Context, userID int64, email string) error
	UpdateUserStatus(ctx context.Context, userID int64, status int) error
}

type ApplicationStore interface {
	SaveApplication(ctx context.Context, app models.UserApp) (int64, error)
	ApplicationByID(ctx context.Context, id int64) (models.UserApp, error)
	UpdateApplication(ctx context.Context, id, adminID int64, status int, updatedAt int64) error
}

type Users struct {
	log         *slog.Logger
	usrProvider UserProvider
	usrSaver    UserSaver
	codes       auth.SessionCodeStore
	apps        ApplicationStore
	codeTTL     time.Duration
}

func New(
	log *slog.Logger,
	userProvider UserProvider,
	userSaver UserSaver,
	codes auth.SessionCodeStore,
	apps ApplicationStore,
	codeTTL time.Duration,
) *Users {
	return &Users{
		log:         log,
		usrProvider: userProvider,
		usrSaver:    userSaver,
		codes:       codes,
		apps:        apps,
		codeTTL:     codeTTL,
	}
}

// RequestEmailVerification issues a one-time verification code and
// returns the account plus the code for mailing. Rejected when the email
// is already proven.
func (u *Users) RequestEmailVerification(ctx context.Context, userID int64) (models.User, string, error) {
	const op = "users.RequestEmailVerification"

	log := u.log.With(slog.String("op", op))

	user, err := u.usrProvider.UserByID(ctx, userID)
	if err != nil {
		log.Error("failed to get user", sl.Err(err))
		return models.User{}, "", err
	}

	if user.EmailVerified {
		return models.User{}, "", ErrAlreadyVerified
	}

	code := uuid.NewString()

	if err := u.codes.SaveSessionCode(ctx, userID, code, models.PurposeEmailVerification); err != nil {
		log.Error("failed to save session code", sl.Err(err))
		return models.User{}, "", err
	}

	log.Info("verification code issued", slog.Int64("uid", userID))

	return user, code, nil
}

// ConfirmEmailVerification marks the email verified and consumes every
// email_verification code for the account.
func (u *Users) ConfirmEmailVerification(ctx context.Context, userID int64, code string) error {
	const op = "users.ConfirmEmailVerification"

	log := u.log.With(slog.String("op", op))

	sc, err := u.codes.SessionCode(ctx, code, models.PurposeEmailVerification, u.codeTTL)
	if err != nil {
		if errors.Is(err, storage.ErrSessionCodeNotFound) {
			return ErrInvalidCode
		}

		log.Error("failed to look up code", sl.Err(err))
		return err
	}

	if sc.UserID != userID {
		return ErrInvalidCode
	}

	if err := u.usrSaver.SetEmailVerified(ctx, userID); err != nil {
		log.Error("failed to set verified flag", sl.Err(err))
		return err
	}

	if err := u.codes.DeleteSessionCodes(ctx, userID, models.PurposeEmailVerification); err != nil {
		log.Error("failed to consume codes", sl.Err(err))
		return err
	}

	log.Info("email verified", slog.Int64("uid", userID))

	return nil
}

// ChangePassword verifies the old secret before storing the new hash and
// returns the account for the notification mail.
func (u *Users) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (models.User, error) {
	const op = "users.ChangePassword"

	log := u.log.With(slog.String("op", op))

	user, err := u.usrProvider.UserByID(ctx, userID)
	if err != nil {
		log.Error("failed to get user", sl.Err(err))
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(oldPassword)); err != nil {
		return models.User{}, ErrWrongOldPassword
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), hashCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := u.usrSaver.UpdatePassword(ctx, userID, passHash); err != nil {
		log.Error("failed to update password", sl.Err(err))
		return models.User{}, err
	}

	log.Info("password changed", slog.Int64("uid", userID))

	return user, nil
}

// ChangeEmail swaps the address after a uniqueness check. The verified
// flag drops; the new address must be proven again. Returns the account
// with its previous address for the notification mail.
func (u *Users) ChangeEmail(ctx context.Context, userID int64, newEmail string) (models.User, error) {
	const op = "users.ChangeEmail"

	log := u.log.With(slog.String("op", op))

	if _, err := u.usrProvider.UserByEmail(ctx, newEmail); err == nil {
		return models.User{}, ErrEmailExists
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		log.Error("failed to check email", sl.Err(err))
		return models.User{}, err
	}

	user, err := u.usrProvider.UserByID(ctx, userID)
	if err != nil {
		log.Error("failed to get user", sl.Err(err))
		return models.User{}, err
	}

	if err := u.usrSaver.UpdateEmail(ctx, userID, newEmail); err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			return models.User{}, ErrEmailExists
		}

		log.Error("failed to update email", sl.Err(err))
		return models.User{}, err
	}

	log.Info("email changed", slog.Int64("uid", userID))

	return user, nil
}

// SubmitApplication stores the quiz result and moves the account into the
// pending state.
func (u *Users) SubmitApplication(ctx context.Context, userID, quizID int64, score int, answer string) error {
	const op = "users.SubmitApplication"

	log := u.log.With(slog.String("op", op))

	app := models.UserApp{
		UserID:    userID,
		QuizID:    quizID,
		Score:     score,
		Answer:    answer,
		Status:    models.AppStatusPending,
		CreatedAt: time.Now().Unix(),
	}

	if _, err := u.apps.SaveApplication(ctx, app); err != nil {
		log.Error("failed to save application", sl.Err(err))
		return err
	}

	if err := u.usrSaver.UpdateUserStatus(ctx, userID, models.AppStatusPending); err != nil {
		log.Error("failed to update user status", sl.Err(err))
		return err
	}

	log.Info("application submitted", slog.Int64("uid", userID))

	return nil
}

// ReviewApplication records the verdict on both the application row and
// the applicant's account, returning the applicant for the status mail.
func (u *Users) ReviewApplication(ctx context.Context, appID, adminID int64, status int) (models.User, error) {
	const op = "users.ReviewApplication"

	log := u.log.With(slog.String("op", op))

	app, err := u.apps.ApplicationByID(ctx, appID)
	if err != nil {
		if errors.Is(err, storage.ErrApplicationNotFound) {
			return models.User{}, ErrApplicationNotFound
		}

		log.Error("failed to get application", sl.Err(err))
		return models.User{}, err
	}

	if err := u.usrSaver.UpdateUserStatus(ctx, app.UserID, status); err != nil {
		log.Error("failed to update user status", sl.Err(err))
		return models.User{}, err
	}

	if err := u.apps.UpdateApplication(ctx, appID, adminID, status, time.Now().Unix()); err != nil {
		log.Error("failed to update application", sl.Err(err))
		return models.User{}, err
	}

	applicant, err := u.usrProvider.UserByID(ctx, app.UserID)
	if err != nil {
		log.Error("failed to get applicant", sl.Err(err))
		return models.User{}, err
	}

	log.Info("application reviewed",
		slog.Int64("app_id", appID),
		slog.Int("status", status),
	)

	return applicant, nil
}
