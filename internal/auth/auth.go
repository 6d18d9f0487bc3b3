package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ucp_service/internal/lib/jwt"
	sl "ucp_service/internal/lib/logger"
	"ucp_service/internal/models"
	"ucp_service/internal/storage"
)

// bcrypt cost used for every stored secret.
const hashCost = 12

var (
	ErrUserNotFound       = errors.New("the username or email address that you've entered does not exist")
	ErrInvalidCredentials = errors.New("the password that you've entered is incorrect")
	ErrNotAuthorized      = errors.New("you're not authorized to access this page")
	ErrUserExists         = errors.New("the username that you've entered is already exist")
	ErrEmailExists        = errors.New("the email address that you've entered is already exist")
	ErrEmailNotVerified   = errors.New("that email is not verified yet")
	ErrInvalidCode        = errors.New("the page link is invalid or session has been expired")
)

type UserSaver interface {
	SaveUser(ctx context.Context, user models.User) (int64, error)
	UpdatePassword(ctx context.Context, userID int64, passHash []byte) error
	UpdateUCPLoginIP(ctx context.Context, userID int64, ip string) error
}

type UserProvider interface {
	UserByUsermail(ctx context.Context, usermail string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
}

// SessionCodeStore is the one-time code store. Codes live until consumed;
// consumption removes every code of the purpose for the user.
type SessionCodeStore interface {
	SaveSessionCode(ctx context.Context, userID int64, code, purpose string) error
	SessionCode(ctx context.Context, code, purpose string, maxAge time.Duration) (models.SessionCode, error)
	DeleteSessionCodes(ctx context.Context, userID int64, purpose string) error
}

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	codes       SessionCodeStore
	tokenSecret string
	tokenTTL    time.Duration
	codeTTL     time.Duration
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	codes SessionCodeStore,
	tokenSecret string,
	tokenTTL, codeTTL time.Duration,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		codes:       codes,
		tokenSecret: tokenSecret,
		tokenTTL:    tokenTTL,
		codeTTL:     codeTTL,
	}
}

// Login checks credentials against the stored hash and mints a session
// token embedding the role claims. usermail may be an account name or an
// email address.
func (a *Auth) Login(ctx context.Context, usermail, password, ip string) (string, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByUsermail(ctx, usermail)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found")
			return "", ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials")
		return "", ErrInvalidCredentials
	}

	if err := a.usrSaver.UpdateUCPLoginIP(ctx, user.ID, ip); err != nil {
		log.Error("failed to record login ip", sl.Err(err))
		return "", err
	}

	token, err := jwt.NewToken(user, a.tokenSecret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		return "", err
	}

	log.Info("user logged in", slog.Int64("uid", user.ID))

	return token, nil
}

// LoginAdmin is Login with an admin-level gate in front of the password
// check, for the admin panel entry point.
func (a *Auth) LoginAdmin(ctx context.Context, usermail, password, ip string) (string, error) {
	const op = "auth.LoginAdmin"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByUsermail(ctx, usermail)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return "", err
	}

	if user.Admin == 0 {
		log.Warn("admin login rejected", slog.Int64("uid", user.ID))
		return "", ErrNotAuthorized
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if err := a.usrSaver.UpdateUCPLoginIP(ctx, user.ID, ip); err != nil {
		log.Error("failed to record login ip", sl.Err(err))
		return "", err
	}

	token, err := jwt.NewToken(user, a.tokenSecret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		return "", err
	}

	log.Info("admin logged in", slog.Int64("uid", user.ID))

	return token, nil
}

// Register creates the account and immediately logs the user in.
func (a *Auth) Register(ctx context.Context, username, email, password, ip string) (string, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Name:         username,
		Email:        email,
		PassHash:     passHash,
		Status:       models.AppStatusUnset,
		RegisteredAt: time.Now().Unix(),
		RegisterIP:   ip,
	}

	id, err := a.usrSaver.SaveUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUserExists):
			log.Info("username taken")
			return "", ErrUserExists
		case errors.Is(err, storage.ErrEmailExists):
			log.Info("email taken")
			return "", ErrEmailExists
		}

		log.Error("failed to save user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user.ID = id

	token, err := jwt.NewToken(user, a.tokenSecret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		return "", err
	}

	log.Info("user registered", slog.Int64("uid", id))

	return token, nil
}

// RequestPasswordReset issues a fresh one-time code for a verified email
// address and returns it for mailing. Earlier unconsumed codes stay valid
// until the reset completes.
func (a *Auth) RequestPasswordReset(ctx context.Context, email string) (models.User, string, error) {
	const op = "auth.RequestPasswordReset"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, "", ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, "", err
	}

	if !user.EmailVerified {
		return models.User{}, "", ErrEmailNotVerified
	}

	code := uuid.NewString()

	if err := a.codes.SaveSessionCode(ctx, user.ID, code, models.PurposeForgotPassword); err != nil {
		log.Error("failed to save session code", sl.Err(err))
		return models.User{}, "", err
	}

	log.Info("reset code issued", slog.Int64("uid", user.ID))

	return user, code, nil
}

// CheckResetCode probes a reset link without consuming it.
func (a *Auth) CheckResetCode(ctx context.Context, code string) error {
	const op = "auth.CheckResetCode"

	_, err := a.codes.SessionCode(ctx, code, models.PurposeForgotPassword, a.codeTTL)
	if err != nil {
		if errors.Is(err, storage.ErrSessionCodeNotFound) {
			return ErrInvalidCode
		}

		a.log.With(slog.String("op", op)).Error("failed to look up code", sl.Err(err))
		return err
	}

	return nil
}

// ResetPassword applies a new password for the code's owner, then consumes
// every forgot_password code for that account so the link cannot replay.
// The two steps are not atomic; a crash in between leaves a stale code
// that still matches the already-changed password flow.
func (a *Auth) ResetPassword(ctx context.Context, code, newPassword string) error {
	const op = "auth.ResetPassword"

	log := a.log.With(slog.String("op", op))

	sc, err := a.codes.SessionCode(ctx, code, models.PurposeForgotPassword, a.codeTTL)
	if err != nil {
		if errors.Is(err, storage.ErrSessionCodeNotFound) {
			return ErrInvalidCode
		}

		log.Error("failed to look up code", sl.Err(err))
		return err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), hashCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.UpdatePassword(ctx, sc.UserID, passHash); err != nil {
		log.Error("failed to update password", sl.Err(err))
		return err
	}

	if err := a.codes.DeleteSessionCodes(ctx, sc.UserID, models.PurposeForgotPassword); err != nil {
		log.Error("failed to consume codes", sl.Err(err))
		return err
	}

	log.Info("password reset", slog.Int64("uid", sc.UserID))

	return nil
}
