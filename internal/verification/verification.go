// Package verification composes the mail-queue messages for every flow
// that emails the user: verification links, reset links and account
// change notices. The sender service renders the actual HTML.
package verification

import (
	"context"
	"fmt"

	"ucp_service/internal/models"
)

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

func SendVerificationLink(ctx context.Context, pub Publisher, baseURL, email, code string) error {
	msg := models.Message{
		Email:   email,
		Subject: "Email Verification ✅",
		Link:    fmt.Sprintf("%s/email/verification/%s", baseURL, code),
		Purpose: models.PurposeEmailVerification,
	}

	return pub.SendMessage(ctx, msg)
}

func SendResetLink(ctx context.Context, pub Publisher, baseURL, email, code string) error {
	msg := models.Message{
		Email:   email,
		Subject: "Forgot Password 🔒",
		Link:    fmt.Sprintf("%s/reset/password/%s", baseURL, code),
		Purpose: models.PurposeForgotPassword,
	}

	return pub.SendMessage(ctx, msg)
}

// SendPasswordChangedNotice carries the request origin so the recipient
// can spot a hijack.
func SendPasswordChangedNotice(ctx context.Context, pub Publisher, email, ip, userAgent string) error {
	msg := models.Message{
		Email:   email,
		Subject: "Changed Password 🔒",
		Purpose: "password_changed",
		Meta: map[string]string{
			"ip":         ip,
			"user_agent": userAgent,
		},
	}

	return pub.SendMessage(ctx, msg)
}

func SendEmailChangedNotice(ctx context.Context, pub Publisher, oldEmail, newEmail, ip, userAgent string) error {
	msg := models.Message{
		Email:   oldEmail,
		Subject: "Your email address changed ✉️",
		Purpose: "email_changed",
		Meta: map[string]string{
			"new_email":  newEmail,
			"ip":         ip,
			"user_agent": userAgent,
		},
	}

	return pub.SendMessage(ctx, msg)
}

func SendApplicationStatus(ctx context.Context, pub Publisher, email string, status int, reason string) error {
	msg := models.Message{
		Email:   email,
		Subject: "Your Application Status",
		Purpose: "application_status",
		Meta: map[string]string{
			"status": fmt.Sprintf("%d", status),
			"reason": reason,
		},
	}

	return pub.SendMessage(ctx, msg)
}
