package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"yatube/internal/pkg"
	"yatube/internal/repository/redis"
)

const resetCodeLength = 6

type EmailService struct {
	mailer pkg.Mailer
	rds    *redis.EmailRepository
}

func NewEmailService(mailer pkg.Mailer, rds *redis.EmailRepository) *EmailService {
	return &EmailService{mailer: mailer, rds: rds}
}

// SendResetCode mails a one-time password reset code. The code only becomes
// usable once the mail was handed to the relay.
func (s *EmailService) SendResetCode(ctx context.Context, email string) error {
	code, err := pkg.NumericCode(resetCodeLength)
	if err != nil {
		return err
	}
	if err = s.rds.ResetEmailCodePending(ctx, email, code); err != nil {
		return err
	}

	html := pkg.EmailCodeHTML("reset your password", code, s.rds.CodeTTL())
	if err = s.mailer.Send(email, "Password reset code", html); err != nil {
		_ = s.rds.DeleteCodePending(ctx, email)
		return err
	}

	if err = s.rds.MarkCodeConfirmed(ctx, email); err != nil {
		_ = s.rds.DeleteCodePending(ctx, email)
		return err
	}
	return nil
}

// VerifyCode checks the code and consumes it on success. Every miss is
// counted and the code is burned after redis.MaxCodeAttempts misses.
func (s *EmailService) VerifyCode(ctx context.Context, email, code string) (bool, error) {
	val, err := s.rds.GetResetConfirmed(ctx, email)
	if errors.Is(err, redis.ErrEmailNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if val != code {
		n, err := s.rds.RecordFailedAttempt(ctx, email)
		if err != nil {
			return false, err
		}
		if n >= redis.MaxCodeAttempts {
			log.Warn().Str("email", email).Int("attempts", n).Msg("Password reset code burned after repeated misses.")
		}
		return false, nil
	}
	if err = s.rds.DeleteResetConfirmed(ctx, email); err != nil {
		return false, err
	}
	return true, nil
}
