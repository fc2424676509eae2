package security

import (
	"time"

	"leetgym/api/internal/model"
	"leetgym/api/pkg/util"
)

const (
	resetTokenSize = 32
	ResetTokenTTL  = time.Hour
)

// MakeResetToken creates a single use password reset token for email that
// stops being valid ResetTokenTTL after now
func MakeResetToken(email string, now time.Time) (*model.PasswordResetToken, error) {
	token, err := util.GenerateToken(resetTokenSize)
	if err != nil {
		return nil, err
	}

	return &model.PasswordResetToken{
		Email:     email,
		Token:     token,
		ExpiresAt: now.Add(ResetTokenTTL),
		CreatedAt: now,
	}, nil
}
