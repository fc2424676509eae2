package service

import (
	"fmt"
	"time"

	"leetgym/api/internal/model"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeleteExpiredResetTokens removes every reset token that expired before now
// and returns how many were dropped
func DeleteExpiredResetTokens(db *gorm.DB, now time.Time) (int64, error) {
	r := db.
		Where("expires_at < ?", now).
		Delete(&model.PasswordResetToken{})
	if r.Error != nil {
		return 0, r.Error
	}

	return r.RowsAffected, nil
}

// TokenCleanup periodically sweeps reset tokens nobody redeemed. Expired tokens
// are also removed when someone tries to use them, this catches the rest
func TokenCleanup(t time.Duration, db *gorm.DB) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)

	_, err := s.Every(t).Do(func() {
		n, err := DeleteExpiredResetTokens(db, time.Now())
		if err != nil {
			zap.L().Error("Failed to cleanup expired reset tokens", zap.Error(err))
			return
		}

		if n > 0 {
			zap.L().Debug("Cleaned up expired reset tokens", zap.Int64("count", n))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule token cleanup, %w", err)
	}

	s.StartAsync()
	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	return s, nil
}
