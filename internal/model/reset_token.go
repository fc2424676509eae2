package model

import "time"

type PasswordResetToken struct {
	ID        int       `gorm:"primaryKey;autoIncrement"`
	Email     string    `gorm:"index;not null"`
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

// Expired reports whether the token can no longer be redeemed at t
func (p *PasswordResetToken) Expired(t time.Time) bool {
	return t.After(p.ExpiresAt)
}
