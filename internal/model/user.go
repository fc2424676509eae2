// Package model defines database models
package model

import "time"

type User struct {
	ID                string       `gorm:"primaryKey" json:"id"`
	Email             string       `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash      string       `gorm:"not null" json:"-"`
	APIKey            *string      `json:"-"` // Personal key for the chat provider, never returned unmasked
	PreferredLanguage *string      `json:"preferredLanguage,omitempty"`
	QuickPrompts      QuickPrompts `gorm:"type:text" json:"quickPrompts"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`

	Logs []PracticeLog `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
