package service

import (
	"errors"
	"fmt"

	"leetgym/api/internal/model"
	"leetgym/api/pkg/util"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type MigrationResult struct {
	NewUserID string
	MovedLogs int64
}

// MoveLogsToNewAccount creates a fresh account for toEmail and hands it every
// practice log owned by fromEmail. Everything happens in one transaction
func MoveLogsToNewAccount(db *gorm.DB, fromEmail, toEmail, passwordHash string) (*MigrationResult, error) {
	var res MigrationResult

	err := db.Transaction(func(tx *gorm.DB) error {
		var from model.User
		if err := tx.Where("email = ?", fromEmail).First(&from).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w, %s", ErrUserNotFound, fromEmail)
			}
			return err
		}

		var exists bool
		if err := tx.Model(model.User{}).
			Select("count(*) > 0").
			Where("email = ?", toEmail).
			Find(&exists).
			Error; err != nil {
			return err
		}

		if exists {
			return fmt.Errorf("%w, %s", ErrUserExists, toEmail)
		}

		id, err := util.NewID()
		if err != nil {
			return err
		}

		if err := tx.Create(&model.User{
			ID:           id,
			Email:        toEmail,
			PasswordHash: passwordHash,
		}).Error; err != nil {
			return err
		}

		r := tx.Model(model.PracticeLog{}).
			Where("user_id = ?", from.ID).
			Update("user_id", id)
		if r.Error != nil {
			return r.Error
		}

		res.NewUserID = id
		res.MovedLogs = r.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}
