package auth

import (
	"errors"
	"net/http"
	"time"

	"leetgym/api/internal"
	"leetgym/api/internal/model"
	"leetgym/api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errTokenGone = errors.New("reset token already used")

type resetBody struct {
	Token       string `json:"token" binding:"required,max=128"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=255"`
}

// ResetPassword redeems a reset token. Tokens work once: the password update
// and the token deletion commit together
func ResetPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	data, ok := validators.Bind[resetBody](c)
	if !ok {
		return
	}

	var record model.PasswordResetToken

	err := d.DB.Where("token = ?", data.Token).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid or expired reset link",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to get reset token record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if record.Expired(time.Now()) {
		if err := d.DB.Delete(&record).Error; err != nil {
			zap.L().Error("Failed to delete expired reset token", zap.Error(err), zap.String("requestID", requestID))
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Reset link has expired. Request a new one.",
			"requestID": requestID,
		})
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		// Deleting first means a concurrent redemption of the same token finds nothing
		r := tx.Where("id = ?", record.ID).Delete(&model.PasswordResetToken{})
		if r.Error != nil {
			return r.Error
		}
		if r.RowsAffected == 0 {
			return errTokenGone
		}

		return tx.Model(&model.User{}).
			Where("email = ?", record.Email).
			Update("password_hash", hash).
			Error
	})
	if err != nil {
		if errors.Is(err, errTokenGone) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid or expired reset link",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update password and token in transaction", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated. You can sign in now.",
	})
}
