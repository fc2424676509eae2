package auth

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"leetgym/api/internal"
	"leetgym/api/internal/model"
	"leetgym/api/pkg/security"
	"leetgym/api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const fallbackPublicURL = "http://localhost:3000"

type forgotBody struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

// ForgotPassword issues a reset token and returns the link to redeem it. The
// link is handed back to the caller, delivering it is someone else's job
func ForgotPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	data, ok := validators.Bind[forgotBody](c)
	if !ok {
		return
	}

	var found bool
	err := d.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ?", data.Email).
		Find(&found).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "No account found with this email",
			"requestID": requestID,
		})
		return
	}

	token, err := security.MakeResetToken(data.Email, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate reset token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.DB.Create(token).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store reset token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	link := strings.TrimRight(publicURL(c, d), "/") + "/reset-password?token=" + url.QueryEscape(token.Token)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Reset link generated. Use it within 1 hour.",
		"resetLink": link,
	})
}

func publicURL(c *gin.Context, d *internal.Deps) string {
	if d.PublicURL != "" {
		return d.PublicURL
	}

	proto := c.GetHeader("X-Forwarded-Proto")
	host := c.Request.Host
	if proto != "" && host != "" {
		return proto + "://" + host
	}

	return fallbackPublicURL
}
