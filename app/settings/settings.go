// Package settings exposes the per-user preferences: language, personal API
// key and quick prompts
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"leetgym/api/internal"
	"leetgym/api/internal/model"
	"leetgym/api/pkg/util"
	"leetgym/api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultLanguage = "cpp"

type settingsResponse struct {
	PreferredLanguage string              `json:"preferredLanguage"`
	APIKey            *string             `json:"apiKey"`
	APIKeySet         bool                `json:"apiKeySet"`
	QuickPrompts      []model.QuickPrompt `json:"quickPrompts"`
}

// nullableString tells an absent field apart from an explicit null
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(b, []byte("null")) {
		n.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	n.Value = &s
	return nil
}

type updateBody struct {
	PreferredLanguage *string              `json:"preferredLanguage" binding:"omitempty,max=32"`
	APIKey            nullableString       `json:"apiKey"`
	QuickPrompts      *[]model.QuickPrompt `json:"quickPrompts" binding:"omitempty,max=20,dive"`
}

func Fetch(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	userID := c.GetString("userID")

	var user model.User
	err := d.DB.Select("id", "api_key", "preferred_language", "quick_prompts").
		Where("id = ?", userID).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to get user settings", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	resp := settingsResponse{
		PreferredLanguage: defaultLanguage,
		QuickPrompts:      []model.QuickPrompt{},
	}

	if user.PreferredLanguage != nil && *user.PreferredLanguage != "" {
		resp.PreferredLanguage = *user.PreferredLanguage
	}

	if user.APIKey != nil && *user.APIKey != "" {
		masked := util.MaskSecret(*user.APIKey)
		resp.APIKey = &masked
		resp.APIKeySet = true
	}

	if len(user.QuickPrompts) > 0 {
		resp.QuickPrompts = user.QuickPrompts
	}

	c.JSON(http.StatusOK, resp)
}

// Update applies only the fields present in the body. An empty or null apiKey
// removes the stored key
func Update(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	userID := c.GetString("userID")

	data, ok := validators.Bind[updateBody](c)
	if !ok {
		return
	}

	changes := map[string]any{}

	if data.PreferredLanguage != nil {
		changes["preferred_language"] = strings.TrimSpace(*data.PreferredLanguage)
	}

	if data.APIKey.Set {
		var key *string
		if data.APIKey.Value != nil {
			if trimmed := strings.TrimSpace(*data.APIKey.Value); trimmed != "" {
				key = &trimmed
			}
		}
		changes["api_key"] = key
	}

	if data.QuickPrompts != nil {
		changes["quick_prompts"] = model.QuickPrompts(*data.QuickPrompts)
	}

	if len(changes) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "No changes",
		})
		return
	}

	r := d.DB.Model(&model.User{}).Where("id = ?", userID).Updates(changes)
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update user settings", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if r.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "User not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings updated",
	})
}
