// Package chat relays coaching conversations and notes generation to the
// chat completion provider
package chat

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"leetgym/api/internal"
	"leetgym/api/internal/quota"
	"leetgym/api/internal/service"
	"leetgym/api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type message struct {
	Role    string `json:"role" binding:"required,oneof=user assistant system"`
	Content string `json:"content" binding:"max=20000"`
}

type problemContext struct {
	Title       string `json:"title" binding:"required,max=300"`
	Difficulty  string `json:"difficulty" binding:"max=20"`
	Description string `json:"description" binding:"max=50000"`
}

type chatBody struct {
	Messages       []message      `json:"messages" binding:"required,min=1,max=100,dive"`
	ProblemContext problemContext `json:"problemContext" binding:"required"`
	UserAPIKey     string         `json:"userApiKey" binding:"max=512"`
}

func (m message) toService() service.ChatMessage {
	return service.ChatMessage{Role: m.Role, Content: m.Content}
}

func (p problemContext) toService() service.ProblemContext {
	return service.ProblemContext{
		Title:       p.Title,
		Difficulty:  p.Difficulty,
		Description: p.Description,
	}
}

func history(msgs []message) []service.ChatMessage {
	out := make([]service.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = m.toService()
	}

	return out
}

// Chat streams the coach's reply as plain text. Callers without a personal
// key spend the shared daily quota
func Chat(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	data, ok := validators.Bind[chatBody](c)
	if !ok {
		return
	}

	if data.UserAPIKey == "" {
		key := quota.Key(c.GetString("userID"), c.GetHeader("X-Forwarded-For"))

		if err := d.Quota.Allow(c.Request.Context(), key); err != nil {
			if errors.Is(err, quota.ErrExceeded) {
				limit := d.Quota.Limit()
				c.JSON(http.StatusTooManyRequests, gin.H{
					"error":        fmt.Sprintf("Daily limit reached (%d/%d). Add your own API key in settings!", limit, limit),
					"isQuotaError": true,
					"requestID":    requestID,
				})
				return
			}

			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check usage quota", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	}

	stream, err := d.LLM.OpenChat(c.Request.Context(), data.UserAPIKey, data.ProblemContext.toService(), history(data.Messages))
	if err != nil {
		if errors.Is(err, service.ErrInvalidAPIKey) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid API Key provided.",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open chat stream", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for {
		chunk, err := stream.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				// Headers are gone already, all that is left is cutting the body short
				zap.L().Error("Chat stream failed", zap.Error(err), zap.String("requestID", requestID))
			}
			return
		}

		if _, err := io.WriteString(c.Writer, chunk); err != nil {
			zap.L().Debug("Client went away mid stream", zap.Error(err), zap.String("requestID", requestID))
			return
		}
		c.Writer.Flush()
	}
}
