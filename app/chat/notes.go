package chat

import (
	"errors"
	"net/http"

	"leetgym/api/internal"
	"leetgym/api/internal/service"
	"leetgym/api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type notesBody struct {
	Messages       []message      `json:"messages" binding:"required,min=1,max=100,dive"`
	ProblemContext problemContext `json:"problemContext" binding:"required"`
	UserAPIKey     string         `json:"userApiKey" binding:"max=512"`
	Language       string         `json:"language" binding:"max=32"`
}

func GenerateNotes(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	data, ok := validators.Bind[notesBody](c)
	if !ok {
		return
	}

	notes, err := d.LLM.GenerateNotes(
		c.Request.Context(),
		data.UserAPIKey,
		data.ProblemContext.toService(),
		history(data.Messages),
		data.Language,
	)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAPIKey) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid API Key provided.",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to generate notes",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate notes", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, notes)
}
