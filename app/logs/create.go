// Package logs contains the practice log endpoints
package logs

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"leetgym/api/internal"
	"leetgym/api/internal/model"
	"leetgym/api/internal/service"
	"leetgym/api/pkg/util"
	"leetgym/api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultCategory = "General"

type createBody struct {
	Slug         string  `json:"slug" binding:"required,max=200"`
	Title        string  `json:"title" binding:"required,max=300"`
	Difficulty   string  `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard"`
	Confidence   int     `json:"confidence" binding:"required,min=1,max=3"`
	Category     string  `json:"category" binding:"max=100"`
	Approach     *string `json:"approach" binding:"omitempty,max=10000"`
	Complexity   *string `json:"complexity" binding:"omitempty,max=200"`
	CodeSnippet  *string `json:"codeSnippet" binding:"omitempty,max=20000"`
	TimeTaken    *int    `json:"timeTaken" binding:"omitempty,min=0"`
	TimeLimit    *int    `json:"timeLimit" binding:"omitempty,min=0"`
	MetTimeLimit *bool   `json:"metTimeLimit"`
	Language     *string `json:"language" binding:"omitempty,max=32"`

	// Notes generation calls the full solution optimalSolution, both are accepted
	Solution        *string `json:"solution" binding:"omitempty,max=50000"`
	OptimalSolution *string `json:"optimalSolution" binding:"omitempty,max=50000"`
}

// Create records a rated practice session. The review date is derived from
// the confidence rating once, here
func Create(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	userID := c.GetString("userID")

	data, ok := validators.Bind[createBody](c)
	if !ok {
		return
	}

	slug := strings.TrimSpace(data.Slug)
	title := strings.TrimSpace(data.Title)
	if slug == "" || title == "" {
		details := validators.FieldErrors{}
		if slug == "" {
			details["slug"] = []string{"is required"}
		}
		if title == "" {
			details["title"] = []string{"is required"}
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Validation failed",
			"details":   details,
			"requestID": requestID,
		})
		return
	}

	var user model.User
	if err := d.DB.Select("id").Where("id = ?", userID).First(&user).Error; err != nil {
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

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	id, err := util.NewID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate log ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	difficulty := data.Difficulty
	if difficulty == "" {
		difficulty = "Medium"
	}

	category := strings.TrimSpace(data.Category)
	if category == "" {
		category = defaultCategory
	}

	solution := data.Solution
	if solution == nil {
		solution = data.OptimalSolution
	}

	now := time.Now().UTC()

	entry := model.PracticeLog{
		ID:           id,
		UserID:       userID,
		Slug:         slug,
		Title:        title,
		Difficulty:   difficulty,
		Confidence:   data.Confidence,
		NextReviewAt: service.NextReviewDate(data.Confidence, now),
		Category:     category,
		Approach:     data.Approach,
		Complexity:   data.Complexity,
		CodeSnippet:  data.CodeSnippet,
		Solution:     solution,
		Language:     data.Language,
		TimeTaken:    data.TimeTaken,
		TimeLimit:    data.TimeLimit,
		MetTimeLimit: data.MetTimeLimit,
		CreatedAt:    now,
	}

	if err := d.DB.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save practice log", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, entry)
}
