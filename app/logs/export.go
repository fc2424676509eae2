package logs

import (
	"fmt"
	"net/http"
	"time"

	"leetgym/api/internal"
	"leetgym/api/internal/model"
	"leetgym/api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Export bundles every log the caller owns. With a bucket configured the
// document goes to S3 and a short lived link comes back, otherwise the
// document itself is the response
func Export(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	userID := c.GetString("userID")

	var entries []model.PracticeLog
	err := d.DB.Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load practice logs for export", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	now := time.Now()
	export := service.NewLogExport(entries, now)

	if d.Exporter == nil {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="leetgym-export-%s.json"`, now.UTC().Format("20060102")))
		c.JSON(http.StatusOK, export)
		return
	}

	url, expiresAt, err := d.Exporter.Upload(c.Request.Context(), userID, export)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload export", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":       url,
		"expiresAt": expiresAt,
		"count":     export.Count,
	})
}
