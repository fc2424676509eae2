package logs

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"leetgym/api/internal"
	"leetgym/api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultLimit = 100
	maxLimit     = 200
)

var errBadCursor = errors.New("invalid cursor")

type page struct {
	Items      []model.PracticeLog `json:"items"`
	NextCursor *string             `json:"nextCursor"`
	HasMore    bool                `json:"hasMore"`
}

// List returns the caller's logs due soonest first. Pages are keyset based on
// (next_review_at, id) so following nextCursor never repeats or skips a row
func List(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	userID := c.GetString("userID")

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid limit",
			"requestID": requestID,
		})
		return
	}

	query := d.DB.Where("user_id = ?", userID)

	if cursor := c.Query("cursor"); cursor != "" {
		after, err := resolveCursor(d.DB, userID, cursor)
		if err != nil {
			if errors.Is(err, errBadCursor) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "Invalid cursor",
					"requestID": requestID,
				})
				return
			}

			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to resolve cursor", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		query = query.Where(
			"(next_review_at > ?) OR (next_review_at = ? AND id > ?)",
			after.NextReviewAt, after.NextReviewAt, after.ID,
		)
	}

	// One extra row tells us whether another page exists
	items := make([]model.PracticeLog, 0, limit+1)
	err = query.
		Order("next_review_at ASC").
		Order("id ASC").
		Limit(limit + 1).
		Find(&items).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list practice logs", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	resp := page{Items: items}
	if len(items) > limit {
		resp.Items = items[:limit]
		resp.HasMore = true

		next := encodeCursor(resp.Items[limit-1].ID)
		resp.NextCursor = &next
	}

	c.JSON(http.StatusOK, resp)
}

// parseLimit clamps to [1, maxLimit]. Anything that is not an integer is an error
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}

	return min(max(n, 1), maxLimit), nil
}

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// resolveCursor loads the row the cursor points at. Cursors naming a row the
// caller does not own are rejected the same way as garbage
func resolveCursor(db *gorm.DB, userID, cursor string) (*model.PracticeLog, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil || len(raw) == 0 {
		return nil, errBadCursor
	}

	var after model.PracticeLog
	err = db.Select("id", "next_review_at").
		Where("id = ? AND user_id = ?", string(raw), userID).
		First(&after).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCursor
		}
		return nil, err
	}

	return &after, nil
}
