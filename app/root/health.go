package root

import (
	"context"
	"net/http"
	"time"

	"leetgym/api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const checkTimeout = 2 * time.Second

// Health pings every backing store. Any failed check turns the whole response
// into a 503
func Health(c *gin.Context, d *internal.Deps) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if err := pingDB(ctx, d); err != nil {
		checks["database"] = "down"
		healthy = false

		zap.L().Warn("Database health check failed", zap.Error(err))
	} else {
		checks["database"] = "ok"
	}

	if d.Redis != nil {
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			healthy = false

			zap.L().Warn("Redis health check failed", zap.Error(err))
		} else {
			checks["redis"] = "ok"
		}
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
	})
}

func pingDB(ctx context.Context, d *internal.Deps) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}
