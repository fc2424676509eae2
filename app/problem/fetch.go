// Package problem proxies problem metadata from the practice site
package problem

import (
	"errors"
	"net/http"
	"regexp"

	"leetgym/api/internal"
	"leetgym/api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func Fetch(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	slug := c.Param("slug")

	if len(slug) > 200 || !slugRe.MatchString(slug) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid problem slug",
			"requestID": requestID,
		})
		return
	}

	p, err := d.Problems.Fetch(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrProblemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Problem not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to fetch problem",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch problem", zap.Error(err), zap.String("slug", slug), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, p)
}
