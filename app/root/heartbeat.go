// Package root holds the probes load balancers and uptime checks hit
package root

import (
	"github.com/gin-gonic/gin"
)

// Heartbeat answers HEAD requests with an empty 200 while the process is up
func Heartbeat(c *gin.Context) {
	c.Status(200)
}
