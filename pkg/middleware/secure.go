package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// NewSecureMiddleware sets the usual hardening headers on every response
func NewSecureMiddleware(isDevelopment bool) gin.HandlerFunc {
	s := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      isDevelopment,
	})

	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}

		// Process may have answered with a redirect already
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}

		c.Next()
	}
}
