package middleware

import (
	"net/http"
	"strings"

	"leetgym/api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewJWTMiddleware rejects every request that doesn't carry a valid bearer
// token. All failures look the same to the caller
func NewJWTMiddleware(t *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		claims, err := fromHeader(c, t)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Unauthorized",
				"requestID": requestID,
			})

			zap.L().Debug("Rejected bearer token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// NewOptionalJWTMiddleware resolves the caller when a valid token is present
// and lets anonymous requests through untouched
func NewOptionalJWTMiddleware(t *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := fromHeader(c, t); err == nil {
			c.Set("userID", claims.Subject)
			c.Set("email", claims.Email)
		}

		c.Next()
	}
}

func fromHeader(c *gin.Context, t *security.TokenIssuer) (*security.Claims, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, security.ErrInvalidToken
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return nil, security.ErrInvalidToken
	}

	return t.Verify(token)
}
