package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/portfolio/internal/pkg/response"
)

const ContextUserIDKey = "user_id"

type TokenVerifier interface {
	// Verify returns the user id carried by a valid token.
	Verify(token string) (string, error)
}

func JWTAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "No token provided", "")
			c.Abort()
			return
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid token", "")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
