package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/flood-response/internal/models"
)

// Identifier resolves a bearer token to the signed-in user.
type Identifier interface {
	Identify(ctx context.Context, token string) (*models.User, error)
}

const userContextKey = "user"

// AuthRequired is the identity gate: protected handlers never run without a
// resolved user.
func AuthRequired(ident Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "You must be logged in.",
			})
			return
		}

		user, err := ident.Identify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "You must be logged in.",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userContextKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
