package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/auth"
	"marketplace-service/internal/models"
	"marketplace-service/internal/observability"
	"marketplace-service/internal/repositories"
)

const actingUserKey = "actingUser"

// AuthMiddleware validates the bearer token and resolves the acting user
// row. Handlers receive the user as an explicit value, never a bare id.
func AuthMiddleware(issuer *auth.TokenIssuer, users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid authorization header"})
			return
		}

		claims, err := issuer.Parse(parts[1])
		if err != nil {
			log.Printf("auth rejected ip=%s: %v", observability.IPFromRequest(c.Request), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "account disabled"})
			return
		}

		c.Set(actingUserKey, user)
		c.Next()
	}
}

// UserFromContext returns the acting user set by AuthMiddleware.
func UserFromContext(c *gin.Context) (models.User, bool) {
	val, ok := c.Get(actingUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

// SetUserForTest injects an acting user; test routers use it in place of
// the full token round trip.
func SetUserForTest(c *gin.Context, user models.User) {
	c.Set(actingUserKey, user)
}
