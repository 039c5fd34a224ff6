package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/authz"
)

// AdminGuard denies every non-admin with the forbidden reason and no data.
func AdminGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing authorization"})
			return
		}
		if d := authz.RequireAdmin(user); !d.Allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": d.Reason})
			return
		}
		c.Next()
	}
}
