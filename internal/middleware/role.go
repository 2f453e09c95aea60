package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only when the authenticated user has
// exactly the given role. It must run after Authenticate.
func RequireRole(requiredRole models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, models.ErrUnauthorized, msgTokenRequired)
			return
		}

		if user.Role != requiredRole {
			abortWithError(c, http.StatusForbidden, models.ErrForbidden, requiredRole.Label()+" access required")
			return
		}

		c.Next()
	}
}
