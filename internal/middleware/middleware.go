package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/store-ratings-api/internal/auth"
	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	bearerPrefix   = "Bearer "
	currentUserKey = "middleware.currentUser"

	msgTokenRequired = "Access token required"
	msgInvalidToken  = "Invalid token"
)

// TokenVerifier checks a bearer token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserLookup resolves the user a token was issued to
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// Authenticate validates the Bearer token of the request and loads its user.
// The role is always taken from the stored user, never from the token, so
// role changes and deletions take effect on the next request.
func Authenticate(tokens TokenVerifier, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || strings.TrimSpace(authHeader) == strings.TrimSpace(bearerPrefix) {
			abortWithError(c, http.StatusUnauthorized, models.ErrUnauthorized, msgTokenRequired)
			return
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			abortWithError(c, http.StatusUnauthorized, models.ErrUnauthorized, msgInvalidToken)
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			abortWithError(c, http.StatusUnauthorized, models.ErrUnauthorized, msgTokenRequired)
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			logrus.WithError(err).Debug("Rejected bearer token")
			abortWithError(c, http.StatusUnauthorized, models.ErrUnauthorized, msgInvalidToken)
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if models.KindOf(err) == models.KindNotFound {
				abortWithError(c, http.StatusUnauthorized, models.ErrUnauthorized, msgInvalidToken)
				return
			}
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("Failed to load token user")
			abortWithError(c, http.StatusInternalServerError, models.ErrInternalServer, "Internal server error")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.NewAPIError(code, message))
}
