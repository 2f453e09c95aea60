package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/store-ratings-api/internal/middleware"
	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgInvalidBody      = "Invalid request body"
	msgInternalError    = "Internal server error"
	msgNotAuthenticated = "Access token required"
)

// MessageResponse is the body of every successful mutation
type MessageResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id,omitempty"`
}

// respondError writes err as an APIError with the status matching its kind.
// Unclassified errors are logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		logrus.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("Unhandled error")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, msgInternalError))
		return
	}

	status, code := http.StatusInternalServerError, models.ErrInternalServer
	switch appErr.Kind {
	case models.KindValidation:
		status, code = http.StatusBadRequest, models.ErrValidationFailed
	case models.KindConflict:
		status, code = http.StatusBadRequest, models.ErrConflict
	case models.KindAuthentication:
		status, code = http.StatusUnauthorized, models.ErrUnauthorized
	case models.KindAuthorization:
		status, code = http.StatusForbidden, models.ErrForbidden
	case models.KindNotFound:
		status, code = http.StatusNotFound, models.ErrNotFound
	}

	message := appErr.Message
	if status == http.StatusInternalServerError {
		logrus.WithField("request_id", middleware.GetRequestID(c)).WithError(err).Error("Internal error")
		message = msgInternalError
	}
	c.JSON(status, models.NewAPIError(code, message))
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, message))
}

// parseIDParam reads a positive numeric path parameter. Ids are stored as
// signed 64 bit integers, so anything wider is rejected as malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 63)
	if err != nil || id == 0 {
		respondBadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the authenticated user or writes a 401
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, msgNotAuthenticated))
		return nil, false
	}
	return user, true
}
