package api

import (
	"alcyxob/getsfit/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrValidationFailed, http.StatusBadRequest},
	{service.ErrInvalidObjectKey, http.StatusBadRequest},
	{service.ErrUploadNotFound, http.StatusBadRequest},
	{service.ErrInvalidState, http.StatusBadRequest},
	{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	{service.ErrInvalidSignature, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrExerciseNotFound, http.StatusNotFound},
	{service.ErrWorkoutNotFound, http.StatusNotFound},
	{service.ErrInjuryNotFound, http.StatusNotFound},
	{service.ErrNoVideo, http.StatusNotFound},
	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrTelegramNotLinked, http.StatusConflict},
	{service.ErrFitbitNotLinked, http.StatusConflict},
	{service.ErrFitbitNotConfigured, http.StatusServiceUnavailable},
	{service.ErrCalcomNotConfigured, http.StatusServiceUnavailable},
	{service.ErrStorageNotConfigured, http.StatusServiceUnavailable},
}

// respondServiceError maps a service error to its HTTP status. Unknown errors
// are logged and reported as a generic 500.
func respondServiceError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			abortWithError(c, e.status, err.Error())
			return
		}
	}
	log.WithError(err).WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("request failed")
	abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
}
