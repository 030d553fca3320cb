package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"places-api/internal/service"
)

const unknownErrorMessage = "An unknown error occurred!"

// statusFor maps a classified error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrConflict):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the client facing message of err without any
// internal detail.
func publicMessage(err error) string {
	var appErr *service.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return unknownErrorMessage
}

// respondError is the single place failures are turned into responses.
func (h *Handler) respondError(c *gin.Context, err error) {
	if path := uploadedPath(c); path != "" {
		if rmErr := h.uploads.Remove(path); rmErr != nil {
			h.logger.WithError(rmErr).Warn("remove orphaned upload")
		}
	}

	status := statusFor(err)
	entry := h.logger.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"status": status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	c.AbortWithStatusJSON(status, gin.H{"message": publicMessage(err)})
}
