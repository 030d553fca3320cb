package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"places-api/internal/metrics"
	"places-api/internal/service"
	"places-api/internal/upload"
)

const (
	userIDKey     = "userID"
	uploadPathKey = "uploadPath"
)

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		h.logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   elapsed.String(),
			"client_ip": c.ClientIP(),
		}).Info("request")
	}
}

// requireAuth accepts "Authorization: Bearer <token>" and stores the
// authenticated user id in the context.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			h.respondError(c, service.Unauthorized("Authentication failed!", errors.New("missing bearer token")))
			return
		}

		claims, err := h.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			h.respondError(c, service.Unauthorized("Authentication failed!", err))
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// imageUpload stores the single image in field before the handler runs.
// The stored file is removed again if the request later fails.
func (h *Handler) imageUpload(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := h.uploads.Save(c, field)
		if err != nil {
			switch {
			case errors.Is(err, upload.ErrMissingFile):
				h.respondError(c, service.Validation("An image is required.", err))
			case errors.Is(err, upload.ErrTooLarge):
				h.respondError(c, service.Validation("Image file is too large.", err))
			case errors.Is(err, upload.ErrUnsupportedType):
				h.respondError(c, service.Validation("Invalid mime type!", err))
			default:
				h.respondError(c, service.Internal("Could not process the uploaded file.", err))
			}
			return
		}

		c.Set(uploadPathKey, path)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

func uploadedPath(c *gin.Context) string {
	return c.GetString(uploadPathKey)
}
