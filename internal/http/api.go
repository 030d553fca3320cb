package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"places-api/internal/auth"
	"places-api/internal/service"
)

// TokenVerifier validates bearer credentials.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// ImageStore keeps uploaded images on local disk.
type ImageStore interface {
	Save(c *gin.Context, field string) (string, error)
	Remove(path string) error
	Dir() string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	places  service.PlaceService
	users   service.UserService
	tokens  TokenVerifier
	uploads ImageStore
	logger  logrus.FieldLogger
}

func NewHandler(places service.PlaceService, users service.UserService, tokens TokenVerifier, uploads ImageStore, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		places:  places,
		users:   users,
		tokens:  tokens,
		uploads: uploads,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger(), corsMiddleware())

	router.Static("/uploads/images", h.uploads.Dir())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		places := api.Group("/places")
		places.GET("/:id", h.getPlace)
		places.GET("/user/:id", h.getPlacesByUser)

		authed := places.Group("", h.requireAuth())
		authed.POST("", h.imageUpload("image"), h.createPlace)
		authed.PATCH("/:id", h.updatePlace)
		authed.DELETE("/:id", h.deletePlace)

		users := api.Group("/users")
		users.GET("", h.listUsers)
		users.POST("/signup", h.imageUpload("image"), h.signup)
		users.POST("/login", h.login)
	}

	router.NoRoute(func(c *gin.Context) {
		h.respondError(c, service.NotFound("Could not find this route.", nil))
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
