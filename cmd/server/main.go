package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"places-api/internal/auth"
	"places-api/internal/config"
	"places-api/internal/geocode"
	apphttp "places-api/internal/http"
	"places-api/internal/repository/sqlite"
	"places-api/internal/service"
	"places-api/internal/storage"
	"places-api/internal/upload"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	userRepo := sqlite.NewUserRepository(db)
	placeRepo := sqlite.NewPlaceRepository(db)
	uow := sqlite.NewUnitOfWork(db, logger)

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	geocoder, err := geocode.NewOlaMapsClient(geocode.Config{
		BaseURL:  cfg.Geocoding.BaseURL,
		APIKey:   cfg.Geocoding.APIKey,
		Language: cfg.Geocoding.Language,
		Timeout:  time.Duration(cfg.Geocoding.TimeoutSeconds) * time.Second,
		RPS:      cfg.Geocoding.RPS,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatalf("setup geocoder: %v", err)
	}

	uploads, err := upload.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		logger.Fatalf("setup uploads: %v", err)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	if err != nil {
		logger.Fatalf("setup tokens: %v", err)
	}
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	placeService := service.NewPlaceService(placeRepo, userRepo, uow, geocoder, uploads, logger)
	userService := service.NewUserService(userRepo, hasher, tokens, storageSvc, uploads, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(placeService, userService, tokens, uploads, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, storage.Options{
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		KeyPrefix:     cfg.Storage.KeyPrefix,
		Endpoint:      cfg.Storage.Endpoint,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
}
