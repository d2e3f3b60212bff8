package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/lost-found-api/internal/application/item"
	"github.com/lost-found-api/internal/application/match"
	"github.com/lost-found-api/internal/application/notification"
	"github.com/lost-found-api/internal/application/user"
	"github.com/lost-found-api/internal/config"
	"github.com/lost-found-api/internal/infrastructure/awsclient"
	"github.com/lost-found-api/internal/infrastructure/dynamo"
	"github.com/lost-found-api/internal/infrastructure/google"
	jwtinfra "github.com/lost-found-api/internal/infrastructure/jwt"
	"github.com/lost-found-api/internal/infrastructure/minio"
	"github.com/lost-found-api/internal/infrastructure/rabbitmq"
	s3infra "github.com/lost-found-api/internal/infrastructure/s3"
	"github.com/lost-found-api/internal/infrastructure/sns"
	"github.com/lost-found-api/internal/pkg/logger"
	transporthttp "github.com/lost-found-api/internal/transport/http"
	"github.com/lost-found-api/internal/transport/http/middleware"
	"github.com/rs/zerolog/log"
)

type imageStore interface {
	UploadImage(ctx context.Context, data []byte, filename, contentType, folder string) (string, error)
	HealthCheck(ctx context.Context) error
}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	logger.Setup(cfg.AppEnv, cfg.LogLevel)
	if envErr != nil {
		log.Info().Msg("no .env file found, reading from environment")
	}

	ctx := context.Background()
	awsCfg, err := awsclient.Load(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS config")
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	itemRepo := dynamo.NewItemRepo(dynamoClient, cfg.DynamoTables.Items)
	matchRepo := dynamo.NewMatchRepo(dynamoClient, cfg.DynamoTables.Matches)
	notifRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)
	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)

	images, err := newImageStore(awsCfg, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to initialize image storage")
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.IdentityProvider).Msg("failed to initialize identity verifier")
	}

	// Optional collaborators are only assigned when configured.
	var notifSvc notification.Service
	if cfg.SNSTopicARN != "" {
		notifSvc = notification.NewService(notifRepo, sns.NewPusher(sns.NewClient(awsCfg, cfg.SNSRegion), cfg.SNSTopicARN))
		log.Info().Str("topic", cfg.SNSTopicARN).Msg("sns push enabled")
	} else {
		notifSvc = notification.NewService(notifRepo, nil)
	}

	matchDeps := match.ServiceDeps{
		ItemRepo:  itemRepo,
		MatchRepo: matchRepo,
		Notifier:  notifSvc,
		Threshold: cfg.MatchThreshold,
	}
	itemDeps := item.ServiceDeps{
		ItemRepo:   itemRepo,
		ImageStore: images,
	}
	if cfg.RabbitMQURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, domain events disabled")
		} else {
			defer pub.Close()
			matchDeps.Events = pub
			itemDeps.Events = pub
		}
	}
	matchSvc := match.NewService(matchDeps)
	itemDeps.Matcher = matchSvc

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Items:         item.NewService(itemDeps),
		Matches:       matchSvc,
		Notifications: notifSvc,
		Users:         user.NewService(userRepo, itemRepo),
		Verifier:      verifier,
		Storage:       images,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		return
	}
	log.Info().Msg("server stopped")
}

func newImageStore(awsCfg aws.Config, cfg *config.Config) (imageStore, error) {
	switch cfg.StorageDriver {
	case "minio":
		return minio.NewStore(cfg.MinIO)
	case "s3", "":
		return s3infra.NewStore(s3infra.NewClient(awsCfg, cfg), cfg.S3BucketName, cfg.AWSRegion, cfg.S3PublicBaseURL), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func newVerifier(cfg *config.Config) (middleware.TokenVerifier, error) {
	switch cfg.IdentityProvider {
	case "google":
		if cfg.GoogleClientID == "" {
			return nil, errors.New("GOOGLE_CLIENT_ID is required")
		}
		return google.NewVerifier(cfg.GoogleClientID), nil
	case "jwt", "":
		return jwtinfra.NewVerifierFromFile(cfg.JWTPublicKeyPath)
	}
	return nil, fmt.Errorf("unknown identity provider %q", cfg.IdentityProvider)
}
