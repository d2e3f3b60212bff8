package minio

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lost-found-api/internal/config"
	"github.com/lost-found-api/internal/pkg/objectkey"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// Store uploads item images to a MinIO bucket with public read access.
type Store struct {
	client         *miniogo.Client
	bucket         string
	publicEndpoint string
}

// NewStore connects to MinIO and makes sure the bucket exists.
// An unreachable endpoint is logged, not fatal; uploads will report the error.
func NewStore(cfg config.MinIOConfig) (*Store, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &Store{
		client:         client,
		bucket:         cfg.Bucket,
		publicEndpoint: publicBase(cfg.PublicEndpoint, cfg.Endpoint, cfg.UseSSL),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.ensureBucket(ctx)

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Str("public_endpoint", s.publicEndpoint).
		Str("bucket", cfg.Bucket).
		Msg("minio storage initialized")
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		log.Warn().Err(err).Str("bucket", s.bucket).Msg("could not check bucket, continuing")
		return
	}
	if exists {
		return
	}
	if err := s.client.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{}); err != nil {
		log.Error().Err(err).Str("bucket", s.bucket).Msg("could not create bucket")
		return
	}
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Action":["s3:GetObject"],"Effect":"Allow","Principal":{"AWS":["*"]},"Resource":["arn:aws:s3:::%s/*"]}]}`, s.bucket)
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		log.Error().Err(err).Str("bucket", s.bucket).Msg("could not set public read policy")
	}
}

// UploadImage stores data under a unique key in folder and returns its public URL.
func (s *Store) UploadImage(ctx context.Context, data []byte, filename, contentType, folder string) (string, error) {
	key := objectkey.New(folder, filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("minio put object: %w", err)
	}
	return objectURL(s.publicEndpoint, s.bucket, key), nil
}

// HealthCheck verifies the bucket is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("minio health check: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

// publicBase picks the endpoint clients fetch images from and gives it a scheme.
func publicBase(public, endpoint string, useSSL bool) string {
	base := strings.Trim(strings.TrimSpace(public), `"'`)
	if base == "" {
		base = endpoint
	}
	base = strings.TrimSuffix(base, "/")
	if strings.Contains(base, "://") {
		return base
	}
	if useSSL {
		return "https://" + base
	}
	return "http://" + base
}

func objectURL(base, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", base, bucket, key)
}
