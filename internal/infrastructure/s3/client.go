package s3infra

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lost-found-api/internal/config"
	"github.com/lost-found-api/internal/pkg/objectkey"
	"github.com/rs/zerolog/log"
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Store wraps S3 operations for the application.
type Store struct {
	client  objectAPI
	bucket  string
	baseURL string
}

// NewClient creates an S3 client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewClient(awsCfg aws.Config, cfg *config.Config) *s3.Client {
	clientOpts := []func(*s3.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...)
}

// NewStore creates a Store for bucket. Object URLs are built from publicBaseURL,
// or from the virtual-hosted bucket URL in region when it is empty.
func NewStore(client objectAPI, bucket, region, publicBaseURL string) *Store {
	base := strings.TrimSuffix(strings.TrimSpace(publicBaseURL), "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &Store{client: client, bucket: bucket, baseURL: base}
}

// UploadImage stores data under a unique key in folder and returns its public URL.
func (s *Store) UploadImage(ctx context.Context, data []byte, filename, contentType, folder string) (string, error) {
	key := objectkey.New(folder, filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	url := s.baseURL + "/" + key
	log.Debug().Str("key", key).Str("url", url).Msg("image uploaded")
	return url, nil
}

// HealthCheck verifies the bucket exists and is reachable with the configured credentials.
func (s *Store) HealthCheck(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("s3 head bucket %q: %w", s.bucket, err)
	}
	return nil
}
