package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	StorageDriver   string // "s3" | "minio"
	S3BucketName    string
	S3PublicBaseURL string
	MinIO           MinIOConfig

	IdentityProvider string // "jwt" | "google"
	JWTPublicKeyPath string
	GoogleClientID   string

	SNSRegion   string
	SNSTopicARN string // push delivery disabled when empty

	RabbitMQURL      string // event publishing disabled when empty
	RabbitMQExchange string

	MaxImageBytes  int64
	MatchThreshold int
	AllowedOrigins []string // CORS allowed origins
	TrustedProxies []string // peers whose X-Forwarded-For / X-Real-Ip is honoured
}

// DynamoTables holds the DynamoDB table name for each collection.
type DynamoTables struct {
	Items         string
	Matches       string
	Notifications string
	Users         string
}

type MinIOConfig struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Items:         getEnv("DYNAMO_TABLE_ITEMS", "items"),
			Matches:       getEnv("DYNAMO_TABLE_MATCHES", "matches"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
		},

		StorageDriver:   getEnv("STORAGE_DRIVER", "s3"),
		S3BucketName:    getEnv("S3_BUCKET_NAME", "lost-found-images"),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		MinIO: MinIOConfig{
			Endpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", ""),
			AccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:      getEnv("MINIO_SECRET_KEY", ""),
			Bucket:         getEnv("MINIO_BUCKET", "lost-found-images"),
			UseSSL:         getEnvBool("MINIO_USE_SSL", false),
		},

		IdentityProvider: getEnv("IDENTITY_PROVIDER", "jwt"),
		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		GoogleClientID:   getEnv("GOOGLE_CLIENT_ID", ""),

		SNSRegion:   getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN: getEnv("SNS_TOPIC_ARN", ""),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "lostfound.events"),

		MaxImageBytes:  int64(getEnvInt("MAX_IMAGE_BYTES", 5<<20)),
		MatchThreshold: getEnvInt("MATCH_THRESHOLD", 30),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
