package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything the server reads from the environment so main
// stays lean. Optional integrations (Redis, Kafka, S3, Gemini) degrade to
// in-process fallbacks when unset.
type Config struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration

	PostgresDSN string

	Redis RedisConfig

	Gemini GeminiConfig

	S3 S3Config

	KafkaBrokers    []string
	KafkaAuditTopic string

	DraftTTL time.Duration
}

// RedisConfig mirrors the platform redis client options.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GeminiConfig configures the text normalization client.
type GeminiConfig struct {
	APIKey         string
	Model          string
	AttemptTimeout time.Duration
	MaxRetries     int
}

// S3Config points the evidence store at an S3-compatible endpoint (MinIO in
// development).
type S3Config struct {
	BaseEndpoint string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
}

// FromEnv builds the full configuration from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("CAMPUSVOICE_ADDR", ":8080"),
		JWTSigningKey:   envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       envOr("JWT_ISSUER", "campusvoice"),
		JWTAudience:     envOr("JWT_AUDIENCE", "campusvoice-api"),
		TokenTTL:        durationOr("TOKEN_TTL", time.Hour),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		KafkaAuditTopic: envOr("KAFKA_AUDIT_TOPIC", "campusvoice.audit"),
		DraftTTL:        durationOr("DRAFT_TTL", 30*time.Minute),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	cfg.Gemini = GeminiConfig{
		APIKey:         os.Getenv("GEMINI_API_KEY"),
		Model:          envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		AttemptTimeout: durationOr("GEMINI_ATTEMPT_TIMEOUT", 15*time.Second),
		MaxRetries:     2,
	}

	cfg.S3 = S3Config{
		BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"),
		Region:       envOr("S3_REGION", "us-east-1"),
		Bucket:       envOr("S3_BUCKET", "campusvoice-evidence"),
		AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		SecretKey:    os.Getenv("S3_SECRET_KEY"),
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
