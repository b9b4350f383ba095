package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	ServiceName string
	Version     string
	Environment string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Kafka settings for the notification channel
	KafkaBrokers      []string
	KafkaTopic        string
	KafkaGroupID      string
	PublishTimeout    time.Duration
	ConsumerWorkers   int
	DedupeCacheSize   int

	// Exchange coordinator retry settings
	SwapInsertRetries int
	SwapRetryBackoff  time.Duration

	// SMTP settings for the notifier's delivery capability
	SMTPHost string
	SMTPPort int

	// JWTSecret signs bearer tokens; must be set
	JWTSecret string
	JWTTTL    time.Duration

	// TrustedProxies lists proxy IPs whose X-Forwarded-For is honored
	TrustedProxies []string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		ServiceName: getEnv("SERVICE_NAME", "game-exchange"),
		Version:     getEnv("VERSION", "dev"),
		Environment: getEnv("ENVIRONMENT", "dev"),

		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "gameexchange"),

		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaTopic:      getEnv("KAFKA_TOPIC", DefaultNotificationTopic),
		KafkaGroupID:    getEnv("KAFKA_GROUP_ID", DefaultConsumerGroupID),
		PublishTimeout:  getEnvAsDuration("PUBLISH_TIMEOUT", DefaultPublishTimeout),
		ConsumerWorkers: getEnvAsInt("CONSUMER_WORKERS", DefaultConsumerWorkers),
		DedupeCacheSize: getEnvAsInt("DEDUPE_CACHE_SIZE", DefaultDedupeCacheSize),

		SwapInsertRetries: getEnvAsInt("SWAP_INSERT_RETRIES", DefaultSwapInsertRetries),
		SwapRetryBackoff:  getEnvAsDuration("SWAP_RETRY_BACKOFF", DefaultSwapRetryBackoff),

		SMTPHost: getEnv("SMTP_HOST", "smtp.ethereal.email"),
		SMTPPort: getEnvAsInt("SMTP_PORT", DefaultSMTPPort),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvAsDuration("JWT_TTL", DefaultJWTTTL),

		TrustedProxies: splitNonEmpty(getEnv("TRUSTED_PROXIES", "")),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	// Validate signing secret is set
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable must be set for security")
	}

	return cfg, nil
}

// splitNonEmpty splits a comma-separated list, dropping empty entries.
func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an integer environment variable or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvAsDuration retrieves a duration environment variable or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
