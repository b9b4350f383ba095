package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvAsInt(t *testing.T) {
	t.Run("returns default value when env var not set", func(t *testing.T) {
		os.Unsetenv("TEST_INT_VAR")
		result := getEnvAsInt("TEST_INT_VAR", 42)
		assert.Equal(t, 42, result)
	})

	t.Run("parses valid integer from env var", func(t *testing.T) {
		t.Setenv("TEST_INT_VAR", "100")
		result := getEnvAsInt("TEST_INT_VAR", 42)
		assert.Equal(t, 100, result)
	})

	t.Run("returns default for invalid integer", func(t *testing.T) {
		t.Setenv("TEST_INT_VAR", "not-a-number")
		result := getEnvAsInt("TEST_INT_VAR", 42)
		assert.Equal(t, 42, result, "Should return default for invalid integer")
	})
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Run("returns default value when env var not set", func(t *testing.T) {
		os.Unsetenv("TEST_DURATION_VAR")
		result := getEnvAsDuration("TEST_DURATION_VAR", 5*time.Minute)
		assert.Equal(t, 5*time.Minute, result)
	})

	t.Run("parses valid duration from env var", func(t *testing.T) {
		t.Setenv("TEST_DURATION_VAR", "10m")
		result := getEnvAsDuration("TEST_DURATION_VAR", 5*time.Minute)
		assert.Equal(t, 10*time.Minute, result)
	})

	t.Run("returns default for invalid duration", func(t *testing.T) {
		t.Setenv("TEST_DURATION_VAR", "soon")
		result := getEnvAsDuration("TEST_DURATION_VAR", 30*time.Second)
		assert.Equal(t, 30*time.Second, result)
	})
}

func TestLoad(t *testing.T) {
	t.Run("fails without JWT_SECRET", func(t *testing.T) {
		os.Unsetenv("JWT_SECRET")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("loads defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, DefaultNotificationTopic, cfg.KafkaTopic)
		assert.Equal(t, DefaultConsumerGroupID, cfg.KafkaGroupID)
		assert.Equal(t, DefaultPublishTimeout, cfg.PublishTimeout)
		assert.Equal(t, DefaultSwapInsertRetries, cfg.SwapInsertRetries)
	})

	t.Run("fails on invalid port", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("PORT", "not-a-port")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PORT")
	})

	t.Run("splits kafka brokers", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	})
}

func TestValidateEnv(t *testing.T) {
	t.Run("reports missing variables", func(t *testing.T) {
		for _, v := range RequiredEnvVars {
			os.Unsetenv(v)
		}
		err := ValidateEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_USER")
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("passes when all set", func(t *testing.T) {
		for _, v := range RequiredEnvVars {
			t.Setenv(v, "value")
		}
		require.NoError(t, ValidateEnv())
	})
}
