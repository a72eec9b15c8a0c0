package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "PUBLIC_BASE_URL", "ALLOWED_ORIGINS", "JWT_SECRET", "SESSION_TTL",
		"REDIS_URL", "S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
		"DATABASE_URL", "MATRIX_HOME_SERVER", "MATRIX_DEVICE_ID", "AKAUNTING_DEFAULT_DOMAIN",
		"HTTP_CLIENT_TIMEOUT", "OUTBOX_POLL_INTERVAL", "OUTBOX_BATCH_SIZE", "OUTBOX_MAX_ATTEMPTS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "https://kinbrio.com", cfg.PublicBaseURL)
	assert.Equal(t, "https://app.akaunting.com/api", cfg.AkauntingDefaultDomain)
	assert.Equal(t, "kinbrio", cfg.MatrixDeviceID)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.Equal(t, 20, cfg.OutboxBatchSize)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadConfigProductionRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_ENDPOINT")

	t.Setenv("S3_ENDPOINT", "http://minio:9000")
	t.Setenv("S3_ACCESS_KEY_ID", "id")
	t.Setenv("S3_SECRET_ACCESS_KEY", "key")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://db/kinbrio")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadConfigParsesValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("PUBLIC_BASE_URL", "https://app.example/")
	t.Setenv("OUTBOX_MAX_ATTEMPTS", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "https://app.example", cfg.PublicBaseURL)
	assert.Equal(t, 3, cfg.OutboxMaxAttempts)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"PORT":              "80",
		"SESSION_TTL":       "soon",
		"OUTBOX_BATCH_SIZE": "-1",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
