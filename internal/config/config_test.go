package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_NAME", "APP_ENV", "DB_DRIVER", "DATABASE_URL", "MIGRATIONS_DIR", "HTTP_URL", "HTTP_PORT",
	"ALLOWED_ORIGINS", "TOKEN_SECRET", "TOKEN_DURATION", "REDIS_ADDRESS", "REDIS_PASSWORD", "CACHE_TTL",
	"UPLOAD_DIR", "UPLOAD_MAX_BYTES", "CLIENT_BUILD_DIR", "RAZORPAY_KEY_ID", "RAZORPAY_KEY_SECRET",
	"RAZORPAY_BASE_URL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_IDLE_TTL", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnvFallbacks(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "quickwheelz", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "5000", cfg.HTTP.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Token.Duration)
	assert.Equal(t, 15*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, int64(5242880), cfg.Upload.MaxBytes)
	assert.Equal(t, "https://api.razorpay.com", cfg.Payment.BaseURL)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.IdleTTL)

	assert.ElementsMatch(t, []string{
		"TOKEN_SECRET", "DATABASE_URL", "ALLOWED_ORIGINS", "RAZORPAY_KEY_ID", "RAZORPAY_KEY_SECRET",
	}, cfg.InsecureDefaults)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("TOKEN_DURATION", "12h")
	t.Setenv("DATABASE_URL", "postgres://db/app")
	t.Setenv("ALLOWED_ORIGINS", "https://quickwheelz.in")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_live")
	t.Setenv("RAZORPAY_KEY_SECRET", "live_secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.DB.Driver)
	assert.Equal(t, "production", cfg.HTTP.Env)
	assert.Equal(t, "s3cret", cfg.Token.Secret)
	assert.Equal(t, 12*time.Hour, cfg.Token.Duration)
	assert.Empty(t, cfg.InsecureDefaults)
}

func TestFromEnvRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "mongodb")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "1d", want: 24 * time.Hour},
		{in: "90m", want: 90 * time.Minute},
		{in: "0d", wantErr: true},
		{in: "xd", wantErr: true},
		{in: "-1h", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
