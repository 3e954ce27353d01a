package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"JWT_TTL", "JWT_SECRET", "POST_SAVE_RETRIES", "STORE_DRIVER", "MAIL_SEND_ENABLED"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, 100*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "devjwtsecret", cfg.JWTSecret)
	assert.Equal(t, 3, cfg.PostSaveRetries)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.False(t, cfg.MailSendEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("POST_SAVE_RETRIES", "5")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("COOKIE_SECURE", "true")
	cfg := Load()

	tc := cfg.TokenConfig()
	assert.Equal(t, 2*time.Hour, tc.TTL)
	assert.Equal(t, "s3cret", tc.Secret)
	assert.Equal(t, 5, cfg.PostSaveRetries)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_TTL", "forever")
	t.Setenv("POST_SAVE_RETRIES", "many")
	t.Setenv("COOKIE_SECURE", "maybe")
	cfg := Load()

	assert.Equal(t, 100*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 3, cfg.PostSaveRetries)
	assert.False(t, cfg.CookieSecure)
}

func TestPostgresDSNAndCORSOrigins(t *testing.T) {
	cfg := &Config{
		DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "1", DBName: "d", DBSSLMode: "disable",
		CORSAllowedOrigins: " http://a.test , ,http://b.test",
	}
	assert.Equal(t, "postgres://u:p@h:1/d?sslmode=disable", cfg.PostgresDSN())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
}
