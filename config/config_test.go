package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("JWT_SECRET", "secret")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "redis", cfg.RateLimit.Backend)
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestFromViper_ParsesDurations(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("JWT_SECRET", "secret")
	v.Set("JWT_ACCESS_EXPIRY", "30m")
	v.Set("JWT_REFRESH_EXPIRY", "48h")
	v.Set("RATE_LIMIT_WINDOW", "10s")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 48*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
}

func TestFromViper_InvalidDurationFallsBack(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("JWT_SECRET", "secret")
	v.Set("JWT_ACCESS_EXPIRY", "soon")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
}

func TestFromViper_RequiresSecret(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	_, err := fromViper(v)
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestFromViper_AllowedOrigins(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("JWT_SECRET", "secret")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.App.AllowedOrigins)

	v.Set("CORS_ALLOWED_ORIGINS", "https://dash.example.com, https://ops.example.com ,")
	cfg, err = fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://dash.example.com", "https://ops.example.com"}, cfg.App.AllowedOrigins)
}
