package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENABLE_TEST_PAYMENTS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "percentage", cfg.DiscountModel)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 15*time.Second, cfg.NomodTimeout)
	assert.Equal(t, "dev_jwt_secret", cfg.JWTSecret)
	assert.False(t, cfg.TestPaymentsAllowed())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DISCOUNT_MODEL", "FLAT")
	t.Setenv("NOMOD_TIMEOUT", "3s")
	t.Setenv("NOMOD_BASE_URL", "https://nomod.test/")
	t.Setenv("ENABLE_TEST_PAYMENTS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "flat", cfg.DiscountModel)
	assert.Equal(t, 3*time.Second, cfg.NomodTimeout)
	assert.Equal(t, "https://nomod.test", cfg.NomodBaseURL)
	assert.True(t, cfg.TestPaymentsAllowed())
}

func TestFromViper_Rejects(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DATABASE_DRIVER", "oracle")
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	setDefaults(v)
	v.Set("APP_ENV", "production")
	_, err = fromViper(v)
	assert.Error(t, err)

	v.Set("JWT_SECRET", "s3cret")
	v.Set("ENABLE_TEST_PAYMENTS", true)
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.TestPaymentsAllowed())
}
