package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:microblog.db")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("EXTERNAL_ID_SECRET", "pepper")
	t.Setenv("POST_TITLE_MAX", "")
	t.Setenv("POST_CONTENT_MAX", "not-a-number")
	t.Setenv("SESSION_TTL_HOURS", "2")

	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 100, cfg.PostTitleMax)
	assert.Equal(t, 1000, cfg.PostContentMax)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.S3Enabled())
}

func TestValidateReportsMissingValues(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", PostTitleMax: 10, PostContentMax: 10}

	err := cfg.Validate()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "EXTERNAL_ID_SECRET")
}
