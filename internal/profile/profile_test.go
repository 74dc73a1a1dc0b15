package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAnalyticsEnvVars(t *testing.T) {
	for _, key := range []string{
		"ANALYTICS_TIMEZONE",
		"ANALYTICS_RATE_LIMIT_RPS",
		"ANALYTICS_RATE_LIMIT_BURST",
		"ANALYTICS_SIMILAR_USERS_CONCURRENCY",
		"ANALYTICS_REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestProfileDefaults(t *testing.T) {
	clearAnalyticsEnvVars(t)

	profile := &Profile{}
	profile.FromEnv()

	assert.Equal(t, "UTC", profile.Timezone)
	assert.Equal(t, 10.0, profile.RateLimitRPS)
	assert.Equal(t, 20, profile.RateLimitBurst)
	assert.Equal(t, 8, profile.SimilarUsersConcurrency)
	assert.Equal(t, 30*time.Second, profile.RequestTimeout)
	assert.Equal(t, time.UTC, profile.Location())
}

func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		field    func(*Profile) any
		expected any
	}{
		{"timezone", "ANALYTICS_TIMEZONE", "Europe/Paris", func(p *Profile) any { return p.Timezone }, "Europe/Paris"},
		{"rate limit rps", "ANALYTICS_RATE_LIMIT_RPS", "2.5", func(p *Profile) any { return p.RateLimitRPS }, 2.5},
		{"rate limit burst", "ANALYTICS_RATE_LIMIT_BURST", "5", func(p *Profile) any { return p.RateLimitBurst }, 5},
		{"invalid burst keeps default", "ANALYTICS_RATE_LIMIT_BURST", "many", func(p *Profile) any { return p.RateLimitBurst }, 20},
		{"similar users concurrency", "ANALYTICS_SIMILAR_USERS_CONCURRENCY", "3", func(p *Profile) any { return p.SimilarUsersConcurrency }, 3},
		{"request timeout", "ANALYTICS_REQUEST_TIMEOUT", "5s", func(p *Profile) any { return p.RequestTimeout }, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearAnalyticsEnvVars(t)
			t.Setenv(tt.envVar, tt.envValue)

			profile := &Profile{}
			profile.FromEnv()
			assert.Equal(t, tt.expected, tt.field(profile))
		})
	}
}

func TestProfileValidate(t *testing.T) {
	t.Run("sqlite dsn derived from data dir", func(t *testing.T) {
		dir := t.TempDir()
		profile := &Profile{Mode: "dev", Data: dir}
		require.NoError(t, profile.Validate())
		assert.Equal(t, "sqlite", profile.Driver)
		assert.Equal(t, filepath.Join(dir, "analytics_dev.db"), profile.DSN)
	})

	t.Run("unknown mode falls back to demo", func(t *testing.T) {
		profile := &Profile{Mode: "staging", Data: t.TempDir()}
		require.NoError(t, profile.Validate())
		assert.Equal(t, "demo", profile.Mode)
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		profile := &Profile{Mode: "prod", Driver: "postgres"}
		assert.Error(t, profile.Validate())
	})

	t.Run("unsupported driver", func(t *testing.T) {
		profile := &Profile{Mode: "dev", Driver: "mysql", Data: t.TempDir()}
		assert.Error(t, profile.Validate())
	})

	t.Run("invalid timezone", func(t *testing.T) {
		profile := &Profile{Mode: "dev", Data: t.TempDir(), Timezone: "Mars/Olympus"}
		assert.Error(t, profile.Validate())
	})

	t.Run("missing data dir", func(t *testing.T) {
		profile := &Profile{Mode: "dev", Data: filepath.Join(t.TempDir(), "missing")}
		assert.Error(t, profile.Validate())
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ANALYTICS_TIMEZONE=Asia/Tokyo\n"), 0600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("ANALYTICS_DOTENV", "")
	t.Setenv("ANALYTICS_TIMEZONE", "")
	require.NoError(t, os.Unsetenv("ANALYTICS_TIMEZONE"))

	require.NoError(t, LoadDotEnv())
	assert.Equal(t, "Asia/Tokyo", os.Getenv("ANALYTICS_TIMEZONE"))
}
