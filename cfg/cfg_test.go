package cfg

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", c.Port)
	assert.Equal(t, 50000, c.MaxContentLength)
	assert.Equal(t, 100, c.MaxTitleLength)
	assert.Equal(t, "plaintext", c.DefaultLanguage)
	assert.Equal(t, int64(10*1024*1024), c.MaxBodySize)
	assert.Equal(t, 100, c.RateLimitRequests)
	assert.Equal(t, 15*time.Minute, c.RateLimitWindow)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Empty(t, c.TrustedProxies)
	assert.NoError(t, Validate(c))
}

func TestLoadFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	t.Setenv("METRICS_PASS", "hunter2")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, time.Minute, c.RateLimitWindow)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, c.TrustedProxies)
	assert.Equal(t, "hunter2", c.MetricsPass.Value())
	assert.Equal(t, "***REDACTED***", fmt.Sprint(c.MetricsPass))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MAX_TITLE_LENGTH=42\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("MAX_TITLE_LENGTH", "")
	os.Unsetenv("MAX_TITLE_LENGTH")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 42, c.MaxTitleLength)
}

func TestLoadRejectsBadValues(t *testing.T) {
	isolate(t)
	t.Setenv("MAX_CONTENT_LENGTH", "lots")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	base, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Cfg)
	}{
		{"non numeric port", func(c *Cfg) { c.Port = "http" }},
		{"zero content length", func(c *Cfg) { c.MaxContentLength = 0 }},
		{"body over 10MB", func(c *Cfg) { c.MaxBodySize = 11 * 1024 * 1024 }},
		{"no id retries", func(c *Cfg) { c.IDRetries = 0 }},
		{"tiny window", func(c *Cfg) { c.RateLimitWindow = time.Millisecond }},
		{"bad redis scheme", func(c *Cfg) { c.RedisURL = "http://localhost:6379" }},
		{"bad proxy", func(c *Cfg) { c.TrustedProxies = []string{"not-an-ip"} }},
		{"bad cidr", func(c *Cfg) { c.TrustedProxies = []string{"10.0.0.0/99"} }},
		{"compression out of range", func(c *Cfg) { c.CompressionLevel = 12 }},
		{"production without metrics auth", func(c *Cfg) { c.Environment = "production" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			assert.Error(t, Validate(&c))
		})
	}
}
