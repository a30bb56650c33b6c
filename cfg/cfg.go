package cfg

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Secret struct {
	value []byte
}

func NewSecret(s string) Secret {
	return Secret{value: []byte(s)}
}
func (s Secret) Value() string {
	return string(s.value)
}
func (s *Secret) UnmarshalText(text []byte) error {
	s.value = append([]byte(nil), text...)
	return nil
}
func (s Secret) Wipe() {
	for i := range s.value {
		s.value[i] = 0
	}
}
func (s Secret) String() string {
	return "***REDACTED***"
}

type Cfg struct {
	Port             string `env:"PORT" envDefault:"3001"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	MaxContentLength int    `env:"MAX_CONTENT_LENGTH" envDefault:"50000"`
	MaxTitleLength   int    `env:"MAX_TITLE_LENGTH" envDefault:"100"`
	DefaultLanguage  string `env:"DEFAULT_LANGUAGE" envDefault:"plaintext"`
	MaxBodySize      int64  `env:"MAX_BODY_SIZE" envDefault:"10485760"`
	IDRetries        int    `env:"ID_RETRIES" envDefault:"5"`

	RateLimitRequests   int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow     time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitMaxClients int           `env:"RATE_LIMIT_MAX_CLIENTS" envDefault:"10000"`

	RedisURL     string        `env:"REDIS_URL"`
	RedisTimeout time.Duration `env:"REDIS_TIMEOUT" envDefault:"2s"`

	TrustedProxies   []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	AllowedOrigins   []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	CompressionLevel int           `env:"COMPRESSION_LEVEL" envDefault:"5"`
	ContextTimeout   time.Duration `env:"CONTEXT_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	MetricsUser     string `env:"METRICS_USER"`
	MetricsPass     Secret `env:"METRICS_PASS"`
	ProfilerEnabled bool   `env:"PROFILER_ENABLED" envDefault:"false"`
}

// Load reads an optional .env file (ENV_FILE, default ".env") and then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Cfg, error) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
	}
	c := &Cfg{}
	if err := env.Parse(c); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	c.TrustedProxies = trimAll(c.TrustedProxies)
	c.AllowedOrigins = trimAll(c.AllowedOrigins)
	return c, nil
}

func Validate(c *Cfg) error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.New("PORT must be a number")
	}
	if c.MaxContentLength <= 0 {
		return errors.New("MAX_CONTENT_LENGTH must be positive")
	}
	if c.MaxTitleLength < 0 {
		return errors.New("MAX_TITLE_LENGTH cannot be negative")
	}
	if c.DefaultLanguage == "" {
		return errors.New("DEFAULT_LANGUAGE is required")
	}
	if c.MaxBodySize <= 0 {
		return errors.New("MAX_BODY_SIZE must be positive")
	}
	if c.MaxBodySize > 10*1024*1024 {
		return errors.New("MAX_BODY_SIZE cannot exceed 10MB")
	}
	if c.IDRetries < 1 {
		return errors.New("ID_RETRIES must be at least 1")
	}
	if c.RateLimitRequests <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS must be positive")
	}
	if c.RateLimitWindow < time.Second {
		return errors.New("RATE_LIMIT_WINDOW must be at least 1s")
	}
	if c.RateLimitMaxClients <= 0 {
		return errors.New("RATE_LIMIT_MAX_CLIENTS must be positive")
	}
	if c.RedisURL != "" {
		if !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
			return errors.New("REDIS_URL must start with redis:// or rediss://")
		}
	}
	if c.CompressionLevel < 1 || c.CompressionLevel > 9 {
		return errors.New("COMPRESSION_LEVEL must be between 1 and 9")
	}
	if c.ContextTimeout <= 0 {
		return errors.New("CONTEXT_TIMEOUT must be positive")
	}
	for _, proxy := range c.TrustedProxies {
		if strings.Contains(proxy, "/") {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid CIDR in TRUSTED_PROXIES: %s", proxy)
			}
		} else {
			if net.ParseIP(proxy) == nil {
				return fmt.Errorf("invalid IP in TRUSTED_PROXIES: %s", proxy)
			}
		}
	}
	if c.Environment == "production" {
		if c.MetricsUser == "" || c.MetricsPass.Value() == "" {
			return errors.New("METRICS_USER and METRICS_PASS are required in production")
		}
	}
	return nil
}

func (c *Cfg) Wipe() {
	c.MetricsPass.Wipe()
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
