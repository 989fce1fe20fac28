package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	liststr "causelist/pkg/platform/strings"
)

// Config is the full runtime configuration of the server and CLI.
type Config struct {
	Server  Server
	Backend Backend
	Cache   Cache
	Redis   RedisConfig
	Session Session
	Log     Log
	Tracing Tracing
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Backend describes the cause-list backend the selector talks to.
type Backend struct {
	BaseURL string
	// Timeout bounds every backend call; zero disables it.
	Timeout time.Duration
	// RateLimit is requests per second towards the backend; zero disables it.
	RateLimit       float64
	Burst           int
	BreakerFailures int
	BreakerCooldown time.Duration
}

// Cache configures option-list caching. Redis is used when Redis.URL is set.
type Cache struct {
	TTL  time.Duration
	Size int
}

// RedisConfig mirrors the go-redis options we override.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Session configures per-browser form state held by the UI server.
type Session struct {
	TTL          time.Duration
	MaxSessions  int
	CookieName   string
	SecureCookie bool
}

type Log struct {
	Level  string
	Format string
	// File enables a rotating log file instead of stdout.
	File string
}

type Tracing struct {
	Endpoint    string
	Insecure    bool
	SampleRate  float64
	ServiceName string
}

const envPrefix = "CAUSELIST"

var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.allowed_origins":  "",
	"server.shutdown_timeout": 10 * time.Second,

	"backend.base_url":         "http://localhost:8000",
	"backend.timeout":          30 * time.Second,
	"backend.rate_limit":       0.0,
	"backend.burst":            1,
	"backend.breaker_failures": 5,
	"backend.breaker_cooldown": 30 * time.Second,

	"cache.ttl":  5 * time.Minute,
	"cache.size": 1024,

	"redis.url":            "",
	"redis.pool_size":      10,
	"redis.min_idle_conns": 2,
	"redis.dial_timeout":   5 * time.Second,
	"redis.read_timeout":   3 * time.Second,
	"redis.write_timeout":  3 * time.Second,

	"session.ttl":           30 * time.Minute,
	"session.max_sessions":  10000,
	"session.cookie_name":   "causelist_session",
	"session.secure_cookie": false,

	"log.level":  "info",
	"log.format": "json",
	"log.file":   "",

	"tracing.endpoint":     "",
	"tracing.insecure":     true,
	"tracing.sample_rate":  1.0,
	"tracing.service_name": "causelist",
}

// Load reads defaults, then an optional causelist.yaml from configPath, then
// CAUSELIST_* environment variables (e.g. CAUSELIST_BACKEND_BASE_URL).
func Load(configPath string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigName("causelist")
		v.SetConfigType("yaml")
		v.AddConfigPath(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Server: Server{
			Addr:            v.GetString("server.addr"),
			AllowedOrigins:  liststr.SplitList(v.GetString("server.allowed_origins")),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Backend: Backend{
			BaseURL:         strings.TrimRight(v.GetString("backend.base_url"), "/"),
			Timeout:         v.GetDuration("backend.timeout"),
			RateLimit:       v.GetFloat64("backend.rate_limit"),
			Burst:           v.GetInt("backend.burst"),
			BreakerFailures: v.GetInt("backend.breaker_failures"),
			BreakerCooldown: v.GetDuration("backend.breaker_cooldown"),
		},
		Cache: Cache{
			TTL:  v.GetDuration("cache.ttl"),
			Size: v.GetInt("cache.size"),
		},
		Redis: RedisConfig{
			URL:          v.GetString("redis.url"),
			PoolSize:     v.GetInt("redis.pool_size"),
			MinIdleConns: v.GetInt("redis.min_idle_conns"),
			DialTimeout:  v.GetDuration("redis.dial_timeout"),
			ReadTimeout:  v.GetDuration("redis.read_timeout"),
			WriteTimeout: v.GetDuration("redis.write_timeout"),
		},
		Session: Session{
			TTL:          v.GetDuration("session.ttl"),
			MaxSessions:  v.GetInt("session.max_sessions"),
			CookieName:   v.GetString("session.cookie_name"),
			SecureCookie: v.GetBool("session.secure_cookie"),
		},
		Log: Log{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
			File:   v.GetString("log.file"),
		},
		Tracing: Tracing{
			Endpoint:    v.GetString("tracing.endpoint"),
			Insecure:    v.GetBool("tracing.insecure"),
			SampleRate:  v.GetFloat64("tracing.sample_rate"),
			ServiceName: v.GetString("tracing.service_name"),
		},
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("config: backend.base_url is required")
	}
	if c.Backend.RateLimit < 0 {
		return errors.New("config: backend.rate_limit must not be negative")
	}
	if c.Cache.Size <= 0 {
		return errors.New("config: cache.size must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		return errors.New("config: session.max_sessions must be positive")
	}
	return nil
}
