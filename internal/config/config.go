package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig points at the external REST API that owns posts, users,
// subscriptions and chat.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

const defaultBackendTimeout = 15 * time.Second

// RequestTimeout is Timeout, or 15s when Timeout is not positive.
func (c BackendConfig) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultBackendTimeout
	}
	return c.Timeout
}

type TokenConfig struct {
	// Backend selects where the bearer token is persisted: "file", "redis" or "memory".
	Backend string
	Key     string
	Path    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FeedConfig struct {
	RefreshCron string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Backend          BackendConfig
	Tokens           TokenConfig
	Redis            RedisConfig
	Feed             FeedConfig
	RateLimit        RateLimitConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	// GRACE_BACKEND_BASEURL overrides backend.baseurl.
	v.SetEnvPrefix("GRACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.baseurl must not be empty")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("backend.baseurl", "http://localhost:3001/api")
	v.SetDefault("backend.timeout", "15s")

	v.SetDefault("tokens.backend", "file")
	v.SetDefault("tokens.key", "token")
	v.SetDefault("tokens.path", ".gracemobility/token")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("feed.refreshcron", "0 */5 * * * *")

	v.SetDefault("ratelimit.requests", 20)
	v.SetDefault("ratelimit.window", "1m")

	// Unset keys are invisible to AutomaticEnv, so every key needs a default.
	v.SetDefault("allowcorsorigins", "")
}
