package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"items-api/validation"
)

// Config holds all application settings. Every value has a default and can
// be overridden from a YAML file named by CONFIG_FILE or from environment
// variables, which win.
type Config struct {
	Port       int             `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Framework  string          `mapstructure:"framework" validate:"required"`
	Env        string          `mapstructure:"app_env" validate:"required,oneof=development production test"`
	LogLevel   string          `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	CORSOrigin string          `mapstructure:"cors_origin" validate:"required"`
	TrustProxy bool            `mapstructure:"trust_proxy"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Storage    StorageConfig   `mapstructure:"storage"`
	Mongo      MongoConfig     `mapstructure:"mongo"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Auth       AuthConfig      `mapstructure:"auth"`
}

type RateLimitConfig struct {
	WindowMS    int    `mapstructure:"window_ms" validate:"gt=0"`
	MaxRequests int    `mapstructure:"max_requests" validate:"gt=0"`
	Store       string `mapstructure:"store" validate:"oneof=memory redis"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory mongo"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	CacheItems bool          `mapstructure:"cache_items"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

type AuthConfig struct {
	Mode      string `mapstructure:"mode" validate:"oneof=none jwt apikey"`
	JWTSecret string `mapstructure:"jwt_secret"`
	APIKey    string `mapstructure:"api_key"`
}

// Window returns the rate limit window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowMS) * time.Millisecond
}

// LoggingEnabled reports whether the request logger should run.
func (c *Config) LoggingEnabled() bool {
	return c.Env != "test"
}

// CacheEnabled reports whether item reads go through the Redis cache.
func (c *Config) CacheEnabled() bool {
	return c.Redis.CacheItems
}

// RedisEnabled reports whether any component needs a Redis connection.
func (c *Config) RedisEnabled() bool {
	return c.CacheEnabled() || c.RateLimit.Store == "redis"
}

var envBindings = []struct {
	key    string
	envVar string
}{
	{"port", "PORT"},
	{"framework", "FRAMEWORK"},
	{"app_env", "APP_ENV"},
	{"log_level", "LOG_LEVEL"},
	{"trust_proxy", "TRUST_PROXY"},
	{"cors_origin", "CORS_ORIGIN"},
	{"rate_limit.window_ms", "RATE_LIMIT_WINDOW_MS"},
	{"rate_limit.max_requests", "RATE_LIMIT_MAX_REQUESTS"},
	{"rate_limit.store", "RATE_LIMIT_STORE"},
	{"storage.driver", "STORAGE_DRIVER"},
	{"mongo.uri", "MONGO_URI"},
	{"mongo.database", "MONGO_DATABASE"},
	{"mongo.collection", "MONGO_COLLECTION"},
	{"redis.addr", "REDIS_ADDR"},
	{"redis.password", "REDIS_PASSWORD"},
	{"redis.cache_items", "REDIS_CACHE_ITEMS"},
	{"redis.cache_ttl", "REDIS_CACHE_TTL"},
	{"auth.mode", "AUTH_MODE"},
	{"auth.jwt_secret", "JWT_SECRET"},
	{"auth.api_key", "API_KEY"},
	{"config_file", "CONFIG_FILE"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 3000)
	v.SetDefault("framework", "mux")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origin", "*")
	v.SetDefault("trust_proxy", false)
	v.SetDefault("rate_limit.window_ms", 15*60*1000)
	v.SetDefault("rate_limit.max_requests", 100)
	v.SetDefault("rate_limit.store", "memory")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "itemsdb")
	v.SetDefault("mongo.collection", "items")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.cache_items", false)
	v.SetDefault("redis.cache_ttl", "5m")
	v.SetDefault("auth.mode", "none")
	v.SetDefault("auth.jwt_secret", "change-me-change-me-change-me-32")
	v.SetDefault("auth.api_key", "change-me")
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", b.envVar, err)
		}
	}

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.Framework = strings.ToLower(strings.TrimSpace(cfg.Framework))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the settings that depend on each other.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var errs []error
	if c.Storage.Driver == "mongo" && (c.Mongo.URI == "" || c.Mongo.Database == "" || c.Mongo.Collection == "") {
		errs = append(errs, errors.New("mongo storage needs MONGO_URI, MONGO_DATABASE and MONGO_COLLECTION"))
	}
	if c.RateLimit.Store == "redis" && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis rate limiting needs REDIS_ADDR"))
	}
	if c.Redis.CacheItems && c.Redis.Addr == "" {
		errs = append(errs, errors.New("item caching needs REDIS_ADDR"))
	}
	// Memory-store ids restart on every boot, so cached entries would outlive
	// the items they describe.
	if c.Redis.CacheItems && c.Storage.Driver != "mongo" {
		errs = append(errs, errors.New("item caching needs mongo storage"))
	}
	if c.Auth.Mode == "jwt" && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	if c.Auth.Mode == "apikey" && c.Auth.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required for apikey auth"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
