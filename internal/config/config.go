package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"

	RemoteBackendPostgres = "postgres"
	RemoteBackendMemory   = "memory"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// activity sync
	CacheTTLRaw     string        `toml:"cache_ttl"`
	SyncIntervalRaw string        `toml:"sync_interval"`
	CacheTTL        time.Duration `toml:"-"`
	SyncInterval    time.Duration `toml:"-"`

	// local activity cache
	CacheBackend    string `toml:"cache_backend"`
	CacheSQLitePath string `toml:"cache_sqlite_path"`
	CacheRedisKey   string `toml:"cache_redis_key"`

	// remote aggregates
	RemoteBackend  string `toml:"remote_backend"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// history
	HistoryCacheSizeMB int           `toml:"history_cache_size_mb"`
	HistoryCacheTTLRaw string        `toml:"history_cache_ttl"`
	HistoryCacheTTL    time.Duration `toml:"-"`

	// sensor ingestion
	ReadingsRateLimitPerMin int `toml:"readings_rate_limit_per_min"`

	// flush events
	KafkaEnabled    bool     `toml:"kafka_enabled"`
	KafkaBrokers    []string `toml:"kafka_brokers"`
	KafkaFlushTopic string   `toml:"kafka_flush_topic"`

	// identity
	JWTIssuer string `toml:"jwt_issuer"`

	// http
	CorsAllowedOrigins []string `toml:"cors_allowed_origins"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

type Toml struct {
	Development *Config
	Production  *Config
	Test        *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "test", "testing":
		cfg = t.Test
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the config section for env,
// with defaults applied and durations parsed.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}
	return fromToml(&t, env)
}

// Parse does the same as Load, for config content already in memory.
func Parse(env, content string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(content, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return fromToml(&t, env)
}

func fromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(env)
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	var err error
	if c.CacheTTL, err = parseDuration(c.CacheTTLRaw, 24*time.Hour); err != nil {
		return fmt.Errorf("cache_ttl: %w", err)
	}
	if c.SyncInterval, err = parseDuration(c.SyncIntervalRaw, 30*time.Second); err != nil {
		return fmt.Errorf("sync_interval: %w", err)
	}
	if c.HistoryCacheTTL, err = parseDuration(c.HistoryCacheTTLRaw, 10*time.Minute); err != nil {
		return fmt.Errorf("history_cache_ttl: %w", err)
	}

	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9100
	}
	if c.CacheBackend == "" {
		c.CacheBackend = CacheBackendSQLite
	}
	if c.CacheSQLitePath == "" {
		c.CacheSQLitePath = "./data/activity_cache.db"
	}
	if c.CacheRedisKey == "" {
		c.CacheRedisKey = "fitsync||daily-activity"
	}
	if c.RemoteBackend == "" {
		c.RemoteBackend = RemoteBackendPostgres
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.HistoryCacheSizeMB == 0 {
		c.HistoryCacheSizeMB = 8
	}
	if c.ReadingsRateLimitPerMin == 0 {
		c.ReadingsRateLimitPerMin = 600
	}
	if c.KafkaFlushTopic == "" {
		c.KafkaFlushTopic = "activity.flushed"
	}
	if c.JWTIssuer == "" {
		c.JWTIssuer = "fitsync.identity"
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.CacheBackend {
	case CacheBackendSQLite, CacheBackendRedis, CacheBackendMemory:
	default:
		return fmt.Errorf("unknown cache backend: %s", c.CacheBackend)
	}
	switch c.RemoteBackend {
	case RemoteBackendPostgres, RemoteBackendMemory:
	default:
		return fmt.Errorf("unknown remote backend: %s", c.RemoteBackend)
	}
	if c.CacheTTL <= 0 {
		return errors.New("cache ttl must be positive")
	}
	if c.SyncInterval <= 0 {
		return errors.New("sync interval must be positive")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("kafka enabled, but no brokers set")
	}
	if c.RedisHost == "" && (c.CacheBackend == CacheBackendRedis) {
		return errors.New("redis cache backend requires redis_host")
	}
	return nil
}

// RedisEnabled tells whether a redis client is needed at all.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	return time.ParseDuration(raw)
}
