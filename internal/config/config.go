package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host        string
	Port        int
	Environment string
	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`
	// sentry
	SentryEnabled bool `toml:"sentry_enabled"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// prometheus metrics server
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// login abuse prevention
	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`
	// movie details in-process cache size, in bytes
	MoviesCacheSize int `toml:"movies_cache_size"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func Load(env, configPath string) (*Config, error) {
	var tomlCfg Toml
	if _, err := toml.DecodeFile(configPath, &tomlCfg); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", configPath, err)
	}

	cfg, err := tomlCfg.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.Environment = env
	return cfg, nil
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// IsProduction controls, among other things, the Secure attribute
// of the admin session cookie.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "prod" || env == "production"
}
