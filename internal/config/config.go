package config

import (
	"errors"
	"os"
	"time"

	"worklog/pkg/config"
)

// OutboxConfig worker 配置
type OutboxConfig struct {
	Interval   time.Duration `yaml:"interval"`
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
	Queue      string        `yaml:"queue"`
	DedupTTL   time.Duration `yaml:"dedup_ttl"`
}

type Config struct {
	Env       string                 `yaml:"env"`
	DB        config.DBConfig        `yaml:"db"`
	JWT       config.JWTConfig       `yaml:"jwt"`
	Server    config.ServerConfig    `yaml:"server"`
	MQ        config.MQConfig        `yaml:"mq"`
	Redis     config.RedisConfig     `yaml:"redis"`
	RateLimit config.RateLimitConfig `yaml:"rate_limit"`
	Otel      config.OtelConfig      `yaml:"otel"`
	Log       config.LogConfig       `yaml:"log"`
	Outbox    OutboxConfig           `yaml:"outbox"`
}

// Default is the configuration before config.yaml is applied.
func Default() Config {
	return Config{
		DB: config.DBConfig{
			Host:               "localhost",
			Port:               5432,
			User:               "postgres",
			Name:               "worklog",
			MaxConns:           10,
			SlowQueryThreshold: 200 * time.Millisecond,
			QueryTimeout:       10 * time.Second,
		},
		JWT: config.JWTConfig{ExpiresIn: 7 * 24 * time.Hour},
		Server: config.ServerConfig{
			Port:         ":5000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Redis:     config.RedisConfig{Addr: "localhost:6379", StatsTTL: 5 * time.Minute},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 5, Burst: 10},
		Otel:      config.OtelConfig{ServiceName: "worklog", SampleRatio: 1},
		Log:       config.LogConfig{Level: "info"},
		Outbox: OutboxConfig{
			Interval:   2 * time.Second,
			BatchSize:  100,
			MaxRetries: 5,
			Queue:      "worklog.activity",
			DedupTTL:   24 * time.Hour,
		},
	}
}

// Load reads path (CONFIG_PATH, default config.yaml) plus its env overlay,
// then applies environment overrides.
func Load() (*Config, error) {
	path := config.GetEnv("CONFIG_PATH", "config.yaml")
	env := config.GetConfigEnv()

	cfg := Default()
	if err := config.LoadYAML(path, env, &cfg); err != nil {
		// a missing file is fine, env vars can carry everything
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	cfg.Env = env

	// 环境变量覆盖
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideOtelFromEnv(&cfg.Otel)
	config.OverrideLogFromEnv(&cfg.Log)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the services cannot start with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret (or JWT_SECRET) is required")
	}
	if c.DB.URL == "" && c.DB.Host == "" {
		return errors.New("db.host or db.url (DATABASE_URL) is required")
	}
	return nil
}
