package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"improvehub/pkg/config"
)

type StoreConfig struct {
	ProjectsTable   string        `yaml:"projects_table"`
	DemandsTable    string        `yaml:"demands_table"`
	ProfilesTable   string        `yaml:"profiles_table"`
	UsernameColumn  string        `yaml:"username_column"`
	PasswordColumn  string        `yaml:"password_column"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type WebhookConfig struct {
	// Transport is http, amqp or none.
	Transport    string        `yaml:"transport"`
	LifecycleURL string        `yaml:"lifecycle_url"`
	IntakeURL    string        `yaml:"intake_url"`
	Secret       string        `yaml:"secret"`
	Timeout      time.Duration `yaml:"timeout"`

	BreakerFailures int           `yaml:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
}

type Config struct {
	Server  config.ServerConfig `yaml:"server"`
	DB      config.DBConfig     `yaml:"db"`
	MQ      config.MQConfig     `yaml:"mq"`
	Redis   config.RedisConfig  `yaml:"redis"`
	JWT     config.JWTConfig    `yaml:"jwt"`
	Otel    config.OtelConfig   `yaml:"otel"`
	Store   StoreConfig         `yaml:"store"`
	Webhook WebhookConfig       `yaml:"webhook"`
}

// Load reads config/<env>.yaml over config/base.yaml, then applies
// environment overrides and defaults.
func Load(env, dir string) (*Config, error) {
	var cfg Config
	if err := config.Load(env, dir, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideOtelFromEnv(&cfg.Otel)
	overrideFromEnv(&cfg)

	cfg.applyDefaults()
	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if url := os.Getenv("WEBHOOK_LIFECYCLE_URL"); url != "" {
		cfg.Webhook.LifecycleURL = url
	}
	if url := os.Getenv("WEBHOOK_INTAKE_URL"); url != "" {
		cfg.Webhook.IntakeURL = url
	}
	if secret := os.Getenv("WEBHOOK_SECRET"); secret != "" {
		cfg.Webhook.Secret = secret
	}
	if transport := os.Getenv("WEBHOOK_TRANSPORT"); transport != "" {
		cfg.Webhook.Transport = transport
	}
	if interval := os.Getenv("STORE_REFRESH_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Store.RefreshInterval = d
		}
	}
	if table := os.Getenv("STORE_PROJECTS_TABLE"); table != "" {
		cfg.Store.ProjectsTable = table
	}
	if table := os.Getenv("STORE_DEMANDS_TABLE"); table != "" {
		cfg.Store.DemandsTable = table
	}
	if n := os.Getenv("WEBHOOK_BREAKER_FAILURES"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			cfg.Webhook.BreakerFailures = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Store.ProjectsTable == "" {
		c.Store.ProjectsTable = "projetos"
	}
	if c.Store.DemandsTable == "" {
		c.Store.DemandsTable = "demandas"
	}
	if c.Store.ProfilesTable == "" {
		c.Store.ProfilesTable = "profiles"
	}
	if c.Store.UsernameColumn == "" {
		c.Store.UsernameColumn = "username"
	}
	if c.Store.PasswordColumn == "" {
		c.Store.PasswordColumn = "password"
	}
	if c.Webhook.Transport == "" {
		c.Webhook.Transport = "http"
	}
	if c.Webhook.Timeout <= 0 {
		c.Webhook.Timeout = 10 * time.Second
	}
	if c.Webhook.BreakerFailures <= 0 {
		c.Webhook.BreakerFailures = 5
	}
	if c.Webhook.BreakerTimeout <= 0 {
		c.Webhook.BreakerTimeout = 30 * time.Second
	}
	if c.JWT.TTL <= 0 {
		c.JWT.TTL = 24 * time.Hour
	}
}
