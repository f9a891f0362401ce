package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Postgres struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		SSLMode      string        `yaml:"ssl_mode"`
		MaxOpenConns int           `yaml:"max_open_conns"`
		MaxIdleConns int           `yaml:"max_idle_conns"`
		ConnLifetime time.Duration `yaml:"conn_lifetime"`
	} `yaml:"postgres"`
	ML struct {
		Metrics          []string      `yaml:"metrics"`
		ForecastHorizons []int         `yaml:"forecast_horizons"`
		HoldoutDays      int           `yaml:"holdout_days"`
		LookbackDays     int           `yaml:"lookback_days"`
		Contamination    float64       `yaml:"contamination"`
		ModelVersion     string        `yaml:"model_version"`
		CodeVersion      string        `yaml:"code_version"`
		CacheTTL         time.Duration `yaml:"cache_ttl"`
	} `yaml:"ml"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Alerts struct {
		Enabled     bool     `yaml:"enabled"`
		Brokers     []string `yaml:"brokers"`
		Topic       string   `yaml:"topic"`
		MinSeverity string   `yaml:"min_severity"`
		Compression string   `yaml:"compression"`
		Acks        int      `yaml:"required_acks"`
	} `yaml:"alerts"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PG_HOST"); v != "" {
		c.Postgres.Host = v
	}
	if v := os.Getenv("PG_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Postgres.Port = p
		}
	}
	if v := os.Getenv("PG_DATABASE"); v != "" {
		c.Postgres.Database = v
	}
	if v := os.Getenv("PG_USER"); v != "" {
		c.Postgres.User = v
	}
	if v := os.Getenv("PG_PASSWORD"); v != "" {
		c.Postgres.Password = v
	}
	if v := os.Getenv("KPI_METRICS"); v != "" {
		c.ML.Metrics = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Alerts.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if len(c.ML.Metrics) == 0 {
		c.ML.Metrics = []string{
			"total_revenue", "total_orders", "unique_customers",
			"avg_order_value", "total_items_sold",
		}
	}
	if len(c.ML.ForecastHorizons) == 0 {
		c.ML.ForecastHorizons = []int{7, 30}
	}
	if c.ML.HoldoutDays == 0 {
		c.ML.HoldoutDays = 14
	}
	if c.ML.LookbackDays == 0 {
		c.ML.LookbackDays = 90
	}
	if c.ML.Contamination == 0 {
		c.ML.Contamination = 0.1
	}
	if c.ML.ModelVersion == "" {
		c.ML.ModelVersion = "2.0.0"
	}
	if c.ML.CodeVersion == "" {
		c.ML.CodeVersion = "2024.01.1"
	}
	if c.Alerts.MinSeverity == "" {
		c.Alerts.MinSeverity = "high"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Postgres.Host == "" {
		return fmt.Errorf("postgres.host is required")
	}
	if c.Postgres.Database == "" {
		return fmt.Errorf("postgres.database is required")
	}
	if c.ML.Contamination < 0 || c.ML.Contamination > 0.5 {
		return fmt.Errorf("ml.contamination must be in (0, 0.5], got %v", c.ML.Contamination)
	}
	for _, h := range c.ML.ForecastHorizons {
		if h <= 0 {
			return fmt.Errorf("ml.forecast_horizons must be positive, got %d", h)
		}
	}
	if c.Alerts.Enabled && len(c.Alerts.Brokers) == 0 {
		return fmt.Errorf("alerts.brokers cannot be empty when alerts are enabled")
	}
	switch c.Alerts.MinSeverity {
	case "low", "medium", "high", "critical":
	default:
		return fmt.Errorf("alerts.min_severity must be one of low, medium, high, critical")
	}
	return nil
}
