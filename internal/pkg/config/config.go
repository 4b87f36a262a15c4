package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Advisor   AdvisorConfig   `mapstructure:"advisor"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// WeatherConfig covers the forecast and soil-moisture upstreams.
type WeatherConfig struct {
	OpenWeatherKey string `mapstructure:"openweather_key"`
	PowerBaseURL   string `mapstructure:"power_base_url"`
}

// PolicyConfig bounds the accepted plot size. The defaults target
// smallholder parcels; fields outside the range are rejected at creation.
type PolicyConfig struct {
	MinAcres float64 `mapstructure:"min_acres"`
	MaxAcres float64 `mapstructure:"max_acres"`
}

// AdvisorConfig governs re-polling of recommendations whose satellite
// soil moisture has not resolved yet.
type AdvisorConfig struct {
	RetryMinMinutes int `mapstructure:"retry_min_minutes"`
	RetryMaxMinutes int `mapstructure:"retry_max_minutes"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "sinchai")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "sinchai")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("weather.openweather_key", "")
	v.SetDefault("weather.power_base_url", "")
	v.SetDefault("policy.min_acres", 1.0)
	v.SetDefault("policy.max_acres", 5.0)
	v.SetDefault("advisor.retry_min_minutes", 1)
	v.SetDefault("advisor.retry_max_minutes", 10)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "irrigation-advisor")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SINCHAI_DATABASE_HOST → database.host
	v.SetEnvPrefix("SINCHAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Policy.MinAcres <= 0 {
		errs = append(errs, "policy.min_acres must be positive")
	}
	if c.Policy.MaxAcres < c.Policy.MinAcres {
		errs = append(errs, fmt.Sprintf("policy.max_acres (%v) must be >= policy.min_acres (%v)",
			c.Policy.MaxAcres, c.Policy.MinAcres))
	}
	if c.Advisor.RetryMinMinutes < 1 {
		errs = append(errs, "advisor.retry_min_minutes must be at least 1")
	}
	if c.Advisor.RetryMaxMinutes < c.Advisor.RetryMinMinutes {
		errs = append(errs, "advisor.retry_max_minutes must be >= advisor.retry_min_minutes")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
