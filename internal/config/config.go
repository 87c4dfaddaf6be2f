package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Registry RegistryConfig `mapstructure:"registry"`
	FormsAPI FormsAPIConfig `mapstructure:"forms_api"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Sync     SyncConfig     `mapstructure:"sync"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// MigrationsDir overrides the embedded migrations when set
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// RegistryConfig points at an optional YAML schema table merged over the built-in one
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// FormsAPIConfig holds the self-service forms API settings
type FormsAPIConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Token         string        `mapstructure:"token"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ConfirmPath   string        `mapstructure:"confirm_path"`
	RejectPath    string        `mapstructure:"reject_path"`
	FetchAttempts int           `mapstructure:"fetch_attempts"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SyncConfig controls the background pull of submissions from the forms API
type SyncConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval"`
	FormTypes    []string      `mapstructure:"form_types"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// Load loads configuration from file and environment variables. An empty
// configPath uses defaults and the environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Database defaults
	v.SetDefault("database.path", "data/portal.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	v.SetDefault("registry.path", "")

	// Forms API defaults
	v.SetDefault("forms_api.base_url", "")
	v.SetDefault("forms_api.token", "")
	v.SetDefault("forms_api.timeout", 15*time.Second)
	v.SetDefault("forms_api.confirm_path", "confirm-problem-solved")
	v.SetDefault("forms_api.reject_path", "reject-resolution")
	v.SetDefault("forms_api.fetch_attempts", 3)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Sync defaults
	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.interval", 5*time.Minute)
	v.SetDefault("sync.form_types", []string{})
	v.SetDefault("sync.fetch_timeout", 30*time.Second)
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// Credentials keep their conventional unprefixed names
	v.BindEnv("forms_api.base_url", "PORTAL_FORMS_API_BASE_URL", "FORMS_API_BASE_URL")
	v.BindEnv("forms_api.token", "PORTAL_FORMS_API_TOKEN", "FORMS_API_TOKEN")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}

	if c.FormsAPI.BaseURL == "" {
		return fmt.Errorf("forms_api.base_url is required")
	}
	if !strings.HasPrefix(c.FormsAPI.BaseURL, "http://") && !strings.HasPrefix(c.FormsAPI.BaseURL, "https://") {
		return fmt.Errorf("forms_api.base_url must be an http(s) URL")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}

	if c.Sync.Enabled {
		if len(c.Sync.FormTypes) == 0 {
			return fmt.Errorf("sync.form_types is required when sync is enabled")
		}
		if c.Sync.Interval < time.Second {
			return fmt.Errorf("sync.interval must be at least 1s")
		}
	}

	return nil
}
