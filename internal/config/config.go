package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Session   SessionConfig
	Dashboard DashboardConfig
	Chart     ChartConfig
	Log       LogConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// UploadConfig bounds uploaded workbooks.
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// SessionConfig controls dataset lifetime.
type SessionConfig struct {
	TTL time.Duration
}

// DashboardConfig names the columns the dashboard looks for.
type DashboardConfig struct {
	PreviewRows   int      `mapstructure:"preview_rows"`
	MaxTableRows  int      `mapstructure:"max_table_rows"`
	RegionColumn  string   `mapstructure:"region_column"`
	VendorColumn  string   `mapstructure:"vendor_column"`
	MetricColumns []string `mapstructure:"metric_columns"`
}

// ChartConfig holds rendered image size.
type ChartConfig struct {
	Width  int
	Height int
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string
	Development bool
}

// Load reads configuration from file and env. Env var overrides use prefix DASHBOARD_.
// The config file is taken from DASHBOARD_CONFIG, or dashboard.yaml in the
// working directory when present.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	cfgPath := os.Getenv("DASHBOARD_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("dashboard")
	}

	v.SetEnvPrefix("DASHBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	// PORT is honoured for compatibility with hosting platforms.
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DASHBOARD_SERVER_PORT") == "" {
		v.Set("server.port", port)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Default returns the built-in configuration
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8001")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("upload.max_bytes", 32<<20)
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("dashboard.preview_rows", 5)
	v.SetDefault("dashboard.max_table_rows", 0)
	v.SetDefault("dashboard.region_column", "REGION")
	v.SetDefault("dashboard.vendor_column", "ID")
	v.SetDefault("dashboard.metric_columns", []string{"UNITS SOLD", "TOTAL SALES", "AVERAGE SALES"})
	v.SetDefault("chart.width", 800)
	v.SetDefault("chart.height", 450)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port must be set")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	if c.Dashboard.PreviewRows <= 0 {
		return fmt.Errorf("dashboard.preview_rows must be positive, got %d", c.Dashboard.PreviewRows)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	return nil
}
