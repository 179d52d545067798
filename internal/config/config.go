package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix is the prefix for all environment overrides (SALES_SERVER_PORT...).
const envPrefix = "SALES"

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Archives  ArchivesConfig  `yaml:"archives" envconfig:"ARCHIVES"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Reports   ReportsConfig   `yaml:"reports" envconfig:"REPORTS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/salespulse.log"`
}

// ArchivesConfig locates the two source archives. Part1 rows always precede
// Part2 rows in the unified table.
type ArchivesConfig struct {
	Part1 string `yaml:"part1" envconfig:"PART1" default:"data/archives/part_1.zip"`
	Part2 string `yaml:"part2" envconfig:"PART2" default:"data/archives/part_2.zip"`
}

// AnalyticsConfig tunes the ranking sizes and rolling window of the views.
type AnalyticsConfig struct {
	TopFamilies   int `yaml:"top_families" envconfig:"TOP_FAMILIES" default:"10"`
	TopStores     int `yaml:"top_stores" envconfig:"TOP_STORES" default:"10"`
	TopStates     int `yaml:"top_states" envconfig:"TOP_STATES" default:"15"`
	RollingWindow int `yaml:"rolling_window" envconfig:"ROLLING_WINDOW" default:"14"`
}

// SecurityConfig contains the API rate limit settings.
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// ReportsConfig locates the output directory of cmd/report.
type ReportsConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR" default:"data/reports"`
}

// Load loads configuration from environment variables, merged over an
// optional YAML file (env wins). The file defaults to config.yaml in the
// working directory and can be moved with SALES_CONFIG_FILE.
func Load() (*Config, error) {
	var cfg Config

	configFile := os.Getenv(envPrefix + "_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Archives.Part1 == "" || c.Archives.Part2 == "" {
		return fmt.Errorf("both archive paths must be set")
	}
	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive when enabled")
	}
	return nil
}

// EnsureReportDir creates the reports directory when missing.
func (c *Config) EnsureReportDir() error {
	if err := os.MkdirAll(c.Reports.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create reports directory %s: %w", c.Reports.Dir, err)
	}
	return nil
}

// ReportPath resolves a file name inside the reports directory.
func (c *Config) ReportPath(name string) string {
	return filepath.Join(c.Reports.Dir, name)
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
