package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AuthConfig holds service-to-service authentication configuration
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PricingConfig selects the base prices used by the derivation engine.
// Valid values for both fields are "gross_price" and "net_price".
type PricingConfig struct {
	DiscountBasis    string `mapstructure:"discount_basis"`
	GrossMarginBasis string `mapstructure:"gross_margin_basis"`
}

// SessionConfig holds session lifecycle configuration
type SessionConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxIdle       time.Duration `mapstructure:"max_idle"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// StorageConfig holds proposal archive configuration
type StorageConfig struct {
	Type     string `mapstructure:"type"`
	BasePath string `mapstructure:"base_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Load .env file
	if err := loadEnvFile(); err != nil {
		// .env is optional, log but don't fail
		log.Warn().Err(err).Msg("Warning: .env file not loaded")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvPrefix("QUOTE_SERVICE")

	// Bind env keys for nested config
	bindEnvVars(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// loadEnvFile loads a .env file from the usual locations
func loadEnvFile() error {
	envPaths := []string{
		".",
		"./config",
	}

	for _, path := range envPaths {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			if err := loadDotEnvFile(envFile); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			// Remove quotes if present
			value = strings.Trim(value, "\"'")
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")

	// Auth
	v.BindEnv("auth.api_key", "QUOTE_SERVICE_API_KEY")

	// Pricing
	v.BindEnv("pricing.discount_basis", "DISCOUNT_BASIS")
	v.BindEnv("pricing.gross_margin_basis", "GROSS_MARGIN_BASIS")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")

	// Storage
	v.BindEnv("storage.base_path", "STORAGE_PATH")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Pricing defaults
	v.SetDefault("pricing.discount_basis", "gross_price")
	v.SetDefault("pricing.gross_margin_basis", "gross_price")

	// Session defaults
	v.SetDefault("session.sweep_interval", 5*time.Minute)
	v.SetDefault("session.max_idle", 2*time.Hour)

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst_size", 20)

	// Storage defaults
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_path", "./data/proposals")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}
