package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/drywaters/tasbih/internal/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Port             string        `mapstructure:"port" validate:"required,numeric"`
	ImagesDir        string        `mapstructure:"images_dir" validate:"required"`
	LogLevel         string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat        string        `mapstructure:"log_format" validate:"oneof=text json"`
	AccessKeyHash    string        `mapstructure:"access_key_hash" validate:"omitempty,startswith=$2"`
	SecureCookies    bool          `mapstructure:"secure_cookies"`
	SessionTTL       time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
	AutoplayInterval time.Duration `mapstructure:"autoplay_interval" validate:"gte=1s"`
}

// LoginRequired reports whether an access key protects the counter
func (c *Config) LoginRequired() bool {
	return c.AccessKeyHash != ""
}

// Map of config keys to their env var names
var envBindings = map[string]string{
	"port":              "PORT",
	"images_dir":        "IMAGES_DIR",
	"log_level":         "LOG_LEVEL",
	"log_format":        "LOG_FORMAT",
	"access_key_hash":   "ACCESS_KEY_HASH",
	"secure_cookies":    "SECURE_COOKIES",
	"session_ttl":       "SESSION_TTL",
	"autoplay_interval": "AUTOPLAY_INTERVAL",
}

// Load reads configuration from environment variables, an optional .env
// file and an optional tasbih.yaml in the working directory.
// Supports _FILE suffix pattern for reading secrets from files (Docker Swarm style)
func Load() (*Config, error) {
	// Real environment wins over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Set defaults
	v.SetDefault("port", "4500")
	v.SetDefault("images_dir", "images")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("secure_cookies", "false")
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("autoplay_interval", "5s")

	v.SetConfigName("tasbih")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables
	v.AutomaticEnv()
	for key, envVar := range envBindings {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("failed to bind env var %s: %w", envVar, err)
		}
	}

	cfg := &Config{}

	// Load each config value, checking for _FILE variants first
	cfg.Port = getConfigValue(v, "port", "PORT")
	cfg.ImagesDir = getConfigValue(v, "images_dir", "IMAGES_DIR")
	cfg.LogLevel = strings.ToLower(getConfigValue(v, "log_level", "LOG_LEVEL"))
	cfg.LogFormat = strings.ToLower(getConfigValue(v, "log_format", "LOG_FORMAT"))
	cfg.AccessKeyHash = getConfigValue(v, "access_key_hash", "ACCESS_KEY_HASH")

	var err error
	if cfg.SecureCookies, err = strconv.ParseBool(getConfigValue(v, "secure_cookies", "SECURE_COOKIES")); err != nil {
		return nil, fmt.Errorf("invalid SECURE_COOKIES: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(getConfigValue(v, "session_ttl", "SESSION_TTL")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.AutoplayInterval, err = time.ParseDuration(getConfigValue(v, "autoplay_interval", "AUTOPLAY_INTERVAL")); err != nil {
		return nil, fmt.Errorf("invalid AUTOPLAY_INTERVAL: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// getConfigValue checks for FOO_FILE env var first, reads from file if exists,
// otherwise falls back to FOO env var
func getConfigValue(v *viper.Viper, key, envVar string) string {
	// Check for _FILE variant first
	fileEnvVar := envVar + "_FILE"
	if filePath := os.Getenv(fileEnvVar); filePath != "" {
		if data, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	// Fall back to regular env var via viper
	return strings.TrimSpace(v.GetString(key))
}
