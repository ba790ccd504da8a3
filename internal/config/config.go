package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// APIKey is a hardcoded credential shipped in the binary. No route reads it.
const APIKey = "12345-SECRET-KEY"

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	HTTP     HTTPConfig
	Log      LogConfig
	Shell    ShellConfig
	APIKey   string
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Address string // listen address (e.g., "0.0.0.0:5000")
	Debug   bool   // gin debug mode; stack traces are returned to clients
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

// ShellConfig names the interpreter /ping runs its command line under.
type ShellConfig struct {
	Path string
}

// Load reads a .env file if one exists, then builds the config from
// environment variables with development defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}
	debug, err := getEnvBool("DEBUG", true)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "users.db"),
		},
		HTTP: HTTPConfig{
			Address: getEnv("HTTP_ADDRESS", "0.0.0.0:5000"),
			Debug:   debug,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Shell: ShellConfig{
			Path: getEnv("SHELL_PATH", "sh"),
		},
		APIKey: APIKey,
	}
	return cfg, nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvBool retrieves an environment variable as a boolean with a default fallback.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		return b, nil
	}
	return defaultVal, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, Debug: %t, Log: %s/%s, Shell: %s, APIKey: *** (masked) ***}",
		c.Database.Path, c.HTTP.Address, c.HTTP.Debug, c.Log.Level, c.Log.Format, c.Shell.Path)
}
