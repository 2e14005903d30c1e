package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application. It is read once at
// startup and passed explicitly to the components that need it.
type Config struct {
	Database DatabaseConfig
	API      APIConfig
	App      AppConfig
	RabbitMQ RabbitMQConfig
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	Host           string
	Port           int
	Name           string
	User           string
	Password       string
	SSLMode        string
	ConnectTimeout time.Duration
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port string
}

// AppConfig describes the running build for the health document.
type AppConfig struct {
	Version     string
	Environment string
}

// RabbitMQConfig contains event publishing settings. An empty URL disables
// publishing.
type RabbitMQConfig struct {
	URL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("DB_CONNECT_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "db-primary-service"),
			Port:           port,
			Name:           getEnv("DB_NAME", "appdb"),
			User:           getEnv("DB_USER", "appuser"),
			Password:       getEnv("DB_PASSWORD", "apppassword"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ConnectTimeout: timeout,
		},
		API: APIConfig{
			Port: getEnv("API_PORT", "8080"),
		},
		App: AppConfig{
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "production"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: getEnv("RABBITMQ_URL", ""),
		},
	}, nil
}

// DSN renders the lib/pq keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		quote(d.Host), d.Port, quote(d.Name), quote(d.User), quote(d.Password), quote(d.SSLMode))
	if secs := int(d.ConnectTimeout / time.Second); secs > 0 {
		dsn += fmt.Sprintf(" connect_timeout=%d", secs)
	}
	return dsn
}

// ConnectionInfo returns a credential-free summary such as
// "appuser@db-primary-service:5432/appdb".
func (d DatabaseConfig) ConnectionInfo() string {
	return fmt.Sprintf("%s@%s:%d/%s", d.User, d.Host, d.Port, d.Name)
}

// String returns a string representation of the config (the password is masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, API port: %s, env: %s, events: %t, password: ***}",
		c.Database.ConnectionInfo(), c.API.Port, c.App.Environment, c.RabbitMQ.URL != "")
}

// quote escapes a value for a lib/pq keyword/value DSN.
func quote(v string) string {
	if v == "" {
		return "''"
	}
	needs := false
	out := make([]rune, 0, len(v)+2)
	for _, r := range v {
		switch r {
		case '\'', '\\':
			out = append(out, '\\', r)
			needs = true
		case ' ', '\t', '\n':
			out = append(out, r)
			needs = true
		default:
			out = append(out, r)
		}
	}
	if !needs {
		return v
	}
	return "'" + string(out) + "'"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return n, nil
}

// getEnvDuration accepts Go durations ("5s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}
