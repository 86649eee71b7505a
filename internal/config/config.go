package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Quote    QuoteConfig
	Session  SessionConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds the session store connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds Kafka configuration for the ledger event stream.
// An empty broker list disables event publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// QuoteConfig holds settings for the external quote lookup service
type QuoteConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SessionConfig holds session cookie and expiry settings
type SessionConfig struct {
	TTL        time.Duration
	CookieName string
}

// LogConfig holds logging configuration. File is optional; when set,
// output rotates via lumberjack instead of going to stderr.
type LogConfig struct {
	Level   string
	File    string
	MaxSize int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finance"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "ledger-events"),
		},
		Quote: QuoteConfig{
			BaseURL: getEnv("QUOTE_API_URL", "https://cloud.iexapis.com"),
			APIKey:  getEnv("QUOTE_API_KEY", ""),
			Timeout: time.Duration(getEnvInt("QUOTE_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Session: SessionConfig{
			TTL:        time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
			CookieName: getEnv("SESSION_COOKIE", "session_id"),
		},
		Log: LogConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			File:    getEnv("LOG_FILE", ""),
			MaxSize: getEnvInt("LOG_MAX_SIZE_MB", 50),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
