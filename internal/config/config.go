package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Supported recipe store drivers
const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port        int    `json:"port"`
	Host        string `json:"host"`
	Environment string `json:"environment"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Storage configuration
	StoreDriver string `json:"store_driver"`
	DatabaseURL string `json:"database_url"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`

	// Language model configuration
	OpenAIAPIKey  string        `json:"openai_api_key"`
	OpenAIBaseURL string        `json:"openai_base_url"`
	OpenAIModel   string        `json:"openai_model"`
	ModelTimeout  time.Duration `json:"model_timeout"`

	// Security Configuration
	AuthSecret string `json:"auth_secret"`

	SeedSampleData bool `json:"seed_sample_data"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, Environment: %s, LogLevel: %s, StoreDriver: %s, DatabaseURL: %s, "+
		"DBHost: %s, DBPort: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, "+
		"OpenAIAPIKey: %s, OpenAIBaseURL: %s, OpenAIModel: %s, ModelTimeout: %s, AuthSecret: %s, SeedSampleData: %t}",
		c.Port, c.Host, c.Environment, c.LogLevel, c.StoreDriver, database.MaskURL(c.DatabaseURL),
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPath,
		maskSecret(c.OpenAIAPIKey), c.OpenAIBaseURL, c.OpenAIModel, c.ModelTimeout, maskSecret(c.AuthSecret), c.SeedSampleData)
}

// AuthEnabled reports whether mutating routes require a bearer token
func (c *Config) AuthEnabled() bool {
	return c.AuthSecret != ""
}

// maskSecret hides a secret but still shows whether one is configured
func maskSecret(secret string) string {
	if secret == "" {
		return "[UNSET]"
	}
	return "[REDACTED]"
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// Returns an error if any environment variable is set to an invalid value
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid APP_PORT: %d is out of range", port)
	}

	logLevel := GetEnvWithDefault("LOG_LEVEL", "info")
	if _, err := logrus.ParseLevel(logLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	driver := strings.ToLower(GetEnvWithDefault("STORE_DRIVER", StoreDriverMemory))
	switch driver {
	case StoreDriverMemory, StoreDriverSQLite, StoreDriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q (supported: memory, sqlite, postgres)", driver)
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		// validate URL with net/url
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	timeoutSeconds, err := strconv.Atoi(GetEnvWithDefault("MODEL_TIMEOUT_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_TIMEOUT_SECONDS: %w", err)
	}
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid MODEL_TIMEOUT_SECONDS: must be positive, got %d", timeoutSeconds)
	}

	config := &Config{
		Port:           port,
		Host:           GetEnvWithDefault("APP_HOST", "localhost"),
		Environment:    GetEnvWithDefault("APP_ENV", "development"),
		LogLevel:       logLevel,
		StoreDriver:    driver,
		DatabaseURL:    dbURL,
		DBHost:         GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:         GetEnvWithDefault("DB_PORT", "5432"),
		DBName:         GetEnvWithDefault("DB_NAME", "recipes"),
		DBUser:         GetEnvWithDefault("DB_USER", "postgres"),
		DBPassword:     GetEnvWithDefault("DB_PASSWORD", ""),
		DBSSLMode:      GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:         GetEnvWithDefault("DB_PATH", "recipes.sqlite"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:    GetEnvWithDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
		ModelTimeout:   time.Duration(timeoutSeconds) * time.Second,
		AuthSecret:     os.Getenv("AUTH_SECRET"),
		SeedSampleData: GetEnvAsType("SEED_SAMPLE_DATA", false),
	}
	if config.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY is not set, recipe generation and enhancement will fail")
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		durationValue, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(durationValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
