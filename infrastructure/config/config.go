package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion        string
	DynamoDBEndpoint string // local endpoint override, empty for real AWS
	TableNamespace   string // table-name prefix shared by every view

	// Store selection: "dynamodb" or "memory"
	StoreDriver string

	// Migrations
	MigrationsEnabled  bool
	ValidateOnStartup  bool
	ResetSchema        bool
	MigrationAppliedBy string // defaults to the hostname when empty

	// Logging and features
	LogLevel   string
	EnableCORS bool

	// Graceful shutdown window in seconds
	ShutdownTimeout int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		AWSRegion:        getEnv("AWS_REGION", "us-west-2"),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		TableNamespace:   getEnv("TABLE_NAMESPACE", "blog"),

		StoreDriver: getEnv("STORE_DRIVER", "dynamodb"),

		MigrationsEnabled:  getEnvBool("MIGRATIONS_ENABLED", true),
		ValidateOnStartup:  getEnvBool("VALIDATE_SCHEMA_ON_STARTUP", true),
		ResetSchema:        getEnvBool("RESET_SCHEMA", false),
		MigrationAppliedBy: getEnv("MIGRATION_APPLIED_BY", ""),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),

		ShutdownTimeout: getEnvInt("SHUTDOWN_TIMEOUT", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "dynamodb", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.Environment == "production" {
		if c.TableNamespace == "" {
			return fmt.Errorf("TABLE_NAMESPACE is required in production")
		}
		if c.ResetSchema {
			return fmt.Errorf("RESET_SCHEMA must not be set in production")
		}
		if c.StoreDriver == "memory" {
			return fmt.Errorf("the memory store is not allowed in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
