// Package config provides configuration management for the todo API.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting.
// A `.env` file, if present, is loaded into the environment by `main` before LoadConfig runs.
package config

import (
	"fmt"
	// `os` package provides operating system functionalities, like reading environment variables.
	"os"
	"strconv"
	"strings"
	"time"
	// Embedded zone database so JWT_TIME_ZONE resolves in minimal containers.
	_ "time/tzdata"

	"github.com/user/todoapi-go/apperror"
)

// Default route prefixes that bypass authentication. These mirror the paths the
// Swagger UI, health and metrics endpoints are mounted under.
var (
	DefaultPublicEndpoints     = []string{"/swagger", "/api-docs", "/health", "/metrics"}
	DefaultPublicPostEndpoints = []string{"/auth", "/users"}
)

// PoolConfig represents configuration for the database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret     string        // Secret key for signing JWTs
	JWTIssuer     string        // Value of the `iss` claim, checked on every verify
	TokenDuration time.Duration // Lifetime of issued tokens
	TimeZone      string        // Reference zone used for the issued-at timestamp
}

// SecurityConfig holds the route classification inputs.
type SecurityConfig struct {
	PublicEndpoints     []string // Prefixes that never require a token
	PublicPostEndpoints []string // Prefixes that skip authentication for POST only
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port               string   // Port for the HTTP server
	CORSAllowedOrigins []string // Origins passed to the CORS middleware
}

// LogConfig configures the logrus logger.
type LogConfig struct {
	Level  string // panic, fatal, error, warn, info, debug, trace
	Format string // "text" or "json"
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB             *PoolConfig
	Auth           *AuthConfig
	Security       *SecurityConfig
	Server         *ServerConfig
	Log            *LogConfig
	MigrationsPath string
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return "" // Return empty string, error is collected
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
// Uses defaultValue if not set or if parsing fails. Appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// Helper function to get an optional environment variable parsed as time.Duration.
// `time.ParseDuration` expects a string like "15m", "4h".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	if valueDuration <= 0 {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: duration must be positive, got '%s'", key, valueStr))
		return defaultValue
	}
	return valueDuration
}

// getOptionalEnvList reads a comma separated list, trimming blanks.
func getOptionalEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// clampPoolSize keeps pool sizes within 5..100, recording out-of-range values.
func clampPoolSize(size int, varName string, errors *[]string) int {
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is less than minimum 5", varName, size))
		return 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100", varName, size))
		return 100
	}
	return size
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	// `errors` slice collects all validation/parsing errors during config loading.
	var errors []string

	// Database Configuration
	dbPool := &PoolConfig{
		User:     getRequiredEnv("DB_USER", &errors),
		Password: getRequiredEnv("DB_PASSWORD", &errors),
		DBName:   getRequiredEnv("DB_NAME", &errors),
		Host:     getOptionalEnv("DB_HOST", "localhost"),
		Port:     getOptionalEnvInt("DB_PORT", 5432, &errors),
	}
	dbPool.MaxSize = clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors), "DB_POOL_SIZE", &errors)

	// Auth Configuration
	authConfig := &AuthConfig{
		JWTSecret:     getRequiredEnv("JWT_SECRET", &errors),
		JWTIssuer:     getOptionalEnv("JWT_ISSUER", "todo-api"),
		TokenDuration: getOptionalEnvDuration("JWT_TOKEN_DURATION", 4*time.Hour, &errors),
		TimeZone:      getOptionalEnv("JWT_TIME_ZONE", "America/Sao_Paulo"),
	}
	if _, err := time.LoadLocation(authConfig.TimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid value for JWT_TIME_ZONE: %v", err))
	}

	securityConfig := &SecurityConfig{
		PublicEndpoints:     getOptionalEnvList("PUBLIC_ENDPOINTS", DefaultPublicEndpoints),
		PublicPostEndpoints: getOptionalEnvList("PUBLIC_POST_ENDPOINTS", DefaultPublicPostEndpoints),
	}

	// Server Configuration
	serverConfig := &ServerConfig{
		// Note: Server port is a string because it's used directly in the listen address (e.g., ":8080").
		Port:               getOptionalEnv("PORT", "8080"),
		CORSAllowedOrigins: getOptionalEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	logConfig := &LogConfig{
		Level:  getOptionalEnv("LOG_LEVEL", "info"),
		Format: getOptionalEnv("LOG_FORMAT", "text"),
	}
	if logConfig.Format != "text" && logConfig.Format != "json" {
		errors = append(errors, fmt.Sprintf("invalid value for LOG_FORMAT: expected 'text' or 'json', got '%s'", logConfig.Format))
	}

	// If any errors were collected during loading, return a single aggregated error message.
	if len(errors) > 0 {
		return nil, apperror.NewConfigError(fmt.Sprintf("configuration errors:\n- %s", strings.Join(errors, "\n- ")), nil)
	}

	return &AppConfig{
		DB:             dbPool,
		Auth:           authConfig,
		Security:       securityConfig,
		Server:         serverConfig,
		Log:            logConfig,
		MigrationsPath: getOptionalEnv("MIGRATIONS_PATH", "./migrations"),
	}, nil
}
