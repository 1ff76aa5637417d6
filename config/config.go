package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
}

// secretNames lists every Docker secret the application reads. The OCR and
// AI provider credentials are not here: those services read their own
// *_API_KEY / *_API_KEY_FILE variables and are optional at startup.
var secretNames = []string{
	"db_user",
	"db_password",
	"jwt_secret",
	"redis_password",
	"db_host",
	"db_port",
	"db_name",
	"db_ssl_mode",
	"redis_host",
	"redis_port",
	"redis_url",
	"server_port",
	"server_host",
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		// CI provides everything through environment variables
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test, Production:
		// Everything else reads Docker secrets
		if err := loadSecretsConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI environment using ONLY GitHub Actions secrets
func loadCIConfig(cfg *Config) error {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")

	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	if cfg.DBPassword == "" {
		return fmt.Errorf("TEST_DB_PASSWORD environment variable is required in CI environment")
	}
	cfg.JWTSecret = os.Getenv("TEST_JWT_SECRET")
	cfg.RedisPassword = os.Getenv("TEST_REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("TEST_REDIS_URL")
	cfg.RedisDB = 0 // This is a constant, not a secret

	return nil
}

// loadSecretsConfig loads configuration from Docker secrets. Every secret in
// secretNames must be present; a missing file is a startup error.
func loadSecretsConfig(cfg *Config) error {
	secrets := make(map[string]string, len(secretNames))
	for _, name := range secretNames {
		content, err := os.ReadFile(filepath.Join(secretsDir(), name))
		if err != nil {
			return fmt.Errorf("failed to read secret %s: %v", name, err)
		}
		secrets[name] = strings.TrimSpace(string(content))
	}

	cfg.ServerPort = secrets["server_port"]
	cfg.ServerHost = secrets["server_host"]
	cfg.DBHost = secrets["db_host"]
	cfg.DBPort = secrets["db_port"]
	cfg.DBUser = secrets["db_user"]
	cfg.DBPassword = secrets["db_password"]
	cfg.DBName = secrets["db_name"]
	cfg.DBSSLMode = secrets["db_ssl_mode"]
	cfg.RedisHost = secrets["redis_host"]
	cfg.RedisPort = secrets["redis_port"]
	cfg.RedisPassword = secrets["redis_password"]
	cfg.RedisDB = 0 // This is a constant, not a secret
	cfg.JWTSecret = secrets["jwt_secret"]
	cfg.RedisURL = secrets["redis_url"]

	return nil
}

// secretsDir returns the Docker secrets directory, overridable for tests
func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}
