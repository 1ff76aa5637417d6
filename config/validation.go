package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that every field the server needs made it into the
// loaded configuration, regardless of whether it came from environment
// variables (CI) or Docker secrets (everything else).
func ValidateConfig(cfg *Config) error {
	required := map[string]string{
		"server port":    cfg.ServerPort,
		"server host":    cfg.ServerHost,
		"db host":        cfg.DBHost,
		"db port":        cfg.DBPort,
		"db user":        cfg.DBUser,
		"db password":    cfg.DBPassword,
		"db name":        cfg.DBName,
		"db ssl mode":    cfg.DBSSLMode,
		"redis host":     cfg.RedisHost,
		"redis port":     cfg.RedisPort,
		"redis password": cfg.RedisPassword,
		"redis url":      cfg.RedisURL,
		"jwt secret":     cfg.JWTSecret,
	}

	var errors []string
	for name, value := range required {
		if value == "" {
			errors = append(errors, fmt.Sprintf("required configuration value %q is not set", name))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
