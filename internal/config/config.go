package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Logging
	LogDir      string // empty = stdout only
	LogMaxFiles int
	// Debug flags
	Debug bool
}

// fileConfig mirrors Config for the optional YAML overlay. Pointer fields so
// absent keys leave the defaults alone.
type fileConfig struct {
	Port        *string `yaml:"port"`
	Environment *string `yaml:"environment"`
	DatabaseURL *string `yaml:"database_url"`
	CORSOrigins *string `yaml:"cors_origins"`
	TablePrefix *string `yaml:"table_prefix"`
	LogDir      *string `yaml:"log_dir"`
	LogMaxFiles *int    `yaml:"log_max_files"`
	Debug       *bool   `yaml:"debug"`
}

// Load builds the configuration in three layers: defaults, then the optional
// YAML file named by CONFIG_FILE, then environment variables. Env always
// wins.
func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:        "8080",
		Environment: env,
		CORSOrigins: "http://localhost:3000",
		TablePrefix: getTablePrefix(env),
		LogMaxFiles: 10,
		Debug:       getDefaultDebug(env),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.TablePrefix = getEnv("TABLE_PREFIX", cfg.TablePrefix)
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	if v := os.Getenv("LOG_MAX_FILES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse LOG_MAX_FILES: %w", err)
		}
		cfg.LogMaxFiles = n
	}
	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Debug = v == "true"
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.Environment != nil {
		cfg.Environment = *fc.Environment
	}
	if fc.DatabaseURL != nil {
		cfg.DatabaseURL = *fc.DatabaseURL
	}
	if fc.CORSOrigins != nil {
		cfg.CORSOrigins = *fc.CORSOrigins
	}
	if fc.TablePrefix != nil {
		cfg.TablePrefix = *fc.TablePrefix
	}
	if fc.LogDir != nil {
		cfg.LogDir = *fc.LogDir
	}
	if fc.LogMaxFiles != nil {
		cfg.LogMaxFiles = *fc.LogMaxFiles
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}

	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) bool {
	return env != "prod"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
