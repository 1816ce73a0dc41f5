// Copyright 2025 Veyra Protocol
//
// Package config loads process configuration from environment
// variables, grounded on the teacher's pkg/config/config.go
// getEnv*/Load/Validate pattern, generalized from the teacher's
// blockchain-validator settings to vey-core's server, storage, audit,
// and resolver settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for a vey-core host process (cmd/veyd
// or any other embedder).
type Config struct {
	// Server
	ListenAddr  string
	MetricsAddr string
	HealthAddr  string
	LogLevel    string
	DataDir     string

	// Postgres-backed storage (pkg/storage/postgres)
	DBHost              string
	DBPort              int
	DBUser              string
	DBPassword          string
	DBName              string
	DBSSLMode           string
	DBMaxOpenConns      int
	DBMaxIdleConns      int
	DBConnMaxIdleTime   time.Duration
	DBConnMaxLifetime   time.Duration
	DatabaseRequired    bool

	// Firestore-backed audit sink (pkg/audit/firestore)
	FirestoreEnabled        bool
	FirebaseProjectID       string
	FirebaseCredentialsFile string
	FirestoreCollection     string

	// Resolver (pkg/resolver)
	ShippingSkew     time.Duration // spec §9 Open Question (b), default ±5m
	DefaultIssuerDID string

	// ZKP backend selection (pkg/zkp, pkg/zkp/groth16backend)
	ZKPBackend string // "test" or "groth16"

	// Optional YAML policy file (pkg/config/file.go)
	PolicyFilePath string
}

// Load reads configuration from environment variables, applying safe
// defaults for local development. Call Validate (or
// ValidateForDevelopment) after Load before starting the service.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:  getEnv("VEY_API_HOST", "0.0.0.0") + ":" + getEnv("VEY_API_PORT", "8080"),
		MetricsAddr: getEnv("VEY_API_HOST", "0.0.0.0") + ":" + getEnv("VEY_METRICS_PORT", "9090"),
		HealthAddr:  getEnv("VEY_API_HOST", "0.0.0.0") + ":" + getEnv("VEY_HEALTH_PORT", "8081"),
		LogLevel:    getEnv("VEY_LOG_LEVEL", "info"),
		DataDir:     getEnv("VEY_DATA_DIR", "./data"),

		DBHost:            getEnv("VEY_DB_HOST", "localhost"),
		DBPort:            getEnvInt("VEY_DB_PORT", 5432),
		DBUser:            getEnv("VEY_DB_USER", "vey"),
		DBPassword:        getEnv("VEY_DB_PASSWORD", ""),
		DBName:            getEnv("VEY_DB_NAME", "vey_core"),
		DBSSLMode:         getEnv("VEY_DB_SSL_MODE", "require"),
		DBMaxOpenConns:    getEnvInt("VEY_DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("VEY_DB_MAX_IDLE_CONNS", 5),
		DBConnMaxIdleTime: getEnvDuration("VEY_DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		DBConnMaxLifetime: getEnvDuration("VEY_DB_CONN_MAX_LIFETIME", time.Hour),
		DatabaseRequired:  getEnvBool("VEY_DATABASE_REQUIRED", false),

		FirestoreEnabled:        getEnvBool("VEY_FIRESTORE_ENABLED", false),
		FirebaseProjectID:       getEnv("VEY_FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		FirestoreCollection:     getEnv("VEY_FIRESTORE_COLLECTION", "auditEntries"),

		ShippingSkew:     getEnvDuration("VEY_SHIPPING_SKEW", 5*time.Minute),
		DefaultIssuerDID: getEnv("VEY_DEFAULT_ISSUER_DID", ""),

		ZKPBackend: getEnv("VEY_ZKP_BACKEND", "test"),

		PolicyFilePath: getEnv("VEY_POLICY_FILE", ""),
	}

	return cfg, nil
}

// Validate checks that configuration required for a production
// deployment is present and internally consistent.
func (c *Config) Validate() error {
	var problems []string

	if c.DatabaseRequired && c.DBName == "" {
		problems = append(problems, "VEY_DB_NAME is required when VEY_DATABASE_REQUIRED is set")
	}
	if c.FirestoreEnabled && c.FirebaseProjectID == "" {
		problems = append(problems, "VEY_FIREBASE_PROJECT_ID is required when VEY_FIRESTORE_ENABLED is set")
	}
	if c.ZKPBackend != "test" && c.ZKPBackend != "groth16" {
		problems = append(problems, fmt.Sprintf("VEY_ZKP_BACKEND must be \"test\" or \"groth16\", got %q", c.ZKPBackend))
	}
	if c.ShippingSkew <= 0 {
		problems = append(problems, "VEY_SHIPPING_SKEW must be a positive duration")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// ValidateForDevelopment performs relaxed validation suitable for local
// development, where a database and Firestore are optional.
func (c *Config) ValidateForDevelopment() error {
	if c.ZKPBackend != "test" && c.ZKPBackend != "groth16" {
		return fmt.Errorf("VEY_ZKP_BACKEND must be \"test\" or \"groth16\", got %q", c.ZKPBackend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
