package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// ContractAccount is the account name of the staking contract whose
	// tables the dashboard reads.
	ContractAccount string

	// RefreshCronSpec is the cron expression driving snapshot refreshes,
	// e.g. "@every 30s".
	RefreshCronSpec string

	// WebPort is the listen port for the dashboard API server.
	WebPort string
)

const (
	defaultRefreshCronSpec = "@every 30s"
	defaultWebPort         = "8080"
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. Chain endpoint and contract account are required;
// refresh cadence and web port have defaults.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	ContractAccount, err = getEnv("CONTRACT_ACCOUNT")
	if err != nil {
		return err
	}

	RefreshCronSpec = getEnvOrDefault("REFRESH_CRON", defaultRefreshCronSpec)
	WebPort = getEnvOrDefault("WEB_PORT", defaultWebPort)

	if err := loadEndpointConfig(); err != nil {
		return err
	}

	log.Debug().
		Str("ContractAccount", ContractAccount).
		Str("RefreshCronSpec", RefreshCronSpec).
		Str("WebPort", WebPort).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOrDefault retrieves a string environment variable, falling back to
// defaultValue when unset.
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an int. Returns error if
// not set or invalid.
func getEnvAsInt(key string) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, nil
}
