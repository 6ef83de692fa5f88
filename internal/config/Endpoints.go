package config

import (
	"github.com/rs/zerolog/log"
)

// Endpoint configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// ChainAPI is the base URL of the chain's HTTP API used for table reads.
	ChainAPI string
	// ChainAPITimeoutSeconds bounds each table-read request.
	ChainAPITimeoutSeconds int
)

// loadEndpointConfig loads endpoint configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	ChainAPI, err = getEnv("CHAIN_API")
	if err != nil {
		return err
	}

	ChainAPITimeoutSeconds, err = getEnvAsInt("CHAIN_API_TIMEOUT_SECONDS")
	if err != nil {
		ChainAPITimeoutSeconds = 10
		log.Debug().Msg("CHAIN_API_TIMEOUT_SECONDS not set, defaulting to 10s")
	}

	log.Debug().
		Str("ChainAPI", ChainAPI).
		Int("ChainAPITimeoutSeconds", ChainAPITimeoutSeconds).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}
