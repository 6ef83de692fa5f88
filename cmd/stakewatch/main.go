package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/stakewatch/stakewatch/internal/config"
	"github.com/stakewatch/stakewatch/internal/dashboard"
	"github.com/stakewatch/stakewatch/internal/datafetcher"
	"github.com/stakewatch/stakewatch/internal/events"
	"github.com/stakewatch/stakewatch/internal/logger"
	"github.com/stakewatch/stakewatch/internal/scheduler"
	"github.com/stakewatch/stakewatch/internal/state"
	"github.com/stakewatch/stakewatch/internal/web"
)

// main is the entry point for the staking dashboard service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Stakewatch dashboard starting...")

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// The refresh counter survives restarts; log where we are resuming from.
	if refreshNumber, err := state.GetCurrentRefreshNumber(); err != nil {
		log.Warn().Err(err).Msg("Failed to read refresh counter")
	} else {
		log.Info().Int("currentRefresh", refreshNumber).Msg("Resuming refresh numbering")
	}

	// Load Engine Parameters
	engineParams, err := state.LoadActiveEngineParameters(dashboard.DEFAULT_PARAMS_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active engine parameters, using defaults and saving.")
		defaultParams := config.DefaultEngineParameters
		if _, err := state.SaveEngineParameters(defaultParams, dashboard.DEFAULT_PARAMS_CONFIG_NAME, dashboard.DEFAULT_PARAMS_CONFIG_VERSION, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default engine parameters.")
		}
		engineParams = &defaultParams
	}
	log.Info().Msg("Engine parameters loaded successfully.")

	// --- 2. Chain Client and Event Bus ---
	chainClient, err := datafetcher.NewClient(
		config.ChainAPI,
		config.ContractAccount,
		time.Duration(config.ChainAPITimeoutSeconds)*time.Second,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create chain API client")
	}
	log.Info().Str("endpoint", config.ChainAPI).Str("contract", config.ContractAccount).Msg("Chain API client ready")

	bus := events.NewBus()
	defer bus.Close()

	// --- 3. Create Dashboard Instance with Dependency Injection ---
	dashboardInstance, err := dashboard.NewDashboard(dashboard.Config{
		Client:     chainClient,
		Bus:        bus,
		Params:     engineParams,
		ConfigName: dashboard.DEFAULT_PARAMS_CONFIG_NAME,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create dashboard instance")
	}
	log.Info().Msg("Dashboard instance created successfully")

	// --- 4. Start Web Server ---
	webServer := web.NewWebServer(config.WebPort, dashboardInstance)
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting dashboard API server")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 5. Start Refresh Scheduler ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched, err := scheduler.NewScheduler(ctx, dashboardInstance)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	if err := sched.Register(config.RefreshCronSpec); err != nil {
		log.Fatal().Err(err).Msg("Failed to register refresh task")
	}

	// First refresh immediately so the dashboard has a view before the
	// first scheduled tick.
	sched.RunRefreshNow()
	sched.Start()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received, stopping scheduler...")
	sched.Stop()
	log.Info().Msg("Stakewatch dashboard stopped.")
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
