// Loan Ledger - back-office loan management service.
//
// This is the main entry point for the loan ledger API server. It wires
// together configuration, the SQLite store, the optional event broker,
// and the HTTP API, then waits for a shutdown signal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/loanledger/loanledger/migrations"

	"github.com/loanledger/loanledger/internal/api"
	"github.com/loanledger/loanledger/internal/audit"
	"github.com/loanledger/loanledger/internal/auth"
	"github.com/loanledger/loanledger/internal/infrastructure/config"
	"github.com/loanledger/loanledger/internal/infrastructure/database"
	"github.com/loanledger/loanledger/internal/infrastructure/logging"
	"github.com/loanledger/loanledger/internal/infrastructure/mqtt"
	"github.com/loanledger/loanledger/internal/ledger"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Load .env if present; real environment variables take precedence.
	_ = godotenv.Load() //nolint:errcheck // a missing .env file is not an error

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting loan ledger",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	if cfg.UsingDevSecret() {
		log.Warn("using built-in development JWT secret",
			"action_required", "set LOANLEDGER_JWT_SECRET before exposing this service",
		)
	}

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	userRepo := auth.NewUserRepository(db.DB)
	customerRepo := ledger.NewCustomerRepository(db.DB)
	loanRepo := ledger.NewLoanRepository(db.DB)
	paymentRepo := ledger.NewPaymentRepository(db.DB)
	receiptRepo := ledger.NewReceiptRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Seed the first admin account on an empty user table
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin user: %w", seedErr)
	}

	// Connect to the event broker (optional)
	var events *mqtt.Client
	if cfg.Events.Enabled {
		events, err = mqtt.Connect(cfg.Events)
		if err != nil {
			return fmt.Errorf("connecting to event broker: %w", err)
		}
		events.SetLogger(log)
		defer func() {
			log.Info("disconnecting from event broker")
			events.Close()
		}()
		log.Info("event broker connected",
			"broker", fmt.Sprintf("%s:%d", cfg.Events.Broker.Host, cfg.Events.Broker.Port),
			"client_id", cfg.Events.Broker.ClientID,
		)
	} else {
		log.Info("event publishing disabled")
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:       cfg.API,
		Security:     cfg.Security,
		Logger:       log,
		DB:           db,
		UserRepo:     userRepo,
		CustomerRepo: customerRepo,
		LoanRepo:     loanRepo,
		PaymentRepo:  paymentRepo,
		ReceiptRepo:  receiptRepo,
		AuditRepo:    auditRepo,
		Events:       events,
		Production:   cfg.IsProduction(),
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info("shutdown signal received")

	return nil
}

// getConfigPath returns the configuration file path.
// Checks the LOANLEDGER_CONFIG environment variable, then falls back to the default.
func getConfigPath() string {
	if path := os.Getenv("LOANLEDGER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
