package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/corebank/bancore/internal/adapters/database/filestore"
	"github.com/corebank/bancore/internal/adapters/database/pgsql"
	portsrepo "github.com/corebank/bancore/internal/core/ports/repositories"
	"github.com/corebank/bancore/internal/core/services"
	"github.com/corebank/bancore/internal/handlers"
	"github.com/corebank/bancore/internal/middleware"
	"github.com/corebank/bancore/pkg/config"
	"github.com/corebank/bancore/pkg/database"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	accounts, txLog, cleanup, err := openStorage(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	accountService := services.NewAccountService(accounts)
	ledgerService := services.NewLedgerService(accounts, txLog, cfg.LockWaitTimeout)
	reportingService := services.NewReportingService(accounts, txLog)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = handlers.RegisterRoutes(r, cfg, handlers.Services{
		Account:   accountService,
		Ledger:    ledgerService,
		Reporting: reportingService,
	})
	if err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openStorage selects the storage backend: PostgreSQL when PGSQL_URL is set,
// otherwise the file-backed store. The returned cleanup releases whichever
// backend was opened.
func openStorage(cfg *config.Config, logger *slog.Logger) (portsrepo.AccountStore, portsrepo.TransactionLog, func(), error) {
	if cfg.DatabaseURL == "" {
		store, err := filestore.Open(cfg.DataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("File-backed store opened", slog.String("data_dir", cfg.DataDir))
		return store, store, func() { _ = store.Close() }, nil
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		dbPool.Close()
		return nil, nil, nil, err
	}
	logger.Info("Database connection pool established.")
	return pgsql.NewAccountRepository(dbPool), pgsql.NewTransactionRepository(dbPool), dbPool.Close, nil
}

// runMigrations applies all pending "up" migrations over a temporary
// database/sql connection using the pgx stdlib driver.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}
	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
