// Package app wires configuration, storage, clients, and services into a
// single shared core used by cmd/folio-server and the tests.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foliotrack/folio/internal/clients/finnhub"
	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/services/portfolio"
	"github.com/foliotrack/folio/internal/storage/surrealdb"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	QuoteClient      interfaces.QuoteClient
	PortfolioService interfaces.PortfolioService
	Refresher        *portfolio.Refresher
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, the Finnhub client, and the
// portfolio service. A missing Finnhub API key is a startup error here, not
// a runtime one.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	// Load configuration - check provided path, FOLIO_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	finnhubKey, err := config.ResolveFinnhubAPIKey()
	if err != nil {
		storageManager.Close()
		return nil, err
	}

	quoteClient := finnhub.NewClient(finnhubKey,
		finnhub.WithBaseURL(config.Clients.Finnhub.BaseURL),
		finnhub.WithLogger(logger),
		finnhub.WithRateLimit(config.Clients.Finnhub.RateLimit),
		finnhub.WithTimeout(config.Clients.Finnhub.GetTimeout()),
	)

	portfolioService := portfolio.NewService(storageManager, quoteClient, logger)
	refresher := portfolio.NewRefresher(portfolioService, logger, config.Refresh.GetInterval())

	return &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		QuoteClient:      quoteClient,
		PortfolioService: portfolioService,
		Refresher:        refresher,
		StartupTime:      time.Now(),
	}, nil
}

// StartRefreshSchedule starts the background quote refresh for the configured
// owner. It is a no-op when the schedule is disabled or no owner is set.
func (a *App) StartRefreshSchedule() {
	if !a.Config.Refresh.Enabled {
		a.Logger.Info().Msg("Quote refresh schedule disabled")
		return
	}
	if a.Config.Refresh.Owner == "" {
		a.Logger.Info().Msg("No refresh owner configured, skipping background refresh")
		return
	}
	a.Refresher.Start(a.Config.Refresh.Owner)
}

// Close stops background work and releases storage.
func (a *App) Close() {
	a.Refresher.Stop()
	if err := a.Storage.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Storage close failed")
	}
}
