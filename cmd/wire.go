package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	credstore "github.com/jjdiaconia/alpaca-paper-account-refresher/internal/adapters/credstore/toml"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/adapters/directory"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/adapters/session"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/adapters/trading"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/application"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/logging"
	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/ports"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".apr"
)

type appConfig struct {
	AuthStatePath   string
	APIBase         string
	DashboardURL    string
	TradingBase     string
	CredentialsPath string
	SlotCount       int
	StartingCash    int64
}

type app struct {
	config     appConfig
	httpClient *http.Client
	logger     *slog.Logger
	clock      ports.Clock
}

func wireApp() (*app, error) {
	// A local .env is optional; absence is the normal case.
	_ = godotenv.Load()

	config, err := loadConfig(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	return &app{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.New(os.Stderr, os.Getenv("LOG_LEVEL")),
		clock:      ports.SystemClock{},
	}, nil
}

func loadConfig(cfg *viper.Viper) (appConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return appConfig{}, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))

	cfg.SetDefault("auth.state_path", "auth_state.json")
	cfg.SetDefault("api.base_url", "https://app.alpaca.markets")
	cfg.SetDefault("api.dashboard_url", "https://app.alpaca.markets/dashboard/overview")
	cfg.SetDefault("api.trading_base_url", "https://paper-api.alpaca.markets")
	cfg.SetDefault("credentials.path", filepath.Join(homeDir, configDir, "credentials.toml"))
	cfg.SetDefault("pool.slots", 3)
	cfg.SetDefault("pool.starting_cash", 1_000_000)

	bindings := map[string]string{
		"auth.state_path":      "APR_AUTH_STATE",
		"api.base_url":         "APR_API_BASE",
		"api.dashboard_url":    "APR_DASHBOARD_URL",
		"api.trading_base_url": "APR_TRADING_BASE",
		"credentials.path":     "APR_CREDENTIALS_FILE",
		"pool.slots":           "NUM_SLOTS",
		"pool.starting_cash":   "STARTING_CASH",
	}
	for key, env := range bindings {
		if err := cfg.BindEnv(key, env); err != nil {
			return appConfig{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return appConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return appConfig{
		AuthStatePath:   cfg.GetString("auth.state_path"),
		APIBase:         cfg.GetString("api.base_url"),
		DashboardURL:    cfg.GetString("api.dashboard_url"),
		TradingBase:     cfg.GetString("api.trading_base_url"),
		CredentialsPath: cfg.GetString("credentials.path"),
		SlotCount:       cfg.GetInt("pool.slots"),
		StartingCash:    cfg.GetInt64("pool.starting_cash"),
	}, nil
}

// buildReconciler loads the captured session, establishes the CSRF token and
// assembles the reconciler. It performs one network round trip (the
// dashboard fetch), so it is called per run rather than at wire time.
func (a *app) buildReconciler(ctx context.Context) (*application.Reconciler, error) {
	sess, err := session.Load(a.config.AuthStatePath)
	if err != nil {
		return nil, err
	}

	if err := sess.EstablishCSRF(ctx, a.httpClient, a.config.DashboardURL); err != nil {
		return nil, fmt.Errorf("establish csrf token: %w", err)
	}
	if sess.CSRFToken() == "" {
		a.logger.Warn("no csrf-token meta tag on dashboard page, proceeding without the header")
	}

	store, err := a.credentialStore()
	if err != nil {
		return nil, err
	}

	dir := directory.NewClient(a.config.APIBase, a.httpClient, sess, a.logger)
	validator := trading.NewValidator(a.config.TradingBase, a.httpClient, a.logger)

	return application.NewReconciler(dir, validator, store, a.clock, a.logger), nil
}

func (a *app) credentialStore() (*credstore.Store, error) {
	store, err := credstore.NewStore(a.config.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("wire credential store: %w", err)
	}
	return store, nil
}
