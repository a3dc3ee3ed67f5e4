// Package cmd provides the CLI commands for the Tableside client.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tableside/tableside/internal/adapter/outbound/credstore"
	"github.com/tableside/tableside/internal/adapter/outbound/gateway"
	"github.com/tableside/tableside/internal/apperrors"
	"github.com/tableside/tableside/internal/config"
	"github.com/tableside/tableside/internal/service"
)

var cfgFile string
var apiAddr string

var rootCmd = &cobra.Command{
	Use:   "tableside",
	Short: "Tableside - restaurant client",
	Long: `Tableside is a terminal client for the Tableside restaurant service.

It keeps a persistent session in ~/.tableside/credentials.json, browses
the menu, manages the cart, and works with table reservations.

Quick start:
  1. tableside register  (or tableside login)
  2. tableside menu
  3. tableside cart add <item-id>

Configuration:
  Config is loaded from tableside.yaml in the current directory,
  $HOME/.tableside/, or /etc/tableside/.

  Environment variables can override config values with the TABLESIDE_ prefix.
  Example: TABLESIDE_API_ADDR=https://api.tableside.example`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./tableside.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "", "API base URL (overrides api.addr)")
}

func initConfig() {
	config.InitViper(cfgFile)
}

// app bundles the wired client components behind each command.
type app struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        *credstore.FileStore
	client       *gateway.Client
	session      *service.SessionManager
	cart         *service.CartSynchronizer
	reservations *service.ReservationService
}

// buildApp loads config and wires the gateway client, credential store
// and services. The auth transport closes over the session manager so
// every request carries the current token and any non-exempt 401
// invalidates the session.
func buildApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if apiAddr != "" {
		cfg.API.Addr = apiAddr
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	credPath := cfg.Credentials.Path
	if credPath == "" {
		credPath, err = credstore.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve credentials path: %w", err)
		}
	}
	store := credstore.NewFileStore(credPath, logger)

	// The transport needs the session manager's token and the manager
	// needs the client: closures break the construction cycle.
	var sessionMgr *service.SessionManager
	transport := gateway.NewAuthTransport(
		func() string {
			if sessionMgr == nil {
				return ""
			}
			return sessionMgr.Token()
		},
		func() {
			if sessionMgr != nil {
				sessionMgr.ForceInvalidate()
			}
		},
	)
	transport.Logger = logger

	registry := prometheus.NewRegistry()
	metrics := gateway.NewMetrics(registry)

	client := gateway.NewClient(
		gateway.WithBaseURL(cfg.API.Addr),
		gateway.WithTimeout(cfg.API.Timeout),
		gateway.WithHTTPClient(&http.Client{Transport: transport, Timeout: cfg.API.Timeout}),
		gateway.WithLogger(logger),
		gateway.WithMetrics(metrics),
		gateway.WithMenuCacheTTL(cfg.Menu.CacheTTL),
	)

	sessionMgr = service.NewSessionManager(client, store, logger)
	cartSync := service.NewCartSynchronizer(client, sessionMgr, logger, metrics)

	return &app{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		client:       client,
		session:      sessionMgr,
		cart:         cartSync,
		reservations: service.NewReservationService(client, sessionMgr, logger),
	}, nil
}

// hydratedApp builds the app and restores the persisted session. The
// background profile refresh is awaited so commands see fresh data and
// no request outlives the process.
func hydratedApp(cmd *cobra.Command) (*app, error) {
	a, err := buildApp()
	if err != nil {
		return nil, err
	}
	a.session.Hydrate(cmd.Context())
	a.session.WaitForRefresh()
	return a, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// userError converts an internal error into the localized message shown
// to the user; the technical detail goes to the debug log.
func (a *app) userError(err error) error {
	if err == nil {
		return nil
	}
	a.logger.Debug("command failed", "error", err)
	return errors.New(apperrors.UserMessage(err))
}

// requireAuth fails fast with the standard message when no session is
// active, so commands don't issue requests that can only 401.
func (a *app) requireAuth() error {
	if !a.session.IsAuthenticated() {
		return errors.New("Сначала войдите в систему: tableside login")
	}
	return nil
}
