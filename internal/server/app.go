// Package server wires and runs projecthub: AWS clients, the database,
// services, the HTTP API and the admin gRPC health server. It shuts both
// servers down gracefully on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/projecthub/internal/logging"
	"github.com/dmitrijs2005/projecthub/internal/server/cognito"
	"github.com/dmitrijs2005/projecthub/internal/server/config"
	"github.com/dmitrijs2005/projecthub/internal/server/cookies"
	"github.com/dmitrijs2005/projecthub/internal/server/httpapi"
	"github.com/dmitrijs2005/projecthub/internal/server/obs"
	"github.com/dmitrijs2005/projecthub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/projecthub/internal/server/secrets"
	"github.com/dmitrijs2005/projecthub/internal/server/services"
	"github.com/dmitrijs2005/projecthub/internal/server/tokens"

	gs "github.com/dmitrijs2005/projecthub/internal/server/grpc"
)

const (
	shutdownTimeout   = 10 * time.Second
	readinessInterval = 5 * time.Second
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
	admin   *gs.GRPCServer
}

type dbCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	awsCfg, err := newAWSConfig(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	sm := secrets.NewManager(newSecretsClient(awsCfg, c), logger)

	// the client secret is read once here and reused for every secret hash
	clientSecret := secrets.NewValue(ctx, sm, c.CognitoClientSecretName)
	if _, err := clientSecret.Get(); err != nil {
		return nil, fmt.Errorf("client secret error: %w", err)
	}

	if c.RDSSecretID != "" {
		var creds dbCredentials
		if err := sm.GetJSONSecret(ctx, c.RDSSecretID, &creds); err != nil {
			return nil, fmt.Errorf("db credentials error: %w", err)
		}
		c.DBUsername, c.DBPassword = creds.Username, creds.Password
	}

	db, err := repomanager.OpenDB(ctx, c.DSN())
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(db, rm)
	idp := cognito.NewClient(newCognitoClient(awsCfg, c), c.CognitoClientID, c.CognitoUserPoolID, clientSecret)
	as := services.NewAuthService(idp, us, logger)

	handler := httpapi.NewRouter(
		httpapi.RouterConfig{APIPrefix: c.APIPrefix, UIDomain: c.UIDomain, TrustProxy: c.TrustProxy},
		httpapi.Deps{
			Auth:     as,
			Users:    us,
			Verifier: tokens.NewVerifier(ctx, c.Issuer(), c.CognitoClientID, c.JWTLeeway),
			Cookies:  cookies.NewService(c.APIPrefix),
			Metrics:  obs.NewMetrics(),
			Limiter:  httpapi.NewRateLimiter(c.RateLimitRPS, c.RateLimitBurst),
			DB:       db,
			Logger:   logger,
		},
	)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		handler: handler,
		admin:   gs.NewGRPCServer(c.AdminAddrGRPC, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.admin.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr, "prefix", app.config.APIPrefix)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or either server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	go func() {
		defer wg.Done()
		app.admin.Watch(ctx, app.db, readinessInterval)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
