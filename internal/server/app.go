// Package server initializes and runs the identity server: configuration,
// database and migrations, AWS clients, the auth service, and the HTTP
// endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tripstack/identity/internal/logging"
	"github.com/tripstack/identity/internal/server/auth"
	"github.com/tripstack/identity/internal/server/config"
	"github.com/tripstack/identity/internal/server/httpapi"
	"github.com/tripstack/identity/internal/server/idp"
	"github.com/tripstack/identity/internal/server/mailid"
	"github.com/tripstack/identity/internal/server/repositories/repomanager"
	"github.com/tripstack/identity/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	repos  repomanager.RepositoryManager
	router http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	provider, err := idp.NewCognitoClient(awsCfg, idp.Config{
		UserPoolID:   cfg.CognitoUserPoolID,
		Region:       cfg.AWSRegion,
		ClientID:     cfg.CognitoClientID,
		ClientSecret: cfg.CognitoClientSecret,
	}, cfg.RemoteCallTimeout)
	if err != nil {
		return nil, fmt.Errorf("identity provider init error: %w", err)
	}

	mail := mailid.NewSESManager(awsCfg, cfg.RemoteCallTimeout)
	tokens := auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.APIKey, cfg.AccessTokenValidityDuration)

	repos := repomanager.NewPostgresRepositoryManager()
	svc := services.NewAuthService(db, repos, provider, mail, tokens, logger)
	router := httpapi.NewRouter(httpapi.NewHandler(svc, logger))

	return &App{config: cfg, logger: logger, db: db, repos: repos, router: router}, nil
}

// loadAWSConfig builds the shared AWS client config. The static key pair
// is optional; when absent the default credential chain applies.
func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	if err := app.repos.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.router,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "server shutdown error", "error", err)
	}

	return app.db.Close()
}
