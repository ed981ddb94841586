// Package server initializes and runs the customer database server.
// It opens and migrates the database, wires services, mail and metrics, and
// runs the HTTP API until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/custdb/internal/logging"
	"github.com/dmitrijs2005/custdb/internal/server/config"
	"github.com/dmitrijs2005/custdb/internal/server/mailer"
	"github.com/dmitrijs2005/custdb/internal/server/metrics"
	"github.com/dmitrijs2005/custdb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/custdb/internal/server/rest"
	"github.com/dmitrijs2005/custdb/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	metrics         *metrics.Metrics
	userService     *services.UserService
	customerService *services.CustomerService
}

// SMTPConfig derives the mailer settings from the server config.
func SMTPConfig(c *config.Config) mailer.SMTPConfig {
	return mailer.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		User:     c.SMTPUser,
		Password: c.SMTPPassword,
		BaseURL:  c.BaseURL,
		Timeout:  c.SMTPTimeout,
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	m := metrics.New()
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	smtp := SMTPConfig(c)
	if !smtp.Configured() {
		logger.Warn(ctx, "SMTP credentials not configured, verification emails will be skipped")
	}
	ml := mailer.New(smtp, logger.With("module", "mailer"), mailer.WithObserver(m))

	us := services.NewUserService(db, rm, ml, logger.With("module", "users"), c)
	cs := services.NewCustomerService(db, rm, logger.With("module", "customers"), c)

	return &App{config: c, logger: logger, db: db, metrics: m, userService: us, customerService: cs}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := rest.NewServer(app.config.EndpointAddrHTTP, app.logger, app.userService, app.customerService,
		app.config.SecretKey, rest.WithMetrics(app.metrics, prometheus.DefaultGatherer))

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// tokenPurgeInterval is how often expired refresh tokens are deleted.
const tokenPurgeInterval = time.Hour

// purgeTokens deletes expired refresh tokens every interval until ctx ends.
func (app *App) purgeTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.userService.PurgeExpiredTokens(ctx); err != nil && ctx.Err() == nil {
				app.logger.Error(ctx, "refresh token purge failed", "error", err)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.purgeTokens(ctx, tokenPurgeInterval)
	}()

	wg.Wait()

	app.shutdown(ctx)
}

func (app *App) shutdown(ctx context.Context) {
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
