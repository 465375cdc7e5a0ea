package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/tetgift/commerce/internal/auth/http"
	"github.com/tetgift/commerce/internal/auth/mail"
	"github.com/tetgift/commerce/internal/auth/service"
	"github.com/tetgift/commerce/internal/auth/store"
	redisstore "github.com/tetgift/commerce/internal/auth/store/drivers/redis"
	"github.com/tetgift/commerce/internal/auth/store/drivers/sqlite"
	"github.com/tetgift/commerce/pkg/jwtx"
	"github.com/tetgift/commerce/pkg/slogx"
	"github.com/tetgift/commerce/pkg/vnpay"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	cache *redisstore.Store
	codec *jwtx.Codec

	// Services
	authService     *service.AuthenticationService
	otpService      *service.OtpService
	registerService *service.RegistrationService
	paymentService  *service.PaymentService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	codec, err := jwtx.NewCodec(jwtx.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		ResetSecret:   cfg.ResetSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initCache()

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Close the Redis connection
	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing redis connection", "error", err)
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCache connects the Redis-backed stores. The refresh session TTL tracks
// the refresh token lifetime so the two expire together.
func (app *Application) initCache() {
	app.cache = redisstore.NewStore(redisstore.Config{
		Addr:       app.cfg.RedisAddr,
		Password:   app.cfg.RedisPassword,
		DB:         app.cfg.RedisDB,
		SessionTTL: app.cfg.RefreshTTL,
	})
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	mailer := app.buildMailer()

	app.authService = &service.AuthenticationService{
		Codec:    app.codec,
		Store:    app.db,
		Sessions: app.cache.Sessions(),
		Mailer:   mailer,
		ResetURL: app.cfg.ResetURL,
	}

	app.otpService = &service.OtpService{
		Store:      app.db,
		Challenges: app.cache.OtpChallenges(),
		Mailer:     mailer,
	}

	app.registerService = &service.RegistrationService{
		Store: app.db,
		Otp:   app.otpService,
	}

	app.paymentService = &service.PaymentService{
		Gateway: vnpay.New(vnpay.Config{
			TmnCode:    app.cfg.VNPayTmnCode,
			HashSecret: app.cfg.VNPayHashSecret,
			PayURL:     app.cfg.VNPayPayURL,
			ReturnURL:  app.cfg.VNPayReturnURL,
		}),
	}
}

// buildMailer picks the SMTP mailer when a host is configured and falls back
// to logging mail in dev.
func (app *Application) buildMailer() service.Mailer {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("no smtp host configured, mail will be logged instead of sent")
		return mail.LogMailer{}
	}

	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.MailFrom,
	})
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.cache,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.OtpService = app.otpService
	router.RegisterService = app.registerService
	router.PaymentService = app.paymentService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
