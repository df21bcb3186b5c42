package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"urwallet/internal/ai"
	"urwallet/internal/app"
	"urwallet/internal/auth"
	"urwallet/internal/config"
	"urwallet/internal/currency"
	"urwallet/internal/database"
	"urwallet/internal/logger"
	"urwallet/internal/validator"

	"github.com/gin-gonic/gin"
)

// @title           urWallet API
// @version         1.0
// @description     urWallet tracks income and expenses, keeps a savings balance in step with the ledger, and adds monthly AI insights and currency conversion.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the identity provider's ID token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	verifier, err := newVerifier(appConfig)
	if err != nil {
		return fmt.Errorf("failed to configure token verification: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := ai.New(ctx, appConfig.GeminiAPIKey, appConfig.GeminiModel)
	if err != nil {
		return fmt.Errorf("failed to create AI client: %w", err)
	}
	if _, disabled := generator.(ai.Disabled); disabled {
		log.Warn("GEMINI_API_KEY not set, AI features will return fallback responses")
	}

	rates := currency.NewExchangeRateAPI(
		&http.Client{Timeout: appConfig.FXTimeout},
		appConfig.FXAPIBaseURL,
		appConfig.FXAPIKey,
		appConfig.FXCacheTTL,
	)

	validator.Register()

	router := app.NewRouter(app.Deps{
		DB:              dbManager.DB(),
		Verifier:        verifier,
		Generator:       generator,
		Rates:           rates,
		AITimeout:       appConfig.AITimeout,
		FXTimeout:       appConfig.FXTimeout,
		AIRatePerMinute: appConfig.AIRatePerMinute,
		CORSOrigins:     appConfig.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting urWallet backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newVerifier(cfg *config.Config) (*auth.JWTVerifier, error) {
	jwtConfig := auth.JWTConfig{
		Secret:   []byte(cfg.AuthJWTSecret),
		Audience: cfg.AuthAudience,
		Issuer:   cfg.AuthIssuer,
	}
	if cfg.AuthPublicKeyPath != "" {
		key, err := auth.LoadRSAPublicKey(cfg.AuthPublicKeyPath)
		if err != nil {
			return nil, err
		}
		jwtConfig.PublicKey = key
	}
	return auth.NewJWTVerifier(jwtConfig)
}
