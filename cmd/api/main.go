package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flfwms/picking-api/internal/api/rest"
	"github.com/flfwms/picking-api/internal/api/rest/handler"
	"github.com/flfwms/picking-api/internal/api/rest/middleware"
	"github.com/flfwms/picking-api/internal/auth"
	"github.com/flfwms/picking-api/internal/config"
	"github.com/flfwms/picking-api/internal/erp"
	"github.com/flfwms/picking-api/internal/picking"
	"github.com/flfwms/picking-api/internal/repository/odoo"
	"github.com/flfwms/picking-api/pkg/keyfetcher"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const (
	PrivateKeyEnv = "PRIVATE_KEY_BASE64"
	PublicKeyEnv  = "PUBLIC_KEY_BASE64"

	ShutdownTimeout = 10 * time.Second

	JWTClockSkewTolerance = 5 * time.Minute
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()
	logger.Info("api_starting", "erp_url", cfg.ERPURL, "erp_db", cfg.ERPDatabase)

	erpClient := erp.NewClient(erp.Config{
		URL:      cfg.ERPURL,
		Database: cfg.ERPDatabase,
		Username: cfg.ERPUsername,
		Password: cfg.ERPPassword,
	})

	// Repositories over the remote store
	orderRepo := odoo.NewOrderRepository(erpClient)
	productRepo := odoo.NewProductRepository(erpClient)
	identityRepo := odoo.NewIdentityRepository(erpClient)

	// Services
	pickingService := picking.NewService(orderRepo, productRepo, logger)
	authService := auth.NewService(identityRepo, logger)
	tokenIssuer := auth.NewTokenIssuer(&auth.TokenConfig{
		KeyFetcher: keyfetcher.FromBase64Env(PrivateKeyEnv),
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		TokenTTL:   cfg.TokenTTL,
	})

	jwtMiddleware := middleware.NewJWTAuthMiddleware(middleware.JWTConfig{
		KeyFetcher: keyfetcher.FromBase64Env(PublicKeyEnv),
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		ClockSkew:  JWTClockSkewTolerance,
	})

	router := rest.NewRouter(&rest.RouterConfig{
		AuthHandler: handler.NewAuthHandler(authService, tokenIssuer, logger),
		TaskHandler: handler.NewTaskHandler(pickingService, logger),
		JWT:         jwtMiddleware,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api_listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("api_serve_failed", "error", err)
		os.Exit(1)
	}
}
