package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/securityexcellence/lwsync/config"
	"github.com/securityexcellence/lwsync/internal/domain"
	"github.com/securityexcellence/lwsync/internal/external/learnworlds"
	"github.com/securityexcellence/lwsync/internal/external/shopify"
	"github.com/securityexcellence/lwsync/internal/productmap"
	"github.com/securityexcellence/lwsync/internal/resolver"
	"github.com/securityexcellence/lwsync/internal/webhook"
	"github.com/securityexcellence/lwsync/pkg/health"
	"github.com/securityexcellence/lwsync/pkg/logger"
)

// Run bootstraps and runs the webhook service.
func Run(cfg config.Config) {
	l := logger.New(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Product map: loaded once, immutable for the process lifetime.
	pmap, err := productmap.FromConfig(cfg.ProductMapJSON, cfg.ProductMapFile).Load()
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - load product map: %w", err))
	}
	l.Info("Product map loaded: entries=%d", len(pmap))

	shopifyClient := shopify.New(
		cfg.ShopifyStoreDomain,
		cfg.ShopifyAdminAccessToken,
		cfg.ShopifyAPIVersion,
		&http.Client{Timeout: cfg.HTTPShopifyTimeout},
	)
	if !shopifyClient.Configured() {
		l.Warn("Shopify admin API not configured: metafield lookups and order fetches disabled")
	}

	lwClient := learnworlds.New(
		cfg.LWAPIBase,
		cfg.LWClient,
		cfg.LWToken,
		&http.Client{Timeout: cfg.HTTPLWTimeout},
	)

	classifier := domain.NewClassifier(shopifyClient, l)
	res := resolver.New(pmap, shopifyClient, l)
	webhookHandler := webhook.NewHandler(cfg.ShopifyWebhookSecret, classifier, res, lwClient, l)

	checkers := []health.Checker{health.NewHTTPChecker("learnworlds", cfg.LWAPIBase)}
	if shopifyClient.Configured() {
		checkers = append(checkers,
			health.NewHTTPChecker("shopify", "https://"+cfg.ShopifyStoreDomain))
	}

	engine := NewGinEngine(l)
	router := NewRouter(webhookHandler, health.NewRegistry(checkers...))
	router.SetUp(engine)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	go func() {
		l.Info("Webhook service started: port=%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Error("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	l.Info("Shutting down webhook service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error("Server shutdown error: %v", err)
	}

	l.Info("Webhook service stopped")
}
