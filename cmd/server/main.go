// cmd/server/main.go
// HTTP Server
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"paypal-gateway/internal/config"
	"paypal-gateway/internal/eventbus"
	"paypal-gateway/internal/handler"
	"paypal-gateway/internal/mailer"
	"paypal-gateway/internal/models"
	"paypal-gateway/internal/repository"
	"paypal-gateway/internal/service"
	"paypal-gateway/pkg/database"
	"paypal-gateway/pkg/logger"
	redisclient "paypal-gateway/pkg/redis"
)

func main() {
	// Initialize logger
	log := logger.NewLogger("paypal-gateway")
	defer log.Sync()

	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize database
	db, err := database.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if _, err := db.Exec(models.PaymentSchema); err != nil {
		log.Fatal("failed to apply payment schema", zap.Error(err))
	}

	// Initialize Redis (optional duplicate-notification cache)
	var seen service.SeenCache
	if cfg.Redis.URL != "" {
		seen = redisclient.NewRedisClient(cfg.Redis.URL)
	}

	// Initialize event bus
	bus := eventbus.NewBus()
	subscribeEventHandlers(bus, log)

	// Initialize repositories and services
	paymentRepo := repository.NewPaymentRepository(db.DB)
	receipts := mailer.NewMailer(cfg)
	checkoutService := service.NewCheckoutService(paymentRepo, bus, cfg, log)
	ipnVerifier := service.NewIPNVerifier(paymentRepo, receipts, bus, seen, cfg, log)

	// Initialize handlers
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, log)
	ipnHandler := handler.NewIPNHandler(ipnVerifier, log)

	// Setup router
	router := setupRouter(checkoutHandler, ipnHandler, cfg, log)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("starting server",
			zap.String("port", cfg.Server.Port),
			zap.Bool("test_mode", cfg.General.TestMode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

func setupRouter(checkout *handler.CheckoutHandler, ipn *handler.IPNHandler, cfg *config.Config, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	// Health checks
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/checkout", checkout.CreateCheckout)
		v1.GET("/payments/:id", checkout.GetPayment)
	}

	// Gateway callback; Any so non-POST deliveries reach the verifier's
	// method check instead of a 404
	router.Any(cfg.General.IPNPath, ipn.Notify)

	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

func subscribeEventHandlers(bus *eventbus.Bus, log *zap.Logger) {
	// Cart state is owned by the storefront; this service only signals.
	bus.Subscribe(eventbus.CheckoutCreated, func(evt eventbus.Event) error {
		if p, ok := evt.Payload.(eventbus.CartPayload); ok {
			log.Info("cart handed off to gateway", zap.String("payment_id", p.PaymentID))
		}
		return nil
	})

	bus.Subscribe(eventbus.CartClear, func(evt eventbus.Event) error {
		if p, ok := evt.Payload.(eventbus.CartPayload); ok {
			log.Info("cart cleared", zap.String("payment_id", p.PaymentID), zap.String("email", p.Email))
		}
		return nil
	})

	bus.Subscribe(eventbus.PaymentSucceeded, func(evt eventbus.Event) error {
		if p, ok := evt.Payload.(eventbus.SuccessPayload); ok {
			log.Info("payment succeeded",
				zap.String("payment_id", p.PaymentID),
				zap.String("purchase_key", p.PurchaseKey))
		}
		return nil
	})
}
