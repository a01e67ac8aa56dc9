package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/al-shaimon/zkart-backend/internal/client"
	"github.com/al-shaimon/zkart-backend/internal/config"
	"github.com/al-shaimon/zkart-backend/internal/logger"
	"github.com/al-shaimon/zkart-backend/internal/repository"
	"github.com/al-shaimon/zkart-backend/internal/server"
	"github.com/al-shaimon/zkart-backend/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := client.InitMysqlClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}

	stripeClient := client.NewStripeClient(&cfg.Stripe)

	customerRepo := repository.NewCustomerRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	cartService := service.NewCartService(db, customerRepo, productRepo, cartRepo)
	couponService := service.NewCouponService(cfg.Stripe.Currency, customerRepo, vendorRepo, cartRepo, couponRepo)
	checkoutService := service.NewCheckoutService(
		db, stripeClient, cfg.Stripe.Currency, log,
		customerRepo, productRepo, cartRepo, couponRepo, orderRepo,
	)
	paymentService := service.NewPaymentService(db, stripeClient, log, orderRepo, productRepo, webhookEventRepo)
	orderService := service.NewOrderService(customerRepo, vendorRepo, orderRepo)

	srv := server.NewServer(
		log, cfg.JWT.Secret,
		cartService, couponService, checkoutService, orderService, paymentService,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
