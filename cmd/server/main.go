package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rayaen-stack/drone-zone-ecommerce/internal/cart"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/catalog"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/checkout"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/config"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/customer"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/db"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/events"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/httpapi"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/order"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/payment"
	"github.com/rayaen-stack/drone-zone-ecommerce/internal/pricing"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lshortfile)

	// DB
	database := db.MustOpen(cfg.DatabaseURL)
	defer database.Close()
	if err := db.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Fatalf("migrations: %v", err)
	}

	cartRepo := cart.NewRepository(database)
	catalogRepo := catalog.NewRepository(database)
	customerRepo := customer.NewRepository(database)
	orderRepo := order.NewRepository(database)

	// RabbitMQ is optional; without a broker the shop still sells, it just
	// tells nobody.
	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		rabbitConn := events.MustDial(cfg.AMQPURL)
		defer rabbitConn.Close()

		var err error
		publisher, err = events.NewPublisher(rabbitConn)
		if err != nil {
			logger.Fatalf("events publisher: %v", err)
		}
		defer publisher.Close()
	} else {
		logger.Println("AMQP_URL not set, order events disabled")
	}

	simulator := payment.NewSimulator(cfg.BankTransferCompletes, cfg.MpesaPromptDelay, cfg.MpesaSettleDelay)
	pricingCfg := pricing.Config{
		TaxRate:      cfg.TaxRate,
		ShippingFlat: cfg.ShippingFlat,
		FXRate:       cfg.FXRate,
	}

	// A typed nil must not leak into the interface, the service checks for nil.
	var eventSink checkout.EventPublisher
	if publisher != nil {
		eventSink = publisher
	}
	checkoutSvc := checkout.NewService(cartRepo, customerRepo, orderRepo, simulator, eventSink, pricingCfg, cfg.Currency, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.CartTTL > 0 {
		go sweepStaleCarts(ctx, cartRepo, cfg.CartTTL, logger)
	}

	// HTTP
	mux := httpapi.NewRouter(
		httpapi.NewCartHandler(cartRepo),
		httpapi.NewCheckoutHandler(checkoutSvc),
		httpapi.NewOrderHandler(orderRepo, customerRepo),
		httpapi.NewProductHandler(catalogRepo),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Printf("storefront listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	cancel()
}

// sweepStaleCarts drops abandoned cart lines on a fixed cadence. The interval
// is a quarter of the TTL so a line overstays by 25% at worst.
func sweepStaleCarts(ctx context.Context, repo cart.Repository, ttl time.Duration, logger *log.Logger) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			n, err := repo.DeleteStale(sweepCtx, ttl)
			cancel()
			if err != nil {
				logger.Printf("cart sweep: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("cart sweep: removed %d stale lines", n)
			}
		}
	}
}
