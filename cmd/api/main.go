package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oceanharvest/storefront-api/internal/auth"
	"github.com/oceanharvest/storefront-api/internal/cache"
	"github.com/oceanharvest/storefront-api/internal/cart"
	"github.com/oceanharvest/storefront-api/internal/config"
	"github.com/oceanharvest/storefront-api/internal/database"
	"github.com/oceanharvest/storefront-api/internal/handlers"
	"github.com/oceanharvest/storefront-api/internal/importer"
	"github.com/oceanharvest/storefront-api/internal/order"
	"github.com/oceanharvest/storefront-api/internal/payments"
	"github.com/oceanharvest/storefront-api/internal/pricing"
	"github.com/oceanharvest/storefront-api/internal/routes"
	"github.com/oceanharvest/storefront-api/internal/store"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("could not load .env file, relying on system environment variables")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	// 1. --- Database Connection ---
	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer client.Disconnect(context.Background())

	colls := database.NewCollections(client, cfg.MongoDB)

	// 2. --- Stores & Services ---
	productCache := cache.New(cfg.RedisAddr, 10*time.Minute)
	defer productCache.Close()

	products := store.NewProductStore(colls.Products, productCache)
	users := store.NewUserStore(colls.Users)
	priceLists := store.NewPriceListStore(colls.PriceLists)
	orders := store.NewOrderStore(colls.Orders)

	resolver := pricing.NewResolver(products, priceLists)
	cartEngine := cart.NewEngine(users, products, resolver)
	orderService := order.NewService(orders, products, resolver, cartEngine)
	paymentClient := payments.NewClient(cfg.StripeKey, cfg.Currency)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. --- Price-List Sync Consumer ---
	// The ERP batch import publishes price-list changes to Kafka
	// instead of writing to the database directly.
	if len(cfg.KafkaBrokers) > 0 {
		consumer := importer.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, priceLists)
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil {
				log.Error().Err(err).Msg("price-list sync consumer stopped")
			}
		}()
	}

	// 4. --- Background Worker ---
	// Sweeps gateway orders that never got a payment confirmation.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		log.Info().Msg("background worker started: monitoring for stale unpaid orders")

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := orderService.SweepUnpaid(ctx, time.Now().Add(-cfg.UnpaidOrderTTL))
				if err != nil {
					log.Error().Err(err).Msg("unpaid order sweep failed")
				} else if deleted > 0 {
					log.Info().Int64("deleted", deleted).Msg("swept stale unpaid orders")
				}
			}
		}
	}()

	// 5. --- Router Setup ---
	app := &handlers.Handlers{
		Cfg:        cfg,
		JWT:        auth.NewJWT(cfg.JWTSecret),
		Users:      users,
		Products:   products,
		PriceLists: priceLists,
		Pricing:    resolver,
		Cart:       cartEngine,
		Orders:     orderService,
		Payments:   paymentClient,
	}
	router := routes.SetupRouter(app)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting storefront API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// 6. --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		os.Exit(1)
	}
}
