// Entry point; loads config, wires services, starts the HTTP server and the
// notification worker.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"romuo/internal/config"
	httptransport "romuo/internal/http"
	"romuo/internal/identity"
	"romuo/internal/infra"
	"romuo/internal/maps"
	"romuo/internal/modules/catalog"
	"romuo/internal/modules/dispatch"
	"romuo/internal/modules/fleet"
	"romuo/internal/modules/pricing"
	"romuo/internal/modules/ride"
	"romuo/internal/modules/zone"
	"romuo/internal/notify"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		logger.Fatal("ROMUO_FIREBASE_PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Fatal("firebase init", zap.Error(err))
	}
	resolver := identity.NewFirebaseResolver(verifier)

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	cat, err := catalog.New(catalog.DefaultClasses())
	if err != nil {
		logger.Fatal("vehicle catalog", zap.Error(err))
	}

	zoneSvc := zone.NewService(zone.NewPGStore(dbPool), cat)
	pricingSvc := pricing.NewService(cat, zoneSvc, pricing.DefaultConfig())

	fleetStore := fleet.NewPGStore(dbPool)
	fleetSvc := fleet.NewService(fleetStore, fleet.NewGeoIndex(redisClient), cat, logger)

	dispatcher := notify.NewDispatcher(notify.NewLogSink(logger), cfg.Notify.Buffer, logger)
	go dispatcher.Run(ctx)

	rideStore := ride.NewPGStore(dbPool)
	rideSvc := ride.NewService(rideStore, pricingSvc, fleetSvc, dispatcher, logger)
	if cfg.Maps.APIKey != "" {
		router, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		rideSvc = rideSvc.WithRouter(router)
	}

	dispatchSvc := dispatch.NewService(rideStore, fleetStore)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Rides:    rideSvc,
		Fleet:    fleetSvc,
		Zones:    zoneSvc,
		Pricing:  pricingSvc,
		Catalog:  cat,
		Dispatch: dispatchSvc,
		Resolver: resolver,
		Log:      logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server", zap.Error(err))
	}
}
