package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/medicart/medicart-backend/api/controllers"
	"github.com/medicart/medicart-backend/api/routes"
	cartsvc "github.com/medicart/medicart-backend/internal/cart"
	customersvc "github.com/medicart/medicart-backend/internal/customers"
	ordersvc "github.com/medicart/medicart-backend/internal/orders"
	"github.com/medicart/medicart-backend/pkg/config"
	"github.com/medicart/medicart-backend/pkg/fulfillment"
	"github.com/medicart/medicart-backend/pkg/logger"
	"github.com/medicart/medicart-backend/pkg/metrics"
	"github.com/medicart/medicart-backend/pkg/patients"
	"github.com/medicart/medicart-backend/pkg/redis"
	"github.com/medicart/medicart-backend/pkg/userstore"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "pos-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pos-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	userStoreClient, err := userstore.NewClient(cfg.UserStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build user store client", err)
		os.Exit(1)
	}

	patientsClient, err := patients.NewClient(cfg.Patients, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build patient directory client", err)
		os.Exit(1)
	}

	fulfillmentClient, err := fulfillment.NewClient(cfg.Fulfillment, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build fulfillment client", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured, patient details cache disabled")
	}

	carts, err := cartsvc.NewRegistry(userStoreClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart registry", err)
		os.Exit(1)
	}

	sessionOpts := customersvc.RegistryOptions{
		Directory: patientsClient,
		CacheTTL:  cfg.Redis.DetailsTTL,
		Search:    cfg.Search,
		Logger:    logg,
	}
	if redisClient != nil {
		sessionOpts.Cache = redisClient
	}
	sessions, err := customersvc.NewRegistry(sessionOpts)
	if err != nil {
		logg.Error(context.Background(), "failed to build customer session registry", err)
		os.Exit(1)
	}

	workflows, err := ordersvc.NewRegistry(ordersvc.RegistryOptions{
		Carts:          carts,
		Sessions:       sessions,
		Submitter:      fulfillmentClient,
		DefaultZipcode: cfg.Fulfillment.DefaultZipcode,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build order workflow registry", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	upstreams := map[string]controllers.UpstreamPinger{
		"userstore": userStoreClient,
		"patients":  patientsClient,
	}
	if redisClient != nil {
		upstreams["redis"] = redisClient
	}

	handler := routes.NewRouter(routes.Deps{
		Config:    cfg,
		Logger:    logg,
		Metrics:   httpMetrics,
		Carts:     carts,
		Sessions:  sessions,
		Workflows: workflows,
		Upstreams: upstreams,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting pos api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "pos api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "server shutdown failed", err)
		}
	}

	closeErr := multierr.Combine(
		carts.Close(),
		sessions.Close(),
		redisClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "error closing resources", closeErr)
	}
}
