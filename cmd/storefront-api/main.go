package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/go_storefront/internal/config"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/server/cache"
	"github.com/fjod/go_storefront/internal/server/consumer"
	shttp "github.com/fjod/go_storefront/internal/server/http"
	"github.com/fjod/go_storefront/internal/server/metrics"
	"github.com/fjod/go_storefront/internal/server/publisher"
	"github.com/fjod/go_storefront/internal/server/repository"
	"github.com/fjod/go_storefront/internal/server/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cartCleanerGroup = "storefront-cart-cleaner"

func main() {
	configFile := flag.String("config", "", "config file (.env, .yaml, .json)")
	flag.Parse()

	cfg, err := config.LoadServer(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront-api stopped", zap.Error(err))
	}
	log.Info("server exited")
}

func run(cfg *config.Server, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	mongoDB, err := repository.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return err
	}
	defer mongoDB.Client().Disconnect(context.Background()) //nolint:errcheck
	carts := repository.NewMongoRepository(mongoDB)
	if err := carts.CreateIndexes(connectCtx); err != nil {
		return fmt.Errorf("create cart indexes: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	if err := rdb.Ping(connectCtx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	pg, err := repository.NewPostgres(cfg.PostgresDSN())
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := pg.RunMigrations(); err != nil {
		return err
	}

	catalog, err := repository.NewSQLiteCatalog(cfg.CatalogDBPath)
	if err != nil {
		return err
	}
	defer catalog.Close()
	if err := catalog.RunMigrations(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics(reg)

	cartService := service.NewCartService(carts, cache.NewRedisCache(rdb), catalog, cfg.CurrencyGlyph, log.Named("cart"))
	router := shttp.NewRouter(shttp.RouterConfig{
		Carts:          cartService,
		Orders:         service.NewOrderService(pg, catalog, cartService, cfg.CurrencyGlyph, log.Named("orders")),
		Catalog:        catalog,
		Auth:           service.NewAuthService(pg, cache.NewTokenStore(rdb, cfg.TokenTTL), log.Named("auth")),
		Newsletter:     service.NewNewsletterService(pg),
		Metrics:        m,
		Glyph:          cfg.CurrencyGlyph,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log.Named("http"),
	})

	writer := publisher.NewKafkaWriter(cfg.KafkaBrokers, cfg.OrdersTopic)
	defer writer.Close()
	poller := publisher.NewOutboxPoller(pg, writer, log.Named("outbox"),
		publisher.WithInterval(cfg.OutboxInterval),
		publisher.WithRecorder(m))
	reader := consumer.NewKafkaReader(cfg.KafkaBrokers, cfg.OrdersTopic, cartCleanerGroup)
	defer reader.Close()
	cleaner := consumer.NewCartCleaner(reader, cartService, log.Named("cart-cleaner"))

	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		poller.Run(ctx)
	}()
	go func() {
		defer workers.Done()
		cleaner.Run(ctx)
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("storefront-api starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		workers.Wait()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	workers.Wait()
	return nil
}
