package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-pos-api/config"
	"restaurant-pos-api/events"
	"restaurant-pos-api/handlers"
	"restaurant-pos-api/logger"
	"restaurant-pos-api/middleware"
	"restaurant-pos-api/routes"
	"restaurant-pos-api/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(start(os.Stdout))
}

// start returns the process exit code once the logger has been flushed
func start(out io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	log, err := logger.New(out, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 1
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg config.Config, log *zap.Logger) error {
	gin.SetMode(cfg.GinMode)
	if err := middleware.RegisterValidators(); err != nil {
		return err
	}

	db, err := config.OpenDatabase(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	log.Info("Database connected", zap.String("driver", cfg.DBDriver))
	if err := config.SeedAdmin(db, cfg, log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// Order events always reach the local broker (directly, or via redis when
	// several instances share one kitchen feed) and optionally kafka.
	broker := events.NewBroker(64)
	var pubs events.Fanout
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		relay := events.NewRedisRelay(rdb, cfg.RedisChannel, broker, log)
		pubs = append(pubs, relay)
		g.Go(func() error { return relay.Run(ctx) })
		log.Info("Relaying order events through redis", zap.String("addr", cfg.RedisAddr), zap.String("channel", cfg.RedisChannel))
	} else {
		pubs = append(pubs, broker)
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer kafka.Close()
		pubs = append(pubs, kafka)
		log.Info("Publishing order events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	accounts := services.NewAccountService(db)
	h := &handlers.Handler{
		Orders:   services.NewOrderService(db, pubs, log, cfg.Location),
		Reports:  services.NewReportService(db, cfg.Location),
		Accounts: accounts,
		Catalog:  services.NewCatalogService(db),
		Tokens:   middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpire),
		Broker:   broker,
		Log:      log,
	}
	router := routes.NewRouter(h, routes.Options{
		CORSOrigin:      cfg.CORSOrigin,
		LoginRatePerMin: cfg.LoginRatePerMin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// open order streams end when ctx does
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	g.Go(func() error {
		log.Info("Server running", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
