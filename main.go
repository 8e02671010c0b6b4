package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ShowRoomzs/back-end-sub001/cart"
	"github.com/ShowRoomzs/back-end-sub001/config"
	"github.com/ShowRoomzs/back-end-sub001/events"
	"github.com/ShowRoomzs/back-end-sub001/health"
	"github.com/ShowRoomzs/back-end-sub001/logger"
	"github.com/ShowRoomzs/back-end-sub001/middleware"
	"github.com/ShowRoomzs/back-end-sub001/models"
	"github.com/ShowRoomzs/back-end-sub001/repository"
	"github.com/ShowRoomzs/back-end-sub001/routes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(logger.Options{Service: "cart", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ logger init failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(exitCode(log, run(cfg, log)))
}

// exitCode logs the outcome of run and flushes the logger before main exits,
// since os.Exit skips deferred calls.
func exitCode(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("❌ server stopped", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	return code
}

func run(cfg config.Config, log *zap.Logger) error {
	log.Info("✅ Starting application...")
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := models.AutoMigrate(db); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	publisher := newPublisher(cfg, log)
	defer publisher.Close()

	svc := cart.NewService(
		repository.NewUnitOfWork(db),
		cart.WithPublisher(publisher),
		cart.WithLogger(log.Named("cart")),
		cart.WithBulkLimit(cfg.BulkAddLimit),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log.Named("http")), middleware.Recovery(log))

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: !containsWildcard(cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, routes.Deps{
		DB:          db,
		Cart:        svc,
		Logger:      log,
		JWTSecret:   []byte(cfg.JWTSecret),
		AdminAPIKey: cfg.AdminAPIKey,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("🚀 Server running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.GRPCHealthPort > 0 {
		grpcServer, hs := health.NewGRPCServer()
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCHealthPort))
		if err != nil {
			return fmt.Errorf("listen grpc health on %d: %w", cfg.GRPCHealthPort, err)
		}
		g.Go(func() error {
			log.Info("gRPC health server running", zap.Int("port", cfg.GRPCHealthPort))
			return grpcServer.Serve(lis)
		})
		g.Go(func() error {
			health.Watch(gctx, db, hs, 10*time.Second, log.Named("health"))
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			hs.Shutdown()
			grpcServer.GracefulStop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newPublisher connects to RabbitMQ when RABBITMQ_URL is set. A broker that is
// down at startup degrades to no events rather than failing the service.
func newPublisher(cfg config.Config, log *zap.Logger) events.Publisher {
	if cfg.RabbitMQURL == "" {
		log.Info("RABBITMQ_URL not set, cart events disabled")
		return events.NopPublisher{}
	}
	p, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.CartEventsExchange)
	if err != nil {
		log.Warn("❌ RabbitMQ unavailable, cart events disabled", zap.Error(err))
		return events.NopPublisher{}
	}
	log.Info("✅ Publishing cart events", zap.String("exchange", cfg.CartEventsExchange))
	return p
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
