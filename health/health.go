// Package health exposes liveness and readiness over HTTP and the standard
// gRPC health service for orchestrators that probe over gRPC.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

// Ping checks that the database answers within pingTimeout.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// GET /healthz
func Liveness() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// GET /readyz
func Readiness(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Ping(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// NewGRPCServer returns a gRPC server with the health service registered and
// reporting SERVING.
func NewGRPCServer() (*grpc.Server, *grpchealth.Server) {
	s := grpc.NewServer()
	hs := grpchealth.NewServer()
	grpc_health_v1.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return s, hs
}

// Watch pings the database every interval and flips the overall gRPC health
// status accordingly. It returns when ctx is done.
func Watch(ctx context.Context, db *gorm.DB, hs *grpchealth.Server, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := Ping(ctx, db)
		switch {
		case err != nil && serving:
			log.Warn("database unreachable, reporting NOT_SERVING", zap.Error(err))
			hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			serving = false
		case err == nil && !serving:
			log.Info("database reachable again, reporting SERVING")
			hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
			serving = true
		}
	}
}
