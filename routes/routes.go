package routes

import (
	"github.com/ShowRoomzs/back-end-sub001/cart"
	"github.com/ShowRoomzs/back-end-sub001/health"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	DB          *gorm.DB
	Cart        *cart.Service
	Logger      *zap.Logger
	JWTSecret   []byte
	AdminAPIKey string
}

// SetupRoutes is the single entry-point that wires up probe, User, and Admin route groups.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", health.Liveness())
	r.GET("/readyz", health.Readiness(d.DB))

	// User routes (JWT-protected)
	SetupUserRoutes(r, d)

	// Admin routes (API-Key-protected)
	SetupAdminRoutes(r, d)
}
