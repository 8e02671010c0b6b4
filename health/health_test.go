package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShowRoomzs/back-end-sub001/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func TestHTTPProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)

	r := gin.New()
	r.GET("/healthz", Liveness())
	r.GET("/readyz", Readiness(db))

	for path, want := range map[string]int{"/healthz": http.StatusOK, "/readyz": http.StatusOK} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Fatalf("%s: status %d", path, w.Code)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	_ = sqlDB.Close()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("closed db: status %d", w.Code)
	}
}

func TestWatchFlipsGRPCStatus(t *testing.T) {
	db := testutil.OpenDB(t)
	_, hs := NewGRPCServer()

	check := func() grpc_health_v1.HealthCheckResponse_ServingStatus {
		resp, err := hs.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		return resp.Status
	}
	if got := check(); got != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("initial status %v", got)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	_ = sqlDB.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, db, hs, 10*time.Millisecond, zap.NewNop())
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for check() != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		if time.Now().After(deadline) {
			t.Fatalf("status never flipped to NOT_SERVING")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
}
