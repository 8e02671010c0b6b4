// Package testutil opens throwaway databases with the service schema and
// seeds catalog rows for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ShowRoomzs/back-end-sub001/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated sqlite database in t's temp dir. SQLite has no row
// locks, so the pool is limited to one connection and transactions serialize.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cart.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func Int64(v int64) *int64 { return &v }

func Uint(v uint) *uint { return &v }

func CreateMarket(t *testing.T, db *gorm.DB, name string) models.Market {
	t.Helper()
	m := models.Market{Name: name}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("create market: %v", err)
	}
	return m
}

// ProductSpec describes a seeded product. A nil MarketID leaves the product
// without a market.
type ProductSpec struct {
	MarketID              *uint
	Name                  string
	DeliveryFee           *int64
	DeliveryFreeThreshold *int64
}

func CreateProduct(t *testing.T, db *gorm.DB, spec ProductSpec) models.Product {
	t.Helper()
	name := spec.Name
	if name == "" {
		name = "product"
	}
	p := models.Product{
		MarketID:              spec.MarketID,
		Name:                  name,
		Thumbnail:             "/uploads/products/" + name + ".jpg",
		DeliveryFee:           spec.DeliveryFee,
		DeliveryFreeThreshold: spec.DeliveryFreeThreshold,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

type VariantSpec struct {
	ProductID    uint
	OptionName   string
	RegularPrice int64
	SalePrice    int64
	Stock        int
	Hidden       bool
}

func CreateVariant(t *testing.T, db *gorm.DB, spec VariantSpec) models.Variant {
	t.Helper()
	v := models.Variant{
		ProductID:    spec.ProductID,
		OptionName:   spec.OptionName,
		RegularPrice: Int64(spec.RegularPrice),
		SalePrice:    Int64(spec.SalePrice),
		Stock:        spec.Stock,
		IsDisplay:    !spec.Hidden,
	}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return v
}

// OpenPostgres connects to TEST_DATABASE_URL, migrates it and empties the cart
// and catalog tables before and after the test. It skips when the variable is
// unset. Unlike OpenDB it keeps a real connection pool, so row locks matter.
func OpenPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	truncate := func() {
		if err := db.Exec("TRUNCATE cart_lines, variants, products, markets RESTART IDENTITY CASCADE").Error; err != nil {
			t.Fatalf("truncate: %v", err)
		}
	}
	truncate()
	t.Cleanup(func() {
		truncate()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
