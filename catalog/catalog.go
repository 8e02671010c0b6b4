// Package catalog is the read-only view of purchasable variants the cart works
// against. Values are plain projections joined from variant, product and market
// rows so callers never trigger lazy loads.
package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("variant not found")

// Product is the part of a product the cart needs for display and shipping.
type Product struct {
	ID                    uint
	MarketID              *uint
	MarketName            string
	Name                  string
	Thumbnail             string
	DeliveryFee           *int64
	DeliveryFreeThreshold *int64
}

type Variant struct {
	ID           uint
	ProductID    uint
	OptionName   string
	RegularPrice *int64
	SalePrice    *int64
	Stock        int
	IsDisplay    bool
	Product      Product
}

// Reader looks up variants by id.
type Reader interface {
	// GetVariant returns ErrNotFound when the variant does not exist.
	GetVariant(ctx context.Context, id uint) (Variant, error)
	// GetVariants returns the variants that exist; missing ids are absent from the map.
	GetVariants(ctx context.Context, ids []uint) (map[uint]Variant, error)
}
