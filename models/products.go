package models

import (
	"time"

	"gorm.io/gorm"
)

// Market is the seller a product belongs to. Shipping is charged once per market.
type Market struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID                    uint    `gorm:"primaryKey;autoIncrement"`
	MarketID              *uint   `gorm:"index"`
	Market                *Market `gorm:"foreignKey:MarketID"`
	Name                  string  `gorm:"not null"`
	Thumbnail             string
	DeliveryFee           *int64 // Flat fee charged when the market subtotal is below the threshold
	DeliveryFreeThreshold *int64 // nil means shipping is never waived
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             gorm.DeletedAt `gorm:"index"`
}

// Variant is the purchasable unit (size/color combination) of a product.
type Variant struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"`
	ProductID    uint    `gorm:"not null;index"`
	Product      Product `gorm:"foreignKey:ProductID"`
	OptionName   string
	RegularPrice *int64
	SalePrice    *int64
	Stock        int  `gorm:"not null"`
	IsDisplay    bool `gorm:"not null"` // no default tag: gorm would overwrite a false zero value
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}
