package models

import "time"

// CartLine is one user's intent to buy a quantity of one variant.
// The composite unique index backs the one-line-per-variant rule.
type CartLine struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_lines_user_variant,priority:1"`
	VariantID uint `gorm:"not null;uniqueIndex:idx_cart_lines_user_variant,priority:2;index"`
	Quantity  int  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartLine) TableName() string {
	return "cart_lines"
}
