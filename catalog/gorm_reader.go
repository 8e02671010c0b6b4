package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ShowRoomzs/back-end-sub001/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormReader struct {
	db   *gorm.DB
	lock bool
}

func NewGormReader(db *gorm.DB) *GormReader {
	return &GormReader{db: db}
}

// ForUpdate returns a reader whose GetVariant takes a row lock on the variant.
// Only meaningful when db is a transaction.
func (r *GormReader) ForUpdate() *GormReader {
	return &GormReader{db: r.db, lock: true}
}

func (r *GormReader) GetVariant(ctx context.Context, id uint) (Variant, error) {
	q := r.db.WithContext(ctx)
	if r.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var v models.Variant
	if err := q.First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Variant{}, ErrNotFound
		}
		return Variant{}, fmt.Errorf("load variant %d: %w", id, err)
	}

	var p models.Product
	err := r.db.WithContext(ctx).Preload("Market").First(&p, "id = ?", v.ProductID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Product was removed from the catalog; its variants stay visible but unbuyable.
		return fromModel(v, nil), nil
	case err != nil:
		return Variant{}, fmt.Errorf("load product %d: %w", v.ProductID, err)
	}
	return fromModel(v, &p), nil
}

func (r *GormReader) GetVariants(ctx context.Context, ids []uint) (map[uint]Variant, error) {
	out := make(map[uint]Variant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.Variant
	if err := r.db.WithContext(ctx).
		Preload("Product.Market").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}

	for _, v := range rows {
		if v.Product.ID == 0 {
			out[v.ID] = fromModel(v, nil)
			continue
		}
		p := v.Product
		out[v.ID] = fromModel(v, &p)
	}
	return out, nil
}

func fromModel(v models.Variant, p *models.Product) Variant {
	out := Variant{
		ID:           v.ID,
		ProductID:    v.ProductID,
		OptionName:   v.OptionName,
		RegularPrice: v.RegularPrice,
		SalePrice:    v.SalePrice,
		Stock:        v.Stock,
		IsDisplay:    v.IsDisplay && p != nil,
	}
	if p == nil {
		out.Product = Product{ID: v.ProductID}
		return out
	}

	out.Product = Product{
		ID:                    p.ID,
		MarketID:              p.MarketID,
		Name:                  p.Name,
		Thumbnail:             p.Thumbnail,
		DeliveryFee:           p.DeliveryFee,
		DeliveryFreeThreshold: p.DeliveryFreeThreshold,
	}
	if p.Market != nil {
		out.Product.MarketName = p.Market.Name
	}
	return out
}
