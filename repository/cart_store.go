package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ShowRoomzs/back-end-sub001/cart"
	"github.com/ShowRoomzs/back-end-sub001/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartStore implements cart.Store on the cart_lines table.
type CartStore struct {
	db *gorm.DB
}

func NewCartStore(db *gorm.DB) *CartStore {
	return &CartStore{db: db}
}

func (s *CartStore) FindAllByUser(ctx context.Context, userID uint) ([]cart.Line, error) {
	var rows []models.CartLine
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list cart lines of user %d: %w", userID, err)
	}

	lines := make([]cart.Line, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, toLine(r))
	}
	return lines, nil
}

func (s *CartStore) FindByUserAndVariant(ctx context.Context, userID, variantID uint) (*cart.Line, error) {
	return s.first(s.db.WithContext(ctx).Where("user_id = ? AND variant_id = ?", userID, variantID))
}

// FindByIDAndUser locks the row. Callers lock the line's variant first.
func (s *CartStore) FindByIDAndUser(ctx context.Context, id, userID uint) (*cart.Line, error) {
	return s.first(s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID))
}

func (s *CartStore) FindByID(ctx context.Context, id uint) (*cart.Line, error) {
	return s.first(s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *CartStore) first(q *gorm.DB) (*cart.Line, error) {
	var row models.CartLine
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find cart line: %w", err)
	}
	line := toLine(row)
	return &line, nil
}

func (s *CartStore) Save(ctx context.Context, line cart.Line) (cart.Line, error) {
	if line.ID == 0 {
		row := models.CartLine{
			UserID:    line.UserID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return cart.Line{}, fmt.Errorf("create cart line: %w", err)
		}
		return toLine(row), nil
	}

	res := s.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ? AND user_id = ?", line.ID, line.UserID).
		Updates(map[string]interface{}{
			"variant_id": line.VariantID,
			"quantity":   line.Quantity,
		})
	if res.Error != nil {
		return cart.Line{}, fmt.Errorf("update cart line %d: %w", line.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return cart.Line{}, fmt.Errorf("update cart line %d: %w", line.ID, cart.ErrCartItemNotFound)
	}
	return line, nil
}

// Delete is scoped to the line's owner as well as its id.
func (s *CartStore) Delete(ctx context.Context, line cart.Line) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", line.ID, line.UserID).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return fmt.Errorf("delete cart line %d: %w", line.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete cart line %d: %w", line.ID, cart.ErrCartItemNotFound)
	}
	return nil
}

func (s *CartStore) DeleteAllByUser(ctx context.Context, userID uint) error {
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{}).Error; err != nil {
		return fmt.Errorf("clear cart of user %d: %w", userID, err)
	}
	return nil
}

func (s *CartStore) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("user_id = ?", userID).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count cart lines of user %d: %w", userID, err)
	}
	return n, nil
}

func toLine(r models.CartLine) cart.Line {
	return cart.Line{
		ID:        r.ID,
		UserID:    r.UserID,
		VariantID: r.VariantID,
		Quantity:  r.Quantity,
	}
}
