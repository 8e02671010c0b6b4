package cart

import (
	"context"

	"github.com/ShowRoomzs/back-end-sub001/catalog"
)

// Store persists cart lines. It holds no business rules; the Find* methods
// return a nil line and a nil error when nothing matches.
type Store interface {
	FindAllByUser(ctx context.Context, userID uint) ([]Line, error)
	FindByUserAndVariant(ctx context.Context, userID, variantID uint) (*Line, error)
	// FindByIDAndUser does not distinguish "missing" from "owned by someone else".
	FindByIDAndUser(ctx context.Context, id, userID uint) (*Line, error)
	FindByID(ctx context.Context, id uint) (*Line, error)
	// Save inserts a line with a zero ID and updates it otherwise.
	Save(ctx context.Context, line Line) (Line, error)
	Delete(ctx context.Context, line Line) error
	DeleteAllByUser(ctx context.Context, userID uint) error
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// UnitOfWork runs fn atomically. If fn returns an error nothing it wrote is kept.
// The reader handed to fn serializes writers on the same variant.
type UnitOfWork interface {
	Transaction(ctx context.Context, fn func(store Store, variants catalog.Reader) error) error
}
