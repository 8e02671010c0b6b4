package repository

import (
	"context"

	"github.com/ShowRoomzs/back-end-sub001/cart"
	"github.com/ShowRoomzs/back-end-sub001/catalog"
	"gorm.io/gorm"
)

// UnitOfWork runs cart operations in a database transaction. Variant reads
// inside the transaction take row locks (SELECT ... FOR UPDATE). The service
// locks every variant a write touches, in ascending id order, before it locks
// or writes a cart line, so writers on the same line or variant queue up
// instead of deadlocking. Postgres' default READ COMMITTED isolation is relied
// on: a statement issued after the lock is granted sees rows committed by the
// previous holder.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Transaction(ctx context.Context, fn func(store cart.Store, variants catalog.Reader) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewCartStore(tx), catalog.NewGormReader(tx).ForUpdate())
	})
}
