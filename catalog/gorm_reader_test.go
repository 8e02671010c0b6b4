package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/ShowRoomzs/back-end-sub001/models"
	"github.com/ShowRoomzs/back-end-sub001/testutil"
)

func TestGormReader(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)

	m := testutil.CreateMarket(t, db, "Seoul Select")
	p := testutil.CreateProduct(t, db, testutil.ProductSpec{
		MarketID: testutil.Uint(m.ID), Name: "denim",
		DeliveryFee: testutil.Int64(3000), DeliveryFreeThreshold: testutil.Int64(50000),
	})
	orphan := testutil.CreateProduct(t, db, testutil.ProductSpec{Name: "orphan"})
	v := testutil.CreateVariant(t, db, testutil.VariantSpec{ProductID: p.ID, OptionName: "30", RegularPrice: 59000, SalePrice: 49000, Stock: 4})
	hidden := testutil.CreateVariant(t, db, testutil.VariantSpec{ProductID: p.ID, OptionName: "32", Stock: 4, Hidden: true})
	noMarket := testutil.CreateVariant(t, db, testutil.VariantSpec{ProductID: orphan.ID, Stock: 1})

	t.Run("joins product and market", func(t *testing.T) {
		for _, r := range []*GormReader{NewGormReader(db), NewGormReader(db).ForUpdate()} {
			got, err := r.GetVariant(ctx, v.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Stock != 4 || !got.IsDisplay || *got.SalePrice != 49000 || got.OptionName != "30" {
				t.Fatalf("variant = %+v", got)
			}
			if got.Product.MarketName != "Seoul Select" || *got.Product.MarketID != m.ID ||
				*got.Product.DeliveryFee != 3000 || *got.Product.DeliveryFreeThreshold != 50000 {
				t.Fatalf("product = %+v", got.Product)
			}
		}
	})

	t.Run("missing variant", func(t *testing.T) {
		if _, err := NewGormReader(db).GetVariant(ctx, 9999); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("deleted product makes the variant unavailable", func(t *testing.T) {
		extra := testutil.CreateProduct(t, db, testutil.ProductSpec{MarketID: testutil.Uint(m.ID), Name: "retired"})
		ev := testutil.CreateVariant(t, db, testutil.VariantSpec{ProductID: extra.ID, Stock: 9})
		if err := db.Delete(&models.Product{}, extra.ID).Error; err != nil {
			t.Fatalf("delete product: %v", err)
		}
		got, err := NewGormReader(db).GetVariant(ctx, ev.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.IsDisplay {
			t.Fatalf("variant of a deleted product is still displayed")
		}
		many, err := NewGormReader(db).GetVariants(ctx, []uint{ev.ID})
		if err != nil || many[ev.ID].IsDisplay {
			t.Fatalf("got %+v, %v", many, err)
		}
	})

	t.Run("batch lookup skips missing ids", func(t *testing.T) {
		got, err := NewGormReader(db).GetVariants(ctx, []uint{v.ID, hidden.ID, noMarket.ID, 9999})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d variants", len(got))
		}
		if got[hidden.ID].IsDisplay {
			t.Fatalf("hidden variant reported as displayed")
		}
		if got[noMarket.ID].Product.MarketID != nil || got[noMarket.ID].Product.Name != "orphan" {
			t.Fatalf("orphan product = %+v", got[noMarket.ID].Product)
		}
		if got[v.ID].Product.MarketName != "Seoul Select" {
			t.Fatalf("market not preloaded: %+v", got[v.ID].Product)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		got, err := NewGormReader(db).GetVariants(ctx, nil)
		if err != nil || len(got) != 0 {
			t.Fatalf("got %+v, %v", got, err)
		}
	})
}
