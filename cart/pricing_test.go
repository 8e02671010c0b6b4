package cart

import (
	"reflect"
	"testing"

	"github.com/ShowRoomzs/back-end-sub001/catalog"
)

func i64(v int64) *int64 { return &v }

func priced(qty int, regular, sale *int64, market *uint, fee, threshold *int64) PricedLine {
	return PricedLine{
		Line: Line{Quantity: qty},
		Variant: catalog.Variant{
			RegularPrice: regular,
			SalePrice:    sale,
			Product: catalog.Product{
				MarketID:              market,
				DeliveryFee:           fee,
				DeliveryFreeThreshold: threshold,
			},
		},
	}
}

func TestSummarize(t *testing.T) {
	m1, m2 := uintPtr(1), uintPtr(2)

	t.Run("empty cart is all zero", func(t *testing.T) {
		if got := Summarize(nil); got != (Summary{}) {
			t.Fatalf("got %+v", got)
		}
		if got := ShippingByMarket(nil); len(got) != 0 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("two markets, one waived", func(t *testing.T) {
		lines := []PricedLine{
			priced(2, i64(12000), i64(10000), m1, i64(3000), i64(20000)),
			priced(1, i64(5000), i64(5000), m2, i64(2000), nil),
		}
		want := Summary{
			RegularTotal:     29000,
			SaleTotal:        25000,
			DiscountTotal:    4000,
			DeliveryFeeTotal: 2000,
			FinalTotal:       27000,
		}
		if got := Summarize(lines); got != want {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	})

	t.Run("threshold reached exactly waives shipping", func(t *testing.T) {
		lines := []PricedLine{priced(5, i64(10000), i64(10000), m1, i64(3000), i64(50000))}
		if got := Summarize(lines).DeliveryFeeTotal; got != 0 {
			t.Fatalf("delivery fee = %d, want 0", got)
		}
	})

	t.Run("one below threshold pays", func(t *testing.T) {
		lines := []PricedLine{priced(1, i64(49999), i64(49999), m1, i64(3000), i64(50000))}
		if got := Summarize(lines).DeliveryFeeTotal; got != 3000 {
			t.Fatalf("delivery fee = %d, want 3000", got)
		}
	})

	t.Run("market pays its highest fee once", func(t *testing.T) {
		lines := []PricedLine{
			priced(1, i64(1000), i64(1000), m1, i64(2500), nil),
			priced(1, i64(1000), i64(1000), m1, i64(3000), nil),
			priced(1, i64(1000), i64(1000), m1, i64(1000), nil),
		}
		if got := Summarize(lines).DeliveryFeeTotal; got != 3000 {
			t.Fatalf("delivery fee = %d, want 3000", got)
		}
	})

	t.Run("lowest threshold in a market applies", func(t *testing.T) {
		lines := []PricedLine{
			priced(1, i64(30000), i64(30000), m1, i64(3000), i64(50000)),
			priced(1, i64(1000), i64(1000), m1, i64(3000), i64(30000)),
		}
		if got := Summarize(lines).DeliveryFeeTotal; got != 0 {
			t.Fatalf("delivery fee = %d, want 0", got)
		}
	})

	t.Run("market without threshold never waives", func(t *testing.T) {
		lines := []PricedLine{priced(100, i64(100000), i64(100000), m1, i64(3000), nil)}
		if got := Summarize(lines).DeliveryFeeTotal; got != 3000 {
			t.Fatalf("delivery fee = %d, want 3000", got)
		}
	})

	t.Run("free delivery products contribute nothing", func(t *testing.T) {
		lines := []PricedLine{priced(1, i64(1000), i64(1000), m1, i64(0), nil)}
		if got := Summarize(lines); got.DeliveryFeeTotal != 0 || got.FinalTotal != 1000 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("missing prices, fees and market count as zero", func(t *testing.T) {
		lines := []PricedLine{
			priced(3, nil, nil, nil, nil, nil),
			priced(1, i64(2000), i64(1500), nil, i64(500), nil),
		}
		want := Summary{RegularTotal: 2000, SaleTotal: 1500, DiscountTotal: 500, DeliveryFeeTotal: 500, FinalTotal: 2000}
		if got := Summarize(lines); got != want {
			t.Fatalf("got %+v, want %+v", got, want)
		}
		shipping := ShippingByMarket(lines)
		if len(shipping) != 1 || shipping[0].MarketID != 0 {
			t.Fatalf("expected a single market-0 group, got %+v", shipping)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		lines := []PricedLine{
			priced(2, i64(12000), i64(10000), m1, i64(3000), i64(20000)),
			priced(1, i64(5000), i64(5000), m2, i64(2000), nil),
		}
		if a, b := Summarize(lines), Summarize(lines); a != b {
			t.Fatalf("%+v != %+v", a, b)
		}
		if a, b := ShippingByMarket(lines), ShippingByMarket(lines); !reflect.DeepEqual(a, b) {
			t.Fatalf("%+v != %+v", a, b)
		}
	})
}

func TestShippingByMarket(t *testing.T) {
	lines := []PricedLine{
		priced(1, i64(5000), i64(5000), uintPtr(2), i64(2000), nil),
		priced(2, i64(12000), i64(10000), uintPtr(1), i64(3000), i64(20000)),
	}
	got := ShippingByMarket(lines)
	want := []MarketShipping{
		{MarketID: 1, SaleTotal: 20000, DeliveryFee: 3000, FreeThreshold: i64(20000), Charge: 0, Waived: true},
		{MarketID: 2, SaleTotal: 5000, DeliveryFee: 2000, Charge: 2000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDiscountRate(t *testing.T) {
	cases := []struct {
		name          string
		regular, sale *int64
		want          int
	}{
		{"no discount", i64(10000), i64(10000), 0},
		{"ten percent", i64(10000), i64(9000), 10},
		{"half rounds up", i64(200), i64(175), 13},
		{"below half rounds down", i64(300), i64(200), 33},
		{"free", i64(10000), i64(0), 100},
		{"sale above regular clamps", i64(10000), i64(12000), 0},
		{"negative sale clamps", i64(100), i64(-50), 100},
		{"missing regular", nil, i64(5000), 0},
		{"zero regular", i64(0), i64(0), 0},
		{"missing sale", i64(10000), nil, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DiscountRate(tc.regular, tc.sale); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}
