package cart

import (
	"sort"

	"github.com/ShowRoomzs/back-end-sub001/catalog"
	"github.com/shopspring/decimal"
)

// PricedLine is a cart line joined with its catalog data.
type PricedLine struct {
	Line    Line
	Variant catalog.Variant
}

// Summary is the order-ready price breakdown of a cart. It is derived from the
// current lines on every request and never stored.
type Summary struct {
	RegularTotal     int64 `json:"regular_total"`
	SaleTotal        int64 `json:"sale_total"`
	DiscountTotal    int64 `json:"discount_total"`
	DeliveryFeeTotal int64 `json:"delivery_fee_total"`
	FinalTotal       int64 `json:"final_total"`
}

// MarketShipping is the shipping outcome for one market's share of the cart.
type MarketShipping struct {
	MarketID      uint   `json:"market_id"`
	SaleTotal     int64  `json:"sale_total"`
	DeliveryFee   int64  `json:"delivery_fee"`
	FreeThreshold *int64 `json:"free_threshold"`
	Charge        int64  `json:"charge"`
	Waived        bool   `json:"waived"`
}

// pricedAmounts is a line with every nullable catalog field resolved. It is the
// only place where missing prices, fees and markets are defaulted.
type pricedAmounts struct {
	quantity  int64
	regular   int64
	sale      int64
	fee       int64
	threshold *int64
	marketID  uint
}

func normalize(pl PricedLine) pricedAmounts {
	p := pl.Variant.Product
	a := pricedAmounts{
		quantity:  int64(pl.Line.Quantity),
		regular:   valueOrZero(pl.Variant.RegularPrice),
		sale:      valueOrZero(pl.Variant.SalePrice),
		fee:       valueOrZero(p.DeliveryFee),
		threshold: p.DeliveryFreeThreshold,
	}
	if p.MarketID != nil {
		a.marketID = *p.MarketID
	}
	return a
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

type marketGroup struct {
	saleTotal    int64
	maxFee       int64
	minThreshold *int64
}

func (g *marketGroup) add(a pricedAmounts) {
	g.saleTotal += a.sale * a.quantity
	if a.fee > g.maxFee {
		g.maxFee = a.fee
	}
	if a.threshold != nil && (g.minThreshold == nil || *a.threshold < *g.minThreshold) {
		t := *a.threshold
		g.minThreshold = &t
	}
}

func (g *marketGroup) charge() int64 {
	if g.minThreshold != nil && g.saleTotal >= *g.minThreshold {
		return 0
	}
	return g.maxFee
}

func groupByMarket(lines []PricedLine) map[uint]*marketGroup {
	groups := make(map[uint]*marketGroup)
	for _, pl := range lines {
		a := normalize(pl)
		g, ok := groups[a.marketID]
		if !ok {
			g = &marketGroup{}
			groups[a.marketID] = g
		}
		g.add(a)
	}
	return groups
}

// Summarize computes the cart summary. Each market pays its most expensive
// delivery fee once, waived when the market's sale subtotal reaches the lowest
// free-shipping threshold among its products. An empty cart sums to zero.
func Summarize(lines []PricedLine) Summary {
	var s Summary
	for _, pl := range lines {
		a := normalize(pl)
		s.RegularTotal += a.regular * a.quantity
		s.SaleTotal += a.sale * a.quantity
	}
	for _, g := range groupByMarket(lines) {
		s.DeliveryFeeTotal += g.charge()
	}
	s.DiscountTotal = s.RegularTotal - s.SaleTotal
	s.FinalTotal = s.SaleTotal + s.DeliveryFeeTotal
	return s
}

// ShippingByMarket reports the per-market shipping computation, ordered by market id.
func ShippingByMarket(lines []PricedLine) []MarketShipping {
	groups := groupByMarket(lines)
	out := make([]MarketShipping, 0, len(groups))
	for id, g := range groups {
		charge := g.charge()
		out = append(out, MarketShipping{
			MarketID:      id,
			SaleTotal:     g.saleTotal,
			DeliveryFee:   g.maxFee,
			FreeThreshold: g.minThreshold,
			Charge:        charge,
			Waived:        charge == 0 && g.maxFee > 0,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MarketID < out[j].MarketID })
	return out
}

var hundred = decimal.NewFromInt(100)

// DiscountRate is the whole-percent discount of sale against regular, rounded
// half up and clamped to [0, 100]. A missing or non-positive regular price
// yields 0.
func DiscountRate(regular, sale *int64) int {
	r := valueOrZero(regular)
	if r <= 0 {
		return 0
	}
	s := valueOrZero(sale)

	rate := decimal.NewFromInt(r - s).
		Mul(hundred).
		Div(decimal.NewFromInt(r)).
		Round(0).
		IntPart()
	switch {
	case rate < 0:
		return 0
	case rate > 100:
		return 100
	}
	return int(rate)
}
