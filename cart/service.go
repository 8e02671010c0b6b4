package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ShowRoomzs/back-end-sub001/catalog"
	"github.com/ShowRoomzs/back-end-sub001/events"
	"go.uber.org/zap"
)

const DefaultBulkLimit = 50

const maxMovedRetries = 3

var errLineMoved = errors.New("cart line moved to another variant")

type LineView struct {
	CartID       uint   `json:"cart_id"`
	VariantID    uint   `json:"variant_id"`
	ProductID    uint   `json:"product_id"`
	MarketID     uint   `json:"market_id"`
	MarketName   string `json:"market_name"`
	ProductName  string `json:"product_name"`
	Thumbnail    string `json:"thumbnail"`
	OptionName   string `json:"option_name"`
	Quantity     int    `json:"quantity"`
	RegularPrice int64  `json:"regular_price"`
	SalePrice    int64  `json:"sale_price"`
	DiscountRate int    `json:"discount_rate"`
	RegularTotal int64  `json:"regular_total"`
	SaleTotal    int64  `json:"sale_total"`
	Stock        int    `json:"stock"`
	IsDisplay    bool   `json:"is_display"`
	SoldOut      bool   `json:"sold_out"`
	ExceedsStock bool   `json:"exceeds_stock"`
}

type CartView struct {
	Items    []LineView       `json:"items"`
	Summary  Summary          `json:"summary"`
	Shipping []MarketShipping `json:"shipping"`
}

type AddResult struct {
	CartID    uint `json:"cart_id"`
	VariantID uint `json:"variant_id"`
	Quantity  int  `json:"quantity"`
}

type BulkAddResult struct {
	AddedCount int `json:"added_count"`
}

type UpdateResult struct {
	CartID    uint    `json:"cart_id"`
	VariantID uint    `json:"variant_id"`
	Quantity  int     `json:"quantity"`
	Summary   Summary `json:"summary"`
}

type DeleteResult struct {
	DeletedIDs   []uint  `json:"deleted_ids"`
	DeletedCount int     `json:"deleted_count"`
	Summary      Summary `json:"summary"`
}

type Service struct {
	uow       UnitOfWork
	publisher events.Publisher
	logger    *zap.Logger
	bulkLimit int
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithBulkLimit caps the number of items in one AddCartBulk call.
func WithBulkLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bulkLimit = n
		}
	}
}

func NewService(uow UnitOfWork, opts ...Option) *Service {
	s := &Service{
		uow:       uow,
		publisher: events.NopPublisher{},
		logger:    zap.NewNop(),
		bulkLimit: DefaultBulkLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) AddCart(ctx context.Context, userID uint, variantID uint, quantity int) (AddResult, error) {
	var d Decision
	err := s.uow.Transaction(ctx, func(store Store, variants catalog.Reader) error {
		var err error
		d, err = s.add(ctx, store, variants, userID, AddItem{VariantID: variantID, Quantity: quantity})
		return err
	})
	if err != nil {
		return AddResult{}, err
	}

	e := events.New(events.TypeLineAdded, userID)
	e.CartID, e.VariantID, e.Quantity = d.Save.ID, d.Save.VariantID, d.Save.Quantity
	s.publish(ctx, e)

	return AddResult{CartID: d.Save.ID, VariantID: d.Save.VariantID, Quantity: d.Save.Quantity}, nil
}

// AddCartBulk applies every item as a single add, in order, inside one
// transaction. The first failing item rolls back the whole batch.
func (s *Service) AddCartBulk(ctx context.Context, userID uint, items []AddItem) (BulkAddResult, error) {
	if len(items) == 0 {
		return BulkAddResult{}, newError(KindInvalidInput, "no items to add")
	}
	if len(items) > s.bulkLimit {
		return BulkAddResult{}, newError(KindInvalidInput, "at most %d items can be added at once", s.bulkLimit)
	}

	var saved []Line
	err := s.uow.Transaction(ctx, func(store Store, variants catalog.Reader) error {
		ids := make([]uint, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.VariantID)
		}
		if _, err := lockVariants(ctx, variants, ids); err != nil {
			return err
		}
		for i, item := range items {
			d, err := s.add(ctx, store, variants, userID, item)
			if err != nil {
				s.logger.Debug("bulk add rejected",
					zap.Uint("user_id", userID), zap.Int("item", i), zap.Error(err))
				return err
			}
			saved = append(saved, d.Save)
		}
		return nil
	})
	if err != nil {
		return BulkAddResult{}, err
	}

	for _, line := range saved {
		e := events.New(events.TypeLineAdded, userID)
		e.CartID, e.VariantID, e.Quantity = line.ID, line.VariantID, line.Quantity
		s.publish(ctx, e)
	}
	return BulkAddResult{AddedCount: len(items)}, nil
}

func (s *Service) GetCart(ctx context.Context, userID uint) (CartView, error) {
	var view CartView
	err := s.uow.Transaction(ctx, func(store Store, variants catalog.Reader) error {
		var err error
		view, err = loadCart(ctx, store, variants, userID)
		return err
	})
	return view, err
}

func (s *Service) CountCart(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.uow.Transaction(ctx, func(store Store, _ catalog.Reader) error {
		var err error
		n, err = store.CountByUser(ctx, userID)
		return err
	})
	return n, err
}

// UpdateCart changes the variant and/or quantity of one of the user's lines.
// When the new variant is already in the cart the two lines merge and the
// result reports the surviving line.
func (s *Service) UpdateCart(ctx context.Context, userID, cartID uint, req UpdateRequest) (UpdateResult, error) {
	if err := ValidateUpdate(req); err != nil {
		return UpdateResult{}, err
	}

	var (
		d       Decision
		summary Summary
	)
	err := s.retryMoved(ctx, func() error {
		return s.uow.Transaction(ctx, func(store Store, variants catalog.Reader) error {
			seen, err := store.FindByID(ctx, cartID)
			if err != nil {
				return err
			}
			if seen == nil || seen.UserID != userID {
				return newError(KindCartItemNotFound, "cart item %d not found", cartID)
			}

			targetID := req.targetVariant(*seen)
			locked, err := lockVariants(ctx, variants, []uint{seen.VariantID, targetID})
			if err != nil {
				return err
			}
			line, err := relock(ctx, store, *seen)
			if err != nil {
				return err
			}

			var collision *Line
			if targetID != line.VariantID {
				if collision, err = store.FindByUserAndVariant(ctx, userID, targetID); err != nil {
					return err
				}
			}

			if d, err = ResolveUpdate(line, req, locked[targetID], collision); err != nil {
				return err
			}
			if d, err = apply(ctx, store, d); err != nil {
				return err
			}

			view, err := loadCart(ctx, store, variants, userID)
			if err != nil {
				return err
			}
			summary = view.Summary
			return nil
		})
	})
	if err != nil {
		return UpdateResult{}, err
	}

	s.logger.Debug("cart line updated",
		zap.Uint("user_id", userID), zap.Uint("cart_id", cartID),
		zap.Stringer("action", d.Action), zap.Uint("surviving_id", d.Save.ID))

	e := events.New(events.TypeLineUpdated, userID)
	if d.Action == ActionMerge {
		e.Type = events.TypeLineMerged
		e.RemovedIDs = []uint{d.Remove.ID}
	}
	e.CartID, e.VariantID, e.Quantity = d.Save.ID, d.Save.VariantID, d.Save.Quantity
	s.publish(ctx, e)

	return UpdateResult{
		CartID:    d.Save.ID,
		VariantID: d.Save.VariantID,
		Quantity:  d.Save.Quantity,
		Summary:   summary,
	}, nil
}

// DeleteCart removes the given lines, or every line of the user when ids is
// empty. Ownership of all ids is checked before anything is deleted.
func (s *Service) DeleteCart(ctx context.Context, userID uint, ids []uint) (DeleteResult, error) {
	var res DeleteResult
	err := s.retryMoved(ctx, func() error {
		res = DeleteResult{}
		return s.uow.Transaction(ctx, func(store Store, variants catalog.Reader) error {
			var doomed []Line
			if len(ids) == 0 {
				all, err := store.FindAllByUser(ctx, userID)
				if err != nil {
					return err
				}
				if err := lockLinesOf(ctx, store, variants, all); err != nil {
					return err
				}
				if err := store.DeleteAllByUser(ctx, userID); err != nil {
					return err
				}
				doomed = all
			} else {
				found := make(map[uint]Line, len(ids))
				for _, id := range ids {
					line, err := store.FindByID(ctx, id)
					if err != nil {
						return err
					}
					if line != nil {
						found[id] = *line
					}
				}
				var err error
				if doomed, err = ResolveDelete(userID, ids, found); err != nil {
					return err
				}
				if err := lockLinesOf(ctx, store, variants, doomed); err != nil {
					return err
				}
				for _, line := range doomed {
					if err := store.Delete(ctx, line); err != nil {
						return err
					}
				}
			}

			res.DeletedIDs = make([]uint, 0, len(doomed))
			for _, line := range doomed {
				res.DeletedIDs = append(res.DeletedIDs, line.ID)
			}
			res.DeletedCount = len(res.DeletedIDs)

			view, err := loadCart(ctx, store, variants, userID)
			if err != nil {
				return err
			}
			res.Summary = view.Summary
			return nil
		})
	})
	if err != nil {
		return DeleteResult{}, err
	}

	if res.DeletedCount > 0 {
		e := events.New(events.TypeLinesDeleted, userID)
		e.RemovedIDs = res.DeletedIDs
		s.publish(ctx, e)
	}
	return res, nil
}

func (s *Service) add(ctx context.Context, store Store, variants catalog.Reader, userID uint, item AddItem) (Decision, error) {
	if item.Quantity < 1 {
		return Decision{}, newError(KindInvalidInput, "quantity must be at least 1")
	}
	variant, err := lookupVariant(ctx, variants, item.VariantID)
	if err != nil {
		return Decision{}, err
	}
	existing, err := store.FindByUserAndVariant(ctx, userID, item.VariantID)
	if err != nil {
		return Decision{}, err
	}
	d, err := ResolveAdd(userID, item, variant, existing)
	if err != nil {
		return Decision{}, err
	}
	return apply(ctx, store, d)
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("publish cart event failed",
			zap.String("type", e.Type), zap.String("event_id", e.ID), zap.Error(err))
	}
}

func apply(ctx context.Context, store Store, d Decision) (Decision, error) {
	if d.Remove != nil {
		if err := store.Delete(ctx, *d.Remove); err != nil {
			return Decision{}, fmt.Errorf("remove merged cart line %d: %w", d.Remove.ID, err)
		}
	}
	saved, err := store.Save(ctx, d.Save)
	if err != nil {
		return Decision{}, fmt.Errorf("save cart line: %w", err)
	}
	d.Save = saved
	return d, nil
}

func lookupVariant(ctx context.Context, variants catalog.Reader, id uint) (*catalog.Variant, error) {
	v, err := variants.GetVariant(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func loadCart(ctx context.Context, store Store, variants catalog.Reader, userID uint) (CartView, error) {
	lines, err := store.FindAllByUser(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })

	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.VariantID)
	}
	found, err := variants.GetVariants(ctx, ids)
	if err != nil {
		return CartView{}, err
	}

	priced := make([]PricedLine, 0, len(lines))
	items := make([]LineView, 0, len(lines))
	for _, l := range lines {
		v, ok := found[l.VariantID]
		if !ok {
			v = catalog.Variant{ID: l.VariantID}
		}
		pl := PricedLine{Line: l, Variant: v}
		priced = append(priced, pl)
		items = append(items, lineView(pl))
	}

	return CartView{
		Items:    items,
		Summary:  Summarize(priced),
		Shipping: ShippingByMarket(priced),
	}, nil
}

func lineView(pl PricedLine) LineView {
	a := normalize(pl)
	v := pl.Variant
	return LineView{
		CartID:       pl.Line.ID,
		VariantID:    pl.Line.VariantID,
		ProductID:    v.ProductID,
		MarketID:     a.marketID,
		MarketName:   v.Product.MarketName,
		ProductName:  v.Product.Name,
		Thumbnail:    v.Product.Thumbnail,
		OptionName:   v.OptionName,
		Quantity:     pl.Line.Quantity,
		RegularPrice: a.regular,
		SalePrice:    a.sale,
		DiscountRate: DiscountRate(v.RegularPrice, v.SalePrice),
		RegularTotal: a.regular * a.quantity,
		SaleTotal:    a.sale * a.quantity,
		Stock:        v.Stock,
		IsDisplay:    v.IsDisplay,
		SoldOut:      v.Stock <= 0,
		ExceedsStock: pl.Line.Quantity > v.Stock,
	}
}

// lockVariants takes the variant row locks for ids in ascending order and
// returns what it read; missing variants map to nil. Every writer locks the
// variants it touches before any cart line, so writers on the same variant
// queue up and lock waits never form a cycle.
func lockVariants(ctx context.Context, variants catalog.Reader, ids []uint) (map[uint]*catalog.Variant, error) {
	sorted := distinctIDs(ids)
	out := make(map[uint]*catalog.Variant, len(sorted))
	for _, id := range sorted {
		v, err := lookupVariant(ctx, variants, id)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

// lockLinesOf locks the variants of lines that were read without a lock, then
// locks the lines themselves and checks none moved to another variant meanwhile.
func lockLinesOf(ctx context.Context, store Store, variants catalog.Reader, lines []Line) error {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.VariantID)
	}
	if _, err := lockVariants(ctx, variants, ids); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := relock(ctx, store, l); err != nil {
			return err
		}
	}
	return nil
}

// relock re-reads seen under a row lock. The caller already holds the lock of
// seen's variant; if the line has since moved to another variant that lock no
// longer covers it and the transaction has to start over.
func relock(ctx context.Context, store Store, seen Line) (Line, error) {
	line, err := store.FindByIDAndUser(ctx, seen.ID, seen.UserID)
	if err != nil {
		return Line{}, err
	}
	if line == nil {
		return Line{}, newError(KindCartItemNotFound, "cart item %d not found", seen.ID)
	}
	if line.VariantID != seen.VariantID {
		return Line{}, errLineMoved
	}
	return *line, nil
}

// retryMoved reruns a transaction that lost a race with a variant swap on one
// of its lines.
func (s *Service) retryMoved(ctx context.Context, tx func() error) error {
	var err error
	for attempt := 1; attempt <= maxMovedRetries; attempt++ {
		if err = tx(); !errors.Is(err, errLineMoved) {
			return err
		}
		s.logger.Debug("cart line moved during transaction, retrying", zap.Int("attempt", attempt))
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", maxMovedRetries, err)
}

func distinctIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
