package cart

import "github.com/ShowRoomzs/back-end-sub001/catalog"

type Action int

const (
	ActionCreate   Action = iota + 1 // first line for the variant
	ActionIncrease                   // existing line for the same variant grows
	ActionUpdate                     // edited line changes in place
	ActionMerge                      // edited line folds into the line already holding the target variant
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionIncrease:
		return "increase"
	case ActionUpdate:
		return "update"
	case ActionMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// Decision is the write a resolver wants applied. Remove is only set for
// ActionMerge and must be deleted before Save is persisted.
type Decision struct {
	Action Action
	Save   Line
	Remove *Line
}

func checkPurchasable(variant *catalog.Variant, id uint) error {
	if variant == nil {
		return newError(KindVariantNotFound, "variant %d not found", id)
	}
	if !variant.IsDisplay {
		return newError(KindVariantNotAvailable, "variant %d is not available for purchase", id)
	}
	return nil
}

func checkStock(variant catalog.Variant, qty int) error {
	if qty > variant.Stock {
		return newError(KindInsufficientStock,
			"requested quantity %d exceeds stock %d for variant %d", qty, variant.Stock, variant.ID)
	}
	return nil
}

// ResolveAdd decides how adding item changes the cart. variant is nil when the
// catalog has no such variant; existing is the user's line for it, if any.
func ResolveAdd(userID uint, item AddItem, variant *catalog.Variant, existing *Line) (Decision, error) {
	if item.Quantity < 1 {
		return Decision{}, newError(KindInvalidInput, "quantity must be at least 1")
	}
	if err := checkPurchasable(variant, item.VariantID); err != nil {
		return Decision{}, err
	}

	if existing == nil {
		if err := checkStock(*variant, item.Quantity); err != nil {
			return Decision{}, err
		}
		return Decision{
			Action: ActionCreate,
			Save:   Line{UserID: userID, VariantID: item.VariantID, Quantity: item.Quantity},
		}, nil
	}

	candidate := existing.Quantity + item.Quantity
	if err := checkStock(*variant, candidate); err != nil {
		return Decision{}, err
	}
	grown := *existing
	grown.Quantity = candidate
	return Decision{Action: ActionIncrease, Save: grown}, nil
}

func ValidateUpdate(req UpdateRequest) error {
	if req.VariantID == nil && req.Quantity == nil {
		return newError(KindInvalidInput, "variant_id or quantity is required")
	}
	if req.Quantity != nil && *req.Quantity < 1 {
		return newError(KindInvalidInput, "quantity must be at least 1")
	}
	return nil
}

// ResolveUpdate decides the new shape of line. target is the variant the line
// will reference afterwards (nil if it does not exist). collision is the user's
// other line already holding target; callers only look it up on a variant swap.
//
// On a collision the pre-existing line survives and the edited line is removed.
func ResolveUpdate(line Line, req UpdateRequest, target *catalog.Variant, collision *Line) (Decision, error) {
	if err := ValidateUpdate(req); err != nil {
		return Decision{}, err
	}
	targetID := req.targetVariant(line)
	qty := req.quantity(line)

	if targetID == line.VariantID {
		if target == nil {
			return Decision{}, newError(KindVariantNotFound, "variant %d not found", targetID)
		}
		if err := checkStock(*target, qty); err != nil {
			return Decision{}, err
		}
		updated := line
		updated.Quantity = qty
		return Decision{Action: ActionUpdate, Save: updated}, nil
	}

	if err := checkPurchasable(target, targetID); err != nil {
		return Decision{}, err
	}

	if collision != nil && collision.ID != line.ID {
		candidate := collision.Quantity + qty
		if err := checkStock(*target, candidate); err != nil {
			return Decision{}, err
		}
		survivor := *collision
		survivor.Quantity = candidate
		removed := line
		return Decision{Action: ActionMerge, Save: survivor, Remove: &removed}, nil
	}

	if err := checkStock(*target, qty); err != nil {
		return Decision{}, err
	}
	updated := line
	updated.VariantID = targetID
	updated.Quantity = qty
	return Decision{Action: ActionUpdate, Save: updated}, nil
}

// ResolveDelete returns the lines to delete for an explicit id list. Every id
// must exist and belong to userID; the first violation fails the whole request.
// Duplicate ids are collapsed.
func ResolveDelete(userID uint, ids []uint, found map[uint]Line) ([]Line, error) {
	if len(ids) == 0 {
		return nil, newError(KindInvalidInput, "no cart items selected")
	}

	seen := make(map[uint]struct{}, len(ids))
	out := make([]Line, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		line, ok := found[id]
		if !ok {
			return nil, newError(KindCartItemNotFound, "cart item %d not found", id)
		}
		if line.UserID != userID {
			return nil, newError(KindForbidden, "cart item %d belongs to another user", id)
		}
		out = append(out, line)
	}
	return out, nil
}
