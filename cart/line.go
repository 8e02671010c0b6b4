package cart

// Line is one persisted cart row: a user's chosen variant and quantity.
type Line struct {
	ID        uint
	UserID    uint
	VariantID uint
	Quantity  int
}

// AddItem is a single variant/quantity pair of an add request.
type AddItem struct {
	VariantID uint
	Quantity  int
}

// UpdateRequest changes the variant, the quantity, or both, of an existing line.
type UpdateRequest struct {
	VariantID *uint
	Quantity  *int
}

// targetVariant is the variant the line should reference after the update.
func (r UpdateRequest) targetVariant(line Line) uint {
	if r.VariantID != nil && *r.VariantID != line.VariantID {
		return *r.VariantID
	}
	return line.VariantID
}

func (r UpdateRequest) quantity(line Line) int {
	if r.Quantity != nil {
		return *r.Quantity
	}
	return line.Quantity
}
