package cart

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindVariantNotFound
	KindVariantNotAvailable
	KindInsufficientStock
	KindCartItemNotFound
	KindForbidden
)

// String is the stable code reported to API clients.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindVariantNotFound:
		return "VARIANT_NOT_FOUND"
	case KindVariantNotAvailable:
		return "VARIANT_NOT_AVAILABLE"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindCartItemNotFound:
		return "CART_ITEM_NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	default:
		return "UNKNOWN"
	}
}

// Error is a business rule failure. Two errors match under errors.Is when their
// kinds are equal, so callers compare against the Err* sentinels.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidInput        = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrVariantNotFound     = &Error{Kind: KindVariantNotFound, Message: "variant not found"}
	ErrVariantNotAvailable = &Error{Kind: KindVariantNotAvailable, Message: "variant is not available for purchase"}
	ErrInsufficientStock   = &Error{Kind: KindInsufficientStock, Message: "insufficient stock"}
	ErrCartItemNotFound    = &Error{Kind: KindCartItemNotFound, Message: "cart item not found"}
	ErrForbidden           = &Error{Kind: KindForbidden, Message: "cart item belongs to another user"}
)

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the failure kind of err, or 0 if err is not a business failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
