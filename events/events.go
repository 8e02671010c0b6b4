// Package events publishes cart changes for downstream consumers (analytics,
// recommendation). Publishing is best effort and happens after commit.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeLineAdded    = "cart.line.added"
	TypeLineUpdated  = "cart.line.updated"
	TypeLineMerged   = "cart.line.merged"
	TypeLinesDeleted = "cart.lines.deleted"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	CartID     uint      `json:"cart_id,omitempty"`
	VariantID  uint      `json:"variant_id,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	RemovedIDs []uint    `json:"removed_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(eventType string, userID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
