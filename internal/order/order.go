// Package order is the boundary to whatever processes a finished checkout.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

const OrderIDPrefix = "ORD-"

var ErrRejected = errors.New("order rejected")

type Submitter interface {
	Submit(ctx context.Context, draft models.OrderDraft) error
}

// NewOrderID returns ORD- followed by a time-ordered UUIDv7.
func NewOrderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return OrderIDPrefix + id.String()
}

// StubSubmitter waits Delay and accepts the order, standing in for a backend.
// Drafts without items are rejected with ErrRejected.
type StubSubmitter struct {
	Delay time.Duration
}

func (s StubSubmitter) Submit(ctx context.Context, draft models.OrderDraft) error {
	if len(draft.Items) == 0 {
		return fmt.Errorf("%w: order %s has no items", ErrRejected, draft.OrderID)
	}
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	logging.FromContext(ctx).Info("order_submitted", "order_id", draft.OrderID, "total", draft.Totals.Total.StringFixed(2))
	return nil
}

// EventSubmitter runs Next (when set) and then announces the order on the
// order topic.
type EventSubmitter struct {
	Publisher events.Publisher
	Topic     string
	Next      Submitter
}

func (s EventSubmitter) Submit(ctx context.Context, draft models.OrderDraft) error {
	if s.Next != nil {
		if err := s.Next.Submit(ctx, draft); err != nil {
			return err
		}
	}

	topic := s.Topic
	if topic == "" {
		topic = events.TopicOrder
	}
	event := map[string]any{
		"type":           "order_submitted",
		"orderID":        draft.OrderID,
		"email":          draft.Customer.Email,
		"items":          draft.Items,
		"total":          draft.Totals.Total.StringFixed(2),
		"payment_method": draft.PaymentMethod,
	}
	if err := s.Publisher.Publish(ctx, topic, draft.OrderID, event); err != nil {
		return fmt.Errorf("publish order %s: %w", draft.OrderID, err)
	}
	return nil
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, draft models.OrderDraft) error

func (f SubmitterFunc) Submit(ctx context.Context, draft models.OrderDraft) error {
	return f(ctx, draft)
}
