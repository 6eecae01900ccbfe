// Package checkout computes order totals, validates the contact and payment
// form and hands a finished OrderDraft to the order submitter.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/order"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrSubmissionFailed     = errors.New("order submission failed")
)

type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, string(f))
	}
	slices.Sort(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

type Cart interface {
	Items() []models.CartLineItem
	RemoveOrdered(ctx context.Context, ordered []models.CartLineItem) error
}

const MsgCartRetained = "Your order was placed, but the ordered items are still in your cart. Please do not submit them again."

// Confirmation is returned once the submitter accepted the order. When the
// ordered lines could not be taken out of the cart, CartRetained is set and
// Warning tells the customer.
type Confirmation struct {
	OrderID      string `json:"order_id"`
	CartRetained bool   `json:"cart_retained,omitempty"`
	Warning      string `json:"warning,omitempty"`
}

type Service struct {
	Cart       Cart
	Submitter  order.Submitter
	Rates      Rates
	NewOrderID func() string
	Now        func() time.Time

	submitting atomic.Bool
}

func NewService(c Cart, sub order.Submitter, rates Rates) *Service {
	return &Service{
		Cart:       c,
		Submitter:  sub,
		Rates:      rates,
		NewOrderID: order.NewOrderID,
		Now:        time.Now,
	}
}

func (s *Service) Summary() ([]models.CartLineItem, models.Totals) {
	items := s.Cart.Items()
	return items, ComputeTotals(items, s.Rates)
}

// Submitting reports whether a submission is running, i.e. whether the
// submit control should be disabled.
func (s *Service) Submitting() bool {
	return s.submitting.Load()
}

// Submit validates the form and, if it passes, submits an order for the
// current cart. Only after the submitter accepted the order are the ordered
// lines taken out of the cart; lines added meanwhile stay. On any failure
// the cart is untouched and Submit may be called again.
func (s *Service) Submit(ctx context.Context, f Form) (Confirmation, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.submit")

	if errs := Validate(f); len(errs) > 0 {
		return Confirmation{}, &ValidationError{Fields: errs}
	}

	items, totals := s.Summary()
	if len(items) == 0 {
		return Confirmation{}, ErrEmptyCart
	}

	if !s.submitting.CompareAndSwap(false, true) {
		return Confirmation{}, ErrSubmissionInProgress
	}
	defer s.submitting.Store(false)

	draft := models.OrderDraft{
		OrderID:       s.NewOrderID(),
		Customer:      f.Customer(),
		Items:         items,
		Totals:        totals,
		PaymentMethod: models.PaymentMethod(f.PaymentMethod),
		CreatedAt:     s.Now().UTC(),
	}

	if err := s.Submitter.Submit(ctx, draft); err != nil {
		l.Error("order_submission_failed", "order_id", draft.OrderID, "error", err)
		return Confirmation{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	conf := Confirmation{OrderID: draft.OrderID}
	if err := s.Cart.RemoveOrdered(ctx, items); err != nil {
		l.Error("cart_update_after_order_failed", "order_id", draft.OrderID, "error", err)
		conf.CartRetained = true
		conf.Warning = MsgCartRetained
	}

	l.Info("order_placed", "order_id", draft.OrderID, "items", len(items))
	return conf, nil
}
