package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/cotiza/backend/internal/model"
)

// ErrConcurrentModification is returned when a mutation for an item arrives
// while another mutation for the same item is still in flight and the
// service runs under PolicyReject. The request touched nothing; the caller
// can simply retry.
var ErrConcurrentModification = errors.New("concurrent modification")

// ErrInvalidDiscount is returned when a discount is negative.
var ErrInvalidDiscount = errors.New("invalid discount")

// ConflictPolicy decides what happens to a second mutation request for an
// item whose previous mutation has not committed yet.
type ConflictPolicy int

const (
	// PolicyReject fails the second request with ErrConcurrentModification.
	// This is the default: the UI disables the control during an in-flight
	// save, so a conflict means a stale client.
	PolicyReject ConflictPolicy = iota
	// PolicyQueue blocks the second request and processes it after the
	// first commits, using the latest persisted state as its base.
	PolicyQueue
)

// TemplateService orchestrates quotation templates and their service items.
// Every item mutation runs the full recompute cycle: validate, re-derive the
// item's costs, re-aggregate the template totals over the current item set,
// commit item and totals atomically, and return the refreshed template
// snapshot so callers never need a read-after-write reload.
type TemplateService interface {
	Create(ctx context.Context, input model.TemplateInput) (*model.Template, error)
	Get(ctx context.Context, id string) (*model.Template, error)
	List(ctx context.Context) ([]*model.Template, error)
	Update(ctx context.Context, id string, input model.TemplateInput) (*model.Template, error)
	UpdateDiscount(ctx context.Context, id string, discount decimal.Decimal) (*model.Template, error)
	Delete(ctx context.Context, id string) error

	AddItem(ctx context.Context, templateID string, input model.ServiceItemInput) (*model.Template, error)
	UpdateItem(ctx context.Context, templateID, itemID string, patch model.ServiceItemPatch) (*model.Template, error)
	DeleteItem(ctx context.Context, templateID, itemID string) (*model.Template, error)
}
