package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cotiza/backend/internal/model"
)

// TemplateRepository persists quotation templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *model.Template) error
	// GetByID loads a template together with its items, ordered by
	// sort_order then id.
	GetByID(ctx context.Context, id string) (*model.Template, error)
	List(ctx context.Context) ([]*model.Template, error)
	// Update writes name, description, category and status.
	Update(ctx context.Context, t *model.Template) error
	// UpdateDiscountAndTotals writes a new discount together with the totals
	// re-aggregated under it.
	UpdateDiscountAndTotals(ctx context.Context, id string, discount decimal.Decimal, totals model.TemplateTotals) error
	Delete(ctx context.Context, id string) error
}

// ServiceItemRepository persists service items. Every write that changes an
// item also carries the re-aggregated template totals; implementations must
// commit both in one transaction so a stored total can never diverge from
// the stored item set.
type ServiceItemRepository interface {
	GetByID(ctx context.Context, id string) (*model.ServiceItem, error)
	InsertWithTotals(ctx context.Context, item *model.ServiceItem, totals model.TemplateTotals) error
	UpdateWithTotals(ctx context.Context, item *model.ServiceItem, totals model.TemplateTotals) error
	DeleteWithTotals(ctx context.Context, itemID, templateID string, totals model.TemplateTotals) error
}
