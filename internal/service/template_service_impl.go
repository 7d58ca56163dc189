package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cotiza/backend/internal/costing"
	"github.com/cotiza/backend/internal/model"
	"github.com/cotiza/backend/internal/repository"
)

// TemplateServiceImpl is the TemplateService implementation.
type TemplateServiceImpl struct {
	templates repository.TemplateRepository
	items     repository.ServiceItemRepository
	policy    ConflictPolicy

	// itemLocks serializes mutations per item id; templateLocks serializes
	// aggregation per template id. Different templates never share a lock.
	itemLocks     *lockRegistry
	templateLocks *lockRegistry
}

// Option configures a TemplateServiceImpl.
type Option func(*TemplateServiceImpl)

// WithConflictPolicy overrides the default PolicyReject.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(s *TemplateServiceImpl) { s.policy = p }
}

// NewTemplateService creates a TemplateServiceImpl.
func NewTemplateService(templates repository.TemplateRepository, items repository.ServiceItemRepository, opts ...Option) TemplateService {
	s := &TemplateServiceImpl{
		templates:     templates,
		items:         items,
		policy:        PolicyReject,
		itemLocks:     newLockRegistry(),
		templateLocks: newLockRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates an empty template with zero totals.
func (s *TemplateServiceImpl) Create(ctx context.Context, input model.TemplateInput) (*model.Template, error) {
	status := input.Status
	if status == "" {
		status = "draft"
	}
	t := &model.Template{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Status:      status,
		Discount:    decimal.Zero,
		Items:       []*model.ServiceItem{},
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a template with its items.
func (s *TemplateServiceImpl) Get(ctx context.Context, id string) (*model.Template, error) {
	return s.templates.GetByID(ctx, id)
}

// List returns all templates without items.
func (s *TemplateServiceImpl) List(ctx context.Context) ([]*model.Template, error) {
	return s.templates.List(ctx)
}

// Update writes the descriptive fields of a template. Totals are untouched.
func (s *TemplateServiceImpl) Update(ctx context.Context, id string, input model.TemplateInput) (*model.Template, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Name = input.Name
	t.Description = input.Description
	t.Category = input.Category
	if input.Status != "" {
		t.Status = input.Status
	}
	if err := s.templates.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateDiscount sets a new discount and re-aggregates the totals under it.
func (s *TemplateServiceImpl) UpdateDiscount(ctx context.Context, id string, discount decimal.Decimal) (*model.Template, error) {
	if discount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDiscount, discount)
	}
	discount = discount.RoundBank(2)

	unlock := s.lockTemplate(id)
	defer unlock()

	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	totals, err := costing.Aggregate(t.Items, discount)
	if err != nil {
		return nil, err
	}
	if err := s.templates.UpdateDiscountAndTotals(context.WithoutCancel(ctx), id, discount, totals); err != nil {
		return nil, err
	}
	t.Discount = discount
	applyTotals(t, totals)
	return t, nil
}

// Delete removes a template and all its items.
func (s *TemplateServiceImpl) Delete(ctx context.Context, id string) error {
	unlock := s.lockTemplate(id)
	defer unlock()
	return s.templates.Delete(ctx, id)
}

// AddItem adds a catalog service to a template, prices it and re-aggregates.
func (s *TemplateServiceImpl) AddItem(ctx context.Context, templateID string, input model.ServiceItemInput) (*model.Template, error) {
	item := &model.ServiceItem{
		ID:               uuid.NewString(),
		TemplateID:       templateID,
		CatalogServiceID: input.CatalogServiceID,
		ResourceID:       input.ResourceID,
		UnitID:           input.UnitID,
		Name:             input.Name,
		Description:      input.Description,
		UnitName:         input.UnitName,
		ResourceName:     input.ResourceName,
		Formula:          input.Formula,
		CostPerHour:      input.CostPerHour,
		Quantity:         input.Quantity,
		SafetyFactor:     input.SafetyFactor,
		Margin:           input.Margin,
	}
	// Full validation happens here, before any lock or write.
	cost, err := costing.PriceItem(item)
	if err != nil {
		return nil, err
	}
	cost.Apply(item)

	unlock := s.lockTemplate(templateID)
	defer unlock()

	t, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	items := append(t.Items, item)
	totals, err := costing.Aggregate(items, t.Discount)
	if err != nil {
		return nil, err
	}
	if err := s.items.InsertWithTotals(context.WithoutCancel(ctx), item, totals); err != nil {
		return nil, err
	}
	t.Items = items
	applyTotals(t, totals)
	return t, nil
}

// UpdateItem applies a quantity/parameter patch to one item, re-derives its
// costs, re-aggregates the template and commits both atomically. The
// returned template is the authoritative post-commit snapshot.
func (s *TemplateServiceImpl) UpdateItem(ctx context.Context, templateID, itemID string, patch model.ServiceItemPatch) (*model.Template, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	unlockItem, err := s.lockItem(itemID)
	if err != nil {
		return nil, err
	}
	defer unlockItem()

	// Edits to different items of one template are always queued, never
	// rejected: each produces a correct aggregate over the full item set
	// that exists at its own commit point.
	unlockTemplate := s.lockTemplate(templateID)
	defer unlockTemplate()

	t, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	item := findItem(t.Items, itemID)
	if item == nil {
		return nil, repository.ErrNotFound
	}

	applyPatch(item, patch)
	cost, err := costing.PriceItem(item)
	if err != nil {
		return nil, err
	}
	cost.Apply(item)

	totals, err := costing.Aggregate(t.Items, t.Discount)
	if err != nil {
		return nil, err
	}
	// Once the transactional persist starts it runs to completion even if
	// the caller goes away; either both writes land or neither does.
	if err := s.items.UpdateWithTotals(context.WithoutCancel(ctx), item, totals); err != nil {
		return nil, err
	}
	applyTotals(t, totals)
	return t, nil
}

// DeleteItem removes one item and re-aggregates the remaining ones. Sibling
// items keep their own derived values.
func (s *TemplateServiceImpl) DeleteItem(ctx context.Context, templateID, itemID string) (*model.Template, error) {
	unlockItem, err := s.lockItem(itemID)
	if err != nil {
		return nil, err
	}
	defer unlockItem()

	unlockTemplate := s.lockTemplate(templateID)
	defer unlockTemplate()

	t, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if findItem(t.Items, itemID) == nil {
		return nil, repository.ErrNotFound
	}

	remaining := make([]*model.ServiceItem, 0, len(t.Items)-1)
	for _, it := range t.Items {
		if it.ID != itemID {
			remaining = append(remaining, it)
		}
	}
	totals, err := costing.Aggregate(remaining, t.Discount)
	if err != nil {
		return nil, err
	}
	if err := s.items.DeleteWithTotals(context.WithoutCancel(ctx), itemID, templateID, totals); err != nil {
		return nil, err
	}
	t.Items = remaining
	applyTotals(t, totals)
	return t, nil
}

// lockItem acquires the per-item mutation lock according to the conflict
// policy. Under PolicyReject a held lock fails fast with
// ErrConcurrentModification before anything is read or written.
func (s *TemplateServiceImpl) lockItem(itemID string) (func(), error) {
	mu := s.itemLocks.get(itemID)
	if s.policy == PolicyReject {
		if !mu.TryLock() {
			return nil, fmt.Errorf("%w: item %s", ErrConcurrentModification, itemID)
		}
		return mu.Unlock, nil
	}
	mu.Lock()
	return mu.Unlock, nil
}

func (s *TemplateServiceImpl) lockTemplate(templateID string) func() {
	mu := s.templateLocks.get(templateID)
	mu.Lock()
	return mu.Unlock
}

func validatePatch(patch model.ServiceItemPatch) error {
	if patch.Quantity != nil && *patch.Quantity < 1 {
		return fmt.Errorf("%w: quantity %d is below 1", costing.ErrInvalidQuantity, *patch.Quantity)
	}
	if patch.Formula != nil {
		if err := patch.Formula.Validate(); err != nil {
			return fmt.Errorf("%w: %v", costing.ErrInvalidFormulaParameters, err)
		}
	}
	if patch.CostPerHour != nil && patch.CostPerHour.IsNegative() {
		return fmt.Errorf("%w: cost_per_hour must not be negative", costing.ErrInvalidFormulaParameters)
	}
	if patch.SafetyFactor != nil && patch.SafetyFactor.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: safety_factor must be at least 1", costing.ErrInvalidFormulaParameters)
	}
	if patch.Margin != nil && (patch.Margin.IsNegative() || patch.Margin.GreaterThanOrEqual(decimal.NewFromInt(1))) {
		return fmt.Errorf("%w: margin %s is outside [0, 1)", costing.ErrMarginOutOfRange, patch.Margin)
	}
	return nil
}

func applyPatch(item *model.ServiceItem, patch model.ServiceItemPatch) {
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.Formula != nil {
		item.Formula = *patch.Formula
	}
	if patch.CostPerHour != nil {
		item.CostPerHour = *patch.CostPerHour
	}
	if patch.SafetyFactor != nil {
		item.SafetyFactor = *patch.SafetyFactor
	}
	if patch.Margin != nil {
		item.Margin = *patch.Margin
	}
}

func applyTotals(t *model.Template, totals model.TemplateTotals) {
	t.InternalTotal = totals.InternalTotal
	t.ClientTotal = totals.ClientTotal
	t.GrandTotal = totals.GrandTotal
}

func findItem(items []*model.ServiceItem, id string) *model.ServiceItem {
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	return nil
}
