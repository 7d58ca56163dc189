package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceItem is one priced service line inside a quotation template.
// The catalog fields (CatalogServiceID, ResourceID, UnitID and the display
// names) are copied from the catalog when the item is added and are never
// mutated here. TotalHours, InternalCost and ClientCost are derived on every
// mutation and must never be hand-edited; InternalCost and ClientCost are
// per-unit amounts, quantity is applied during template aggregation.
type ServiceItem struct {
	ID         string `json:"id"`
	TemplateID string `json:"template_id"`

	CatalogServiceID string `json:"catalog_service_id,omitempty"`
	ResourceID       string `json:"resource_id"`
	UnitID           string `json:"unit_id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	UnitName         string `json:"unit_name,omitempty"`
	ResourceName     string `json:"resource_name,omitempty"`

	Formula      Formula         `json:"formula"`
	CostPerHour  decimal.Decimal `json:"cost_per_hour"`
	Quantity     int             `json:"quantity"`
	SafetyFactor decimal.Decimal `json:"safety_factor"`
	Margin       decimal.Decimal `json:"margin"`

	TotalHours   decimal.Decimal `json:"total_hours"`
	InternalCost decimal.Decimal `json:"internal_cost"`
	ClientCost   decimal.Decimal `json:"client_cost"`

	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServiceItemInput is the request payload for adding a catalog service to a
// template.
type ServiceItemInput struct {
	CatalogServiceID string          `json:"catalog_service_id"`
	ResourceID       string          `json:"resource_id"`
	UnitID           string          `json:"unit_id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	UnitName         string          `json:"unit_name"`
	ResourceName     string          `json:"resource_name"`
	Formula          Formula         `json:"formula"`
	CostPerHour      decimal.Decimal `json:"cost_per_hour"`
	Quantity         int             `json:"quantity"`
	SafetyFactor     decimal.Decimal `json:"safety_factor"`
	Margin           decimal.Decimal `json:"margin"`
}

// ServiceItemPatch holds the mutable fields of an item. Nil fields are left
// unchanged.
type ServiceItemPatch struct {
	Quantity     *int             `json:"quantity,omitempty"`
	Formula      *Formula         `json:"formula,omitempty"`
	CostPerHour  *decimal.Decimal `json:"cost_per_hour,omitempty"`
	SafetyFactor *decimal.Decimal `json:"safety_factor,omitempty"`
	Margin       *decimal.Decimal `json:"margin,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p ServiceItemPatch) IsEmpty() bool {
	return p.Quantity == nil && p.Formula == nil && p.CostPerHour == nil &&
		p.SafetyFactor == nil && p.Margin == nil
}
