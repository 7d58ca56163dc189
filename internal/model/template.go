package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Template is a reusable quotation holding an ordered set of service items.
// InternalTotal, ClientTotal and GrandTotal are derived from the current item
// set and recomputed transactionally after every structural or quantity
// change; stored totals never diverge from re-aggregation.
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	Discount    decimal.Decimal `json:"discount"`

	InternalTotal decimal.Decimal `json:"internal_total"`
	ClientTotal   decimal.Decimal `json:"client_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []*ServiceItem `json:"items"`
}

// TemplateTotals is the aggregated money rollup of one template.
type TemplateTotals struct {
	InternalTotal decimal.Decimal `json:"internal_total"`
	ClientTotal   decimal.Decimal `json:"client_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// TemplateInput is the request payload for creating or updating a template.
type TemplateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
}
