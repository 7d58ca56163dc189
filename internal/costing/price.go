package costing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cotiza/backend/internal/model"
)

var one = decimal.NewFromInt(1)

// ItemCost is the derived cost of one service item. InternalCost and
// ClientCost are per-unit money amounts rounded half-to-even to 2 decimal
// places; TotalHours keeps full precision.
type ItemCost struct {
	TotalHours   decimal.Decimal `json:"total_hours"`
	InternalCost decimal.Decimal `json:"internal_cost"`
	ClientCost   decimal.Decimal `json:"client_cost"`
}

// PriceItem derives the cost of a single item from its formula, quantity,
// hourly rate, safety factor and margin:
//
//	internalCost = hours × costPerHour × safetyFactor
//	clientCost   = internalCost / (1 − margin)
//
// The safety factor inflates the internal cost basis to absorb estimation
// risk; it does not change the billed hours. The margin is the fraction of
// the client price retained as profit, so the client price is derived by
// markup-to-target rather than a flat multiply.
func PriceItem(item *model.ServiceItem) (ItemCost, error) {
	hours, err := Evaluate(item.Formula, item.Quantity)
	if err != nil {
		return ItemCost{}, err
	}
	if item.CostPerHour.IsNegative() {
		return ItemCost{}, fmt.Errorf("%w: cost_per_hour must not be negative", ErrInvalidFormulaParameters)
	}
	if item.SafetyFactor.LessThan(one) {
		return ItemCost{}, fmt.Errorf("%w: safety_factor must be at least 1", ErrInvalidFormulaParameters)
	}
	if item.Margin.IsNegative() || item.Margin.GreaterThanOrEqual(one) {
		return ItemCost{}, fmt.Errorf("%w: margin %s is outside [0, 1)", ErrMarginOutOfRange, item.Margin)
	}

	internal := hours.Mul(item.CostPerHour).Mul(item.SafetyFactor).RoundBank(2)
	client := internal.Div(one.Sub(item.Margin)).RoundBank(2)

	return ItemCost{
		TotalHours:   hours,
		InternalCost: internal,
		ClientCost:   client,
	}, nil
}

// Apply copies the derived cost onto the item.
func (c ItemCost) Apply(item *model.ServiceItem) {
	item.TotalHours = c.TotalHours
	item.InternalCost = c.InternalCost
	item.ClientCost = c.ClientCost
}
