package costing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cotiza/backend/internal/model"
)

// Aggregate reduces the current item set of a template into its money totals:
//
//	internalTotal = Σ item.internalCost × item.quantity
//	clientTotal   = Σ item.clientCost × item.quantity
//	grandTotal    = clientTotal − discount, clamped at zero
//
// An empty item set is valid and yields all-zero totals. Items are summed in
// ascending id order so totals are reproducible regardless of the order the
// caller loaded them in.
//
// Aggregation is fail-closed: every item's stored derived costs are checked
// against re-derivation, and any mismatch aborts with ErrStaleItemCost
// instead of folding a stale or missing cost into the totals.
func Aggregate(items []*model.ServiceItem, discount decimal.Decimal) (model.TemplateTotals, error) {
	ordered := make([]*model.ServiceItem, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	internalTotal := decimal.Zero
	clientTotal := decimal.Zero
	for _, item := range ordered {
		fresh, err := PriceItem(item)
		if err != nil {
			return model.TemplateTotals{}, fmt.Errorf("item %s: %w", item.ID, err)
		}
		if !fresh.TotalHours.Equal(item.TotalHours) ||
			!fresh.InternalCost.Equal(item.InternalCost) ||
			!fresh.ClientCost.Equal(item.ClientCost) {
			return model.TemplateTotals{}, fmt.Errorf("%w: item %s", ErrStaleItemCost, item.ID)
		}

		qty := decimal.NewFromInt(int64(item.Quantity))
		internalTotal = internalTotal.Add(item.InternalCost.Mul(qty))
		clientTotal = clientTotal.Add(item.ClientCost.Mul(qty))
	}

	grandTotal := clientTotal.Sub(discount)
	if grandTotal.IsNegative() {
		grandTotal = decimal.Zero
	}

	return model.TemplateTotals{
		InternalTotal: internalTotal,
		ClientTotal:   clientTotal,
		GrandTotal:    grandTotal,
	}, nil
}
