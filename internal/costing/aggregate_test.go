package costing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cotiza/backend/internal/model"
)

// pricedItem builds a reference item (stepped{2h, 0.5h}, $10/h,
// safety 1.2, margin 0.25) with fresh derived costs.
func pricedItem(t *testing.T, id string, quantity int) *model.ServiceItem {
	t.Helper()
	item := &model.ServiceItem{
		ID:           id,
		TemplateID:   "tpl-1",
		Formula:      steppedFormula(t, "2", "0.5"),
		CostPerHour:  dec(t, "10"),
		Quantity:     quantity,
		SafetyFactor: dec(t, "1.2"),
		Margin:       dec(t, "0.25"),
	}
	cost, err := PriceItem(item)
	if err != nil {
		t.Fatalf("PriceItem: %v", err)
	}
	cost.Apply(item)
	return item
}

func TestAggregate_EmptySetIsValidAndZero(t *testing.T) {
	totals, err := Aggregate(nil, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.InternalTotal.IsZero() || !totals.ClientTotal.IsZero() || !totals.GrandTotal.IsZero() {
		t.Errorf("expected all-zero totals, got %+v", totals)
	}
}

func TestAggregate_TwoItemScenario(t *testing.T) {
	// two reference items (quantities 3 and 1), discount 20:
	// clientTotal = 48×3 + 48×1 = 192, grandTotal = 192 − 20 = 172.
	items := []*model.ServiceItem{
		pricedItem(t, "a", 3),
		pricedItem(t, "b", 1),
	}
	totals, err := Aggregate(items, dec(t, "20"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.InternalTotal.Equal(dec(t, "144")) {
		t.Errorf("expected internal total 144, got %s", totals.InternalTotal)
	}
	if !totals.ClientTotal.Equal(dec(t, "192")) {
		t.Errorf("expected client total 192, got %s", totals.ClientTotal)
	}
	if !totals.GrandTotal.Equal(dec(t, "172")) {
		t.Errorf("expected grand total 172, got %s", totals.GrandTotal)
	}
}

func TestAggregate_IsOrderIndependent(t *testing.T) {
	a := pricedItem(t, "a", 3)
	b := pricedItem(t, "b", 1)
	c := pricedItem(t, "c", 7)

	want, err := Aggregate([]*model.ServiceItem{a, b, c}, dec(t, "20"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	permutations := [][]*model.ServiceItem{
		{a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}
	for i, perm := range permutations {
		got, err := Aggregate(perm, dec(t, "20"))
		if err != nil {
			t.Fatalf("permutation %d: unexpected error: %v", i, err)
		}
		if !got.InternalTotal.Equal(want.InternalTotal) ||
			!got.ClientTotal.Equal(want.ClientTotal) ||
			!got.GrandTotal.Equal(want.GrandTotal) {
			t.Errorf("permutation %d: totals differ: %+v vs %+v", i, got, want)
		}
	}
}

func TestAggregate_QuantityIncreaseNeverLowersClientTotal(t *testing.T) {
	other := pricedItem(t, "b", 2)
	prev := decimal.Zero
	for q := 1; q <= 10; q++ {
		items := []*model.ServiceItem{pricedItem(t, "a", q), other}
		totals, err := Aggregate(items, decimal.Zero)
		if err != nil {
			t.Fatalf("quantity %d: unexpected error: %v", q, err)
		}
		if totals.ClientTotal.LessThan(prev) {
			t.Errorf("quantity %d: client total dropped from %s to %s", q, prev, totals.ClientTotal)
		}
		prev = totals.ClientTotal
	}
}

func TestAggregate_ClampsNegativeGrandTotalToZero(t *testing.T) {
	items := []*model.ServiceItem{pricedItem(t, "a", 1)}
	totals, err := Aggregate(items, dec(t, "1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.GrandTotal.IsZero() {
		t.Errorf("expected grand total clamped to 0, got %s", totals.GrandTotal)
	}
	// client total itself is not clamped
	if !totals.ClientTotal.Equal(dec(t, "48")) {
		t.Errorf("expected client total 48, got %s", totals.ClientTotal)
	}
}

func TestAggregate_FailsClosedOnStaleDerivedCost(t *testing.T) {
	stale := pricedItem(t, "a", 3)
	stale.InternalCost = dec(t, "1") // diverged from re-derivation

	_, err := Aggregate([]*model.ServiceItem{pricedItem(t, "b", 1), stale}, decimal.Zero)
	if !errors.Is(err, ErrStaleItemCost) {
		t.Fatalf("expected ErrStaleItemCost, got %v", err)
	}
}

func TestAggregate_FailsClosedOnUnpricedItem(t *testing.T) {
	unpriced := &model.ServiceItem{
		ID:           "a",
		Formula:      fixedFormula(t, "4"),
		CostPerHour:  dec(t, "10"),
		Quantity:     1,
		SafetyFactor: dec(t, "1"),
		Margin:       dec(t, "0"),
		// derived fields never set
	}
	_, err := Aggregate([]*model.ServiceItem{unpriced}, decimal.Zero)
	if !errors.Is(err, ErrStaleItemCost) {
		t.Fatalf("expected ErrStaleItemCost, got %v", err)
	}
}
