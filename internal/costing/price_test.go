package costing

import (
	"errors"
	"testing"

	"github.com/cotiza/backend/internal/model"
)

func testItem(t *testing.T) *model.ServiceItem {
	t.Helper()
	return &model.ServiceItem{
		ID:           "item-1",
		TemplateID:   "tpl-1",
		Formula:      steppedFormula(t, "2", "0.5"),
		CostPerHour:  dec(t, "10"),
		Quantity:     3,
		SafetyFactor: dec(t, "1.2"),
		Margin:       dec(t, "0.25"),
	}
}

func TestPriceItem_SteppedScenario(t *testing.T) {
	// stepped{base 2h, repeat 0.5h} × 3 = 3h; 3h × $10 × 1.2 = $36 internal;
	// $36 / (1 − 0.25) = $48 client.
	cost, err := PriceItem(testItem(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost.TotalHours.Equal(dec(t, "3")) {
		t.Errorf("expected 3 total hours, got %s", cost.TotalHours)
	}
	if !cost.InternalCost.Equal(dec(t, "36")) {
		t.Errorf("expected internal cost 36, got %s", cost.InternalCost)
	}
	if !cost.ClientCost.Equal(dec(t, "48")) {
		t.Errorf("expected client cost 48, got %s", cost.ClientCost)
	}
}

func TestPriceItem_IsIdempotent(t *testing.T) {
	item := testItem(t)
	first, err := PriceItem(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Apply(item)

	second, err := PriceItem(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.TotalHours.Equal(first.TotalHours) ||
		!second.InternalCost.Equal(first.InternalCost) ||
		!second.ClientCost.Equal(first.ClientCost) {
		t.Errorf("expected identical outputs, got %+v then %+v", first, second)
	}
}

func TestPriceItem_ZeroMarginMeansClientEqualsInternal(t *testing.T) {
	item := testItem(t)
	item.Margin = dec(t, "0")
	cost, err := PriceItem(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost.ClientCost.Equal(cost.InternalCost) {
		t.Errorf("expected client == internal at zero margin, got %s vs %s", cost.ClientCost, cost.InternalCost)
	}
}

func TestPriceItem_RoundsMoneyHalfToEven(t *testing.T) {
	item := testItem(t)
	item.Formula = fixedFormula(t, "1")
	item.Quantity = 1
	item.SafetyFactor = dec(t, "1")
	item.Margin = dec(t, "0")
	item.CostPerHour = dec(t, "10.125")

	cost, err := PriceItem(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost.InternalCost.Equal(dec(t, "10.12")) {
		t.Errorf("expected 10.125 to round to 10.12, got %s", cost.InternalCost)
	}
	// hours keep full precision; only money is rounded
	item.Formula = fixedFormula(t, "0.3333")
	cost, err = PriceItem(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost.TotalHours.Equal(dec(t, "0.3333")) {
		t.Errorf("expected hours to keep full precision, got %s", cost.TotalHours)
	}
}

func TestPriceItem_RejectsMarginOutOfRange(t *testing.T) {
	for _, margin := range []string{"-0.1", "1", "1.5"} {
		item := testItem(t)
		item.Margin = dec(t, margin)
		if _, err := PriceItem(item); !errors.Is(err, ErrMarginOutOfRange) {
			t.Errorf("margin %s: expected ErrMarginOutOfRange, got %v", margin, err)
		}
	}
}

func TestPriceItem_RejectsBadRateAndSafetyFactor(t *testing.T) {
	item := testItem(t)
	item.CostPerHour = dec(t, "-10")
	if _, err := PriceItem(item); !errors.Is(err, ErrInvalidFormulaParameters) {
		t.Errorf("negative rate: expected ErrInvalidFormulaParameters, got %v", err)
	}

	item = testItem(t)
	item.SafetyFactor = dec(t, "0.9")
	if _, err := PriceItem(item); !errors.Is(err, ErrInvalidFormulaParameters) {
		t.Errorf("safety factor below 1: expected ErrInvalidFormulaParameters, got %v", err)
	}
}

func TestPriceItem_PropagatesQuantityError(t *testing.T) {
	item := testItem(t)
	item.Quantity = 0
	if _, err := PriceItem(item); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}
