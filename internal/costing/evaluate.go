package costing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cotiza/backend/internal/model"
)

// Evaluate returns the total labor hours a formula bills for the given
// quantity.
//
//	fixed:        fixedHours (quantity does not scale the hours)
//	proportional: hoursPerUnit × quantity
//	stepped:      baseHours + repeatHours × (quantity − 1)
//
// Deterministic and side-effect free: identical inputs always produce
// identical hours.
func Evaluate(f model.Formula, quantity int) (decimal.Decimal, error) {
	if quantity < 1 {
		return decimal.Zero, fmt.Errorf("%w: quantity %d is below 1", ErrInvalidQuantity, quantity)
	}
	if err := f.Validate(); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidFormulaParameters, err)
	}

	switch f.Kind {
	case model.FormulaFixed:
		return *f.FixedHours, nil
	case model.FormulaProportional:
		return f.HoursPerUnit.Mul(decimal.NewFromInt(int64(quantity))), nil
	case model.FormulaStepped:
		repeats := decimal.NewFromInt(int64(quantity - 1))
		return f.BaseHours.Add(f.RepeatHours.Mul(repeats)), nil
	default:
		// Validate already rejects unknown kinds.
		return decimal.Zero, fmt.Errorf("%w: unknown kind %q", ErrInvalidFormulaParameters, f.Kind)
	}
}
