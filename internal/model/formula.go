package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormulaKind identifies how a billing formula maps quantity to labor hours.
type FormulaKind string

const (
	// FormulaFixed bills a constant number of hours regardless of quantity.
	FormulaFixed FormulaKind = "fixed"
	// FormulaProportional bills hours linearly per unit.
	FormulaProportional FormulaKind = "proportional"
	// FormulaStepped bills the first unit at base hours and every additional
	// unit at repeat hours.
	FormulaStepped FormulaKind = "stepped"
)

// Formula is the billing rule of a service item. Only the fields required by
// Kind are set; the constructors and Validate reject payloads that miss them
// or carry negative values, so a stored Formula is always usable as-is.
type Formula struct {
	Kind         FormulaKind      `json:"kind"`
	FixedHours   *decimal.Decimal `json:"fixed_hours,omitempty"`
	HoursPerUnit *decimal.Decimal `json:"hours_per_unit,omitempty"`
	BaseHours    *decimal.Decimal `json:"base_hours,omitempty"`
	RepeatHours  *decimal.Decimal `json:"repeat_hours,omitempty"`
}

// NewFixedFormula builds a fixed-hours formula.
func NewFixedFormula(fixedHours decimal.Decimal) (Formula, error) {
	f := Formula{Kind: FormulaFixed, FixedHours: &fixedHours}
	if err := f.Validate(); err != nil {
		return Formula{}, err
	}
	return f, nil
}

// NewProportionalFormula builds a per-unit formula.
func NewProportionalFormula(hoursPerUnit decimal.Decimal) (Formula, error) {
	f := Formula{Kind: FormulaProportional, HoursPerUnit: &hoursPerUnit}
	if err := f.Validate(); err != nil {
		return Formula{}, err
	}
	return f, nil
}

// NewSteppedFormula builds a base-plus-repeat formula.
func NewSteppedFormula(baseHours, repeatHours decimal.Decimal) (Formula, error) {
	f := Formula{Kind: FormulaStepped, BaseHours: &baseHours, RepeatHours: &repeatHours}
	if err := f.Validate(); err != nil {
		return Formula{}, err
	}
	return f, nil
}

// Validate checks that the fields required by Kind are present and
// non-negative, and that no field of another kind is set.
func (f Formula) Validate() error {
	switch f.Kind {
	case FormulaFixed:
		if err := requireHours("fixed_hours", f.FixedHours); err != nil {
			return err
		}
		return rejectHours(map[string]*decimal.Decimal{
			"hours_per_unit": f.HoursPerUnit,
			"base_hours":     f.BaseHours,
			"repeat_hours":   f.RepeatHours,
		})
	case FormulaProportional:
		if err := requireHours("hours_per_unit", f.HoursPerUnit); err != nil {
			return err
		}
		return rejectHours(map[string]*decimal.Decimal{
			"fixed_hours":  f.FixedHours,
			"base_hours":   f.BaseHours,
			"repeat_hours": f.RepeatHours,
		})
	case FormulaStepped:
		if err := requireHours("base_hours", f.BaseHours); err != nil {
			return err
		}
		if err := requireHours("repeat_hours", f.RepeatHours); err != nil {
			return err
		}
		return rejectHours(map[string]*decimal.Decimal{
			"fixed_hours":    f.FixedHours,
			"hours_per_unit": f.HoursPerUnit,
		})
	case "":
		return fmt.Errorf("formula kind is required")
	default:
		return fmt.Errorf("unknown formula kind %q", f.Kind)
	}
}

func requireHours(field string, v *decimal.Decimal) error {
	if v == nil {
		return fmt.Errorf("formula field %s is required", field)
	}
	if v.IsNegative() {
		return fmt.Errorf("formula field %s must not be negative", field)
	}
	return nil
}

func rejectHours(fields map[string]*decimal.Decimal) error {
	for name, v := range fields {
		if v != nil {
			return fmt.Errorf("formula field %s is not allowed for this kind", name)
		}
	}
	return nil
}
