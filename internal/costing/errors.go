// Package costing implements the service-item costing engine: it turns a
// billing formula and quantity into labor hours, derives internal and client
// costs for one item, and rolls item costs up into template totals. All
// functions are pure; money is handled as fixed-precision decimals and
// rounded half-to-even to 2 decimal places only at the money boundary.
package costing

import "errors"

var (
	// ErrInvalidQuantity is returned when a quantity is below 1.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidFormulaParameters is returned when a formula or rate field is
	// negative or missing.
	ErrInvalidFormulaParameters = errors.New("invalid formula parameters")
	// ErrMarginOutOfRange is returned when a margin is outside [0, 1).
	ErrMarginOutOfRange = errors.New("margin out of range")
	// ErrStaleItemCost is returned when aggregation encounters an item whose
	// stored derived costs do not match re-derivation. This indicates a
	// programming fault (aggregating over not-yet-priced items), not a user
	// error.
	ErrStaleItemCost = errors.New("stale item cost")
)
