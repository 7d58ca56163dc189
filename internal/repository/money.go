package repository

import "github.com/shopspring/decimal"

// Money crosses the persistence boundary as integer minor units (cents in
// BIGINT columns); hours stay NUMERIC. Costing rounds every money value to 2
// decimal places before it reaches this package, so the shift below is exact.

func cents(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func nullDec(p *decimal.Decimal) decimal.NullDecimal {
	if p == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *p, Valid: true}
}

func decPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}
