package repository

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCentsRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"0.01", 1},
		{"36", 3600},
		{"48.5", 4850},
		{"172.99", 17299},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatalf("bad decimal literal %q: %v", tt.in, err)
		}
		c := cents(d)
		if c != tt.want {
			t.Errorf("cents(%s): expected %d, got %d", tt.in, tt.want, c)
		}
		if back := fromCents(c); !back.Equal(d) {
			t.Errorf("fromCents(cents(%s)): expected %s, got %s", tt.in, d, back)
		}
	}
}

func TestNullDecConversion(t *testing.T) {
	if nd := nullDec(nil); nd.Valid {
		t.Error("nullDec(nil) must be invalid")
	}
	if p := decPtr(decimal.NullDecimal{}); p != nil {
		t.Error("decPtr of an invalid NullDecimal must be nil")
	}

	d := decimal.NewFromFloat(2.5)
	nd := nullDec(&d)
	if !nd.Valid || !nd.Decimal.Equal(d) {
		t.Errorf("nullDec lost the value: %+v", nd)
	}
	p := decPtr(nd)
	if p == nil || !p.Equal(d) {
		t.Errorf("decPtr lost the value: %v", p)
	}
}
