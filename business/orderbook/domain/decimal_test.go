package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ordermesh/orderbook-aggregator/internal/apperror"
)

func TestToWireFromWireRoundTrip(t *testing.T) {
	cases := []string{"0", "0.0024", "-0.0024", "12345.6789", "-99999999.0001"}

	for _, s := range cases {
		d := decimal.RequireFromString(s)
		wire, err := ToWire(d)
		if err != nil {
			t.Fatalf("ToWire(%s): %v", s, err)
		}
		back := FromWireDecimal(wire)
		if !back.Equal(d) {
			t.Fatalf("round trip mismatch for %s: got %s", s, back.String())
		}
	}
}

func TestToWireRejectsOverflowingMantissa(t *testing.T) {
	huge := decimal.RequireFromString("1" + strings.Repeat("0", 40))
	if _, err := ToWire(huge); apperror.GetCode(err) != apperror.CodeDecodeError {
		t.Fatalf("expected CodeDecodeError for overflowing mantissa, got %v", err)
	}
}

func TestCompareWireOrdersByValue(t *testing.T) {
	low, _ := ToWire(decimal.RequireFromString("1.5"))
	high, _ := ToWire(decimal.RequireFromString("2.5"))

	if CompareWire(low, high) >= 0 {
		t.Fatal("expected low < high")
	}
	if CompareWire(high, low) <= 0 {
		t.Fatal("expected high > low")
	}
	if CompareWire(low, low) != 0 {
		t.Fatal("expected equal decimals to compare equal")
	}
}
