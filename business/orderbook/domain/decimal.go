package domain

import (
	"encoding/binary"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/ordermesh/orderbook-aggregator/internal/apperror"
)

// WireScale is the canonical fixed scale every decimal is rescaled to
// before being packed onto the wire. 10 fractional digits comfortably
// covers every venue price/quantity precision seen in practice while
// keeping the 96-bit mantissa well clear of overflow.
const WireScale uint32 = 10

// WireDecimal is the wire-level representation of a decimal: a signed
// 96-bit mantissa (lo/mid/hi words, little-endian) plus a fixed scale,
// along with a human-readable view for logging/debugging.
type WireDecimal struct {
	Lo       uint32
	Mid      uint32
	Hi       uint32
	Scale    uint32
	Negative bool
	View     string
}

// ToWire rescales d to WireScale and packs its mantissa into a 96-bit
// wire decimal. Returns a DecodeError-coded AppError if the rescaled
// mantissa does not fit in 96 bits.
func ToWire(d decimal.Decimal) (WireDecimal, error) {
	scaled := d.Rescale(-int32(WireScale))
	coeff := scaled.Coefficient()

	negative := coeff.Sign() < 0
	abs := new(big.Int).Abs(coeff)

	if abs.BitLen() > 96 {
		return WireDecimal{}, apperror.New(apperror.CodeDecodeError,
			apperror.WithContext("decimal mantissa exceeds 96 bits: "+d.String()))
	}

	var buf [12]byte
	abs.FillBytes(buf[:])

	return WireDecimal{
		Hi:       binary.BigEndian.Uint32(buf[0:4]),
		Mid:      binary.BigEndian.Uint32(buf[4:8]),
		Lo:       binary.BigEndian.Uint32(buf[8:12]),
		Scale:    WireScale,
		Negative: negative,
		View:     scaled.String(),
	}, nil
}

// FromWireDecimal reconstructs a decimal.Decimal from its wire form.
func FromWireDecimal(w WireDecimal) decimal.Decimal {
	var buf [12]byte
	binary.BigEndian.PutUint32(buf[0:4], w.Hi)
	binary.BigEndian.PutUint32(buf[4:8], w.Mid)
	binary.BigEndian.PutUint32(buf[8:12], w.Lo)

	mantissa := new(big.Int).SetBytes(buf[:])
	if w.Negative {
		mantissa.Neg(mantissa)
	}

	return decimal.NewFromBigInt(mantissa, -int32(w.Scale))
}

// CompareWire totally orders two wire decimals by round-tripping them
// back through decimal.Decimal.Cmp.
func CompareWire(a, b WireDecimal) int {
	return FromWireDecimal(a).Cmp(FromWireDecimal(b))
}
