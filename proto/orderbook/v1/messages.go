// Package orderbookv1 holds the wire message types for the
// OrderbookAggregator service. They are plain Go structs rather than
// protoc-gen-go output: see DESIGN.md for why the message layer is
// hand-authored against a JSON wire codec instead of generated against
// a compiled FileDescriptorProto.
package orderbookv1

// Decimal is a 96-bit-mantissa decimal value: lo/mid/hi hold the
// magnitude big-endian-split into three words, scale and negative carry
// the fixed-point exponent and sign, and view is a human-readable
// rendering for logging and debugging clients that don't want to
// reconstruct the value themselves.
type Decimal struct {
	Lo       uint32 `json:"lo"`
	Mid      uint32 `json:"mid"`
	Hi       uint32 `json:"hi"`
	Scale    uint32 `json:"scale"`
	Negative bool   `json:"negative"`
	View     string `json:"view"`
}

// PriceLevel is one level of a merged summary, tagged with the venue it
// was sourced from.
type PriceLevel struct {
	Exchange string  `json:"exchange"`
	Price    Decimal `json:"price"`
	Amount   Decimal `json:"amount"`
}

// Summary is the merged top-N view of every venue's latest order book.
// HasSpread distinguishes a zero spread from no spread at all (one side
// empty); Spread is only meaningful when HasSpread is true.
type Summary struct {
	Spread    Decimal      `json:"spread"`
	HasSpread bool         `json:"has_spread"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
}

// Empty is the BookSummary request: it carries no fields.
type Empty struct{}
