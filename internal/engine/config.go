package engine

import "github.com/shopspring/decimal"

// SymbolConfig is the admission-time tick/lot table entry for one symbol.
// spec.md §9 leaves where this table comes from as an open question; this
// engine resolves it by loading it once at startup from configuration
// (see pkg/config and cmd/matchengine) rather than inferring it from the
// first order seen for a symbol.
type SymbolConfig struct {
	Symbol string
	Tick   decimal.Decimal
	Lot    decimal.Decimal
}

// onTick reports whether price is an integral multiple of the symbol's
// tick size.
func (c SymbolConfig) onTick(price decimal.Decimal) bool {
	if c.Tick.IsZero() {
		return true
	}
	return price.Mod(c.Tick).IsZero()
}

// onLot reports whether qty is an integral multiple of the symbol's lot
// size.
func (c SymbolConfig) onLot(qty decimal.Decimal) bool {
	if c.Lot.IsZero() {
		return true
	}
	return qty.Mod(c.Lot).IsZero()
}
