package matching

import "github.com/shopspring/decimal"

// tradable is the one predicate shared by the real walk and the FOK
// dry-run (spec.md §4.3 requires both use the same crossing test, so a
// dry-run "yes" can never be followed by a real walk that falls short).
// incoming is the aggressor; levelPrice is a candidate resting price on
// the opposite side.
func tradable(incoming *Order, levelPrice decimal.Decimal) bool {
	if incoming.Type == Market {
		return true
	}
	if incoming.Side == Buy {
		return incoming.Price.GreaterThanOrEqual(levelPrice)
	}
	return incoming.Price.LessThanOrEqual(levelPrice)
}

// Match runs the matching core against incoming and returns the fills it
// produced. For Limit orders with quantity left after the walk, the
// remainder is inserted as a resting order. incoming.Remaining must equal
// incoming.OrigQty on entry; the core mutates it in place as the walk
// consumes quantity.
//
// FOK orders never partially fill: if the two-phase dry-run can't
// account for the full original quantity, Match returns (nil, false) and
// leaves the book untouched. Every other order type always returns
// (fills, true), even when fills is empty (no liquidity is not an
// error — spec.md §7).
func (b *OrderBook) Match(incoming *Order) (fills []Fill, ok bool) {
	if incoming.Type == FOK && !b.canFillFully(incoming) {
		return nil, false
	}

	fills = b.walk(incoming)

	if incoming.Type == Limit && incoming.Remaining.IsPositive() {
		b.InsertResting(incoming)
	}
	return fills, true
}

// walk consumes resting liquidity on the opposite side of incoming's book
// until incoming is filled, the book runs out of tradable levels, or the
// next best price no longer crosses. It mutates the book and incoming.Remaining
// in place.
func (b *OrderBook) walk(incoming *Order) []Fill {
	opp := incoming.Side.Opposite()
	var fills []Fill

	for incoming.Remaining.IsPositive() {
		lvl, found := b.Best(opp)
		if !found || !tradable(incoming, lvl.Price()) {
			break
		}
		for incoming.Remaining.IsPositive() && !lvl.IsEmpty() {
			qty := decimal.Min(incoming.Remaining, lvl.Head().Remaining)
			price := lvl.Price()
			maker := lvl.ConsumeHead(qty)
			incoming.Remaining = incoming.Remaining.Sub(qty)

			fills = append(fills, Fill{
				Symbol:        b.Symbol,
				Price:         price,
				Qty:           qty,
				AggressorSide: incoming.Side,
				MakerOrderID:  maker.ID,
				TakerOrderID:  incoming.ID,
				MakerUserID:   maker.UserID,
				TakerUserID:   incoming.UserID,
			})
		}
		b.removeLevelIfEmpty(opp, lvl)
	}
	return fills
}

// canFillFully is the FOK two-phase dry-run: a non-mutating pass that
// sums tradable volume from best price outward using the same tradable
// predicate the real walk uses, stopping as soon as the running total
// covers incoming's full original quantity.
func (b *OrderBook) canFillFully(incoming *Order) bool {
	opp := incoming.Side.Opposite()
	levels := b.levelsFor(opp)

	prices := make([]decimal.Decimal, 0, len(levels))
	for _, lvl := range levels {
		if lvl.IsEmpty() {
			continue
		}
		prices = append(prices, lvl.Price())
	}

	var better func(a, c decimal.Decimal) bool
	if opp == Sell {
		better = func(a, c decimal.Decimal) bool { return a.LessThan(c) } // asks ascending
	} else {
		better = func(a, c decimal.Decimal) bool { return a.GreaterThan(c) } // bids descending
	}
	sortPrices(prices, better)

	total := decimal.Zero
	for _, p := range prices {
		if !tradable(incoming, p) {
			break
		}
		total = total.Add(levels[canonicalKey(p)].Volume())
		if total.GreaterThanOrEqual(incoming.OrigQty) {
			return true
		}
	}
	return false
}

func sortPrices(prices []decimal.Decimal, better func(a, b decimal.Decimal) bool) {
	for i := 1; i < len(prices); i++ {
		j := i
		for j > 0 && better(prices[j], prices[j-1]) {
			prices[j], prices[j-1] = prices[j-1], prices[j]
			j--
		}
	}
}
