package matching

import (
	"container/heap"

	"github.com/shopspring/decimal"
)

// LevelView is a read-only snapshot of one side of the book at one price,
// used for depth queries and BBO reporting. It never aliases internal
// state.
type LevelView struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
	Orders int
}

// OrderBook is one symbol's book: a price→level map per side plus a
// lazily-cleaned priority heap of prices, giving O(log n) best-price
// lookup and O(1) amortized insertion. Grounded on the teacher's
// internal/matching/levell_book_heap.go (LevelOrderBookHeap); generalized
// here from int64 ticks to decimal.Decimal prices.
//
// An OrderBook is not safe for concurrent use. The engine façade's
// per-symbol actor is what gives every call here exclusive access.
type OrderBook struct {
	Symbol string

	bidLevels map[string]*priceLevel
	askLevels map[string]*priceLevel
	bidHeap   *priceHeap
	askHeap   *priceHeap
}

func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		Symbol:    symbol,
		bidLevels: make(map[string]*priceLevel),
		askLevels: make(map[string]*priceLevel),
		bidHeap:   newBidHeap(),
		askHeap:   newAskHeap(),
	}
}

// canonicalKey normalizes a decimal so that prices admitted with different
// trailing-zero representations (e.g. "1.50" vs "1.5") land on the same
// map entry and heap slot.
func canonicalKey(p decimal.Decimal) string {
	// Decimal.String drops trailing fractional zeros, so equal values
	// render identically regardless of their exponent.
	return p.String()
}

func (b *OrderBook) levelsFor(side Side) map[string]*priceLevel {
	if side == Buy {
		return b.bidLevels
	}
	return b.askLevels
}

func (b *OrderBook) heapFor(side Side) *priceHeap {
	if side == Buy {
		return b.bidHeap
	}
	return b.askHeap
}

// Best returns the top-of-book level for side, performing lazy heap
// cleanup: stale heap entries (levels already emptied and removed from
// the map) are popped and discarded until a live level surfaces or the
// heap is exhausted.
func (b *OrderBook) Best(side Side) (*priceLevel, bool) {
	h := b.heapFor(side)
	levels := b.levelsFor(side)
	for h.Len() > 0 {
		key := canonicalKey(h.Peek())
		lvl, ok := levels[key]
		if ok && !lvl.IsEmpty() {
			return lvl, true
		}
		heap.Pop(h)
	}
	return nil, false
}

// BBO returns the best bid and ask views. A missing side reports ok=false.
func (b *OrderBook) BBO() (bid LevelView, bidOK bool, ask LevelView, askOK bool) {
	if lvl, ok := b.Best(Buy); ok {
		bid, bidOK = LevelView{Price: lvl.price, Volume: lvl.volume, Orders: lvl.count}, true
	}
	if lvl, ok := b.Best(Sell); ok {
		ask, askOK = LevelView{Price: lvl.price, Volume: lvl.volume, Orders: lvl.count}, true
	}
	return
}

// InsertResting appends order to its level, creating the level (and
// pushing its price onto the heap) if this is the first order at that
// price.
func (b *OrderBook) InsertResting(order *Order) {
	levels := b.levelsFor(order.Side)
	key := canonicalKey(order.Price)
	lvl, ok := levels[key]
	if !ok {
		lvl = newPriceLevel(order.Price)
		levels[key] = lvl
		heap.Push(b.heapFor(order.Side), order.Price)
	}
	lvl.Append(order)
}

// removeLevelIfEmpty drops price out of the map once its level is empty
// (spec B1: the book never carries an empty price-level entry). The heap
// is left with a stale entry — Best()'s lazy cleanup reconciles it on the
// next lookup.
func (b *OrderBook) removeLevelIfEmpty(side Side, lvl *priceLevel) {
	if !lvl.IsEmpty() {
		return
	}
	delete(b.levelsFor(side), canonicalKey(lvl.price))
}

// Snapshot returns up to depth levels per side, best price first.
func (b *OrderBook) Snapshot(depth int) (bids []LevelView, asks []LevelView) {
	bids = snapshotSide(b.bidLevels, depth, func(a, c decimal.Decimal) bool { return a.GreaterThan(c) })
	asks = snapshotSide(b.askLevels, depth, func(a, c decimal.Decimal) bool { return a.LessThan(c) })
	return
}

func snapshotSide(levels map[string]*priceLevel, depth int, better func(a, b decimal.Decimal) bool) []LevelView {
	out := make([]LevelView, 0, len(levels))
	for _, lvl := range levels {
		if lvl.IsEmpty() {
			continue
		}
		out = append(out, LevelView{Price: lvl.price, Volume: lvl.volume, Orders: lvl.count})
	}
	sortViews(out, better)
	if depth > 0 && len(out) > depth {
		out = out[:depth]
	}
	return out
}

func sortViews(views []LevelView, better func(a, b decimal.Decimal) bool) {
	// insertion sort: book depth requested is small (tens of levels), and
	// this runs inside the symbol actor so no allocation-heavy sort.Slice
	// closures are worth pulling in for it.
	for i := 1; i < len(views); i++ {
		j := i
		for j > 0 && better(views[j].Price, views[j-1].Price) {
			views[j], views[j-1] = views[j-1], views[j]
			j--
		}
	}
}
