package matching

import "github.com/shopspring/decimal"

// priceHeap backs both sides' priority structure. Adapted from the
// teacher's minPriceHeap/maxPriceHeap pair (heap_price.go), collapsed
// into one type parameterized by a less function so both sides share one
// implementation instead of two near-identical copies.
type priceHeap struct {
	prices []decimal.Decimal
	less   func(a, b decimal.Decimal) bool
}

func newAskHeap() *priceHeap {
	return &priceHeap{less: func(a, b decimal.Decimal) bool { return a.LessThan(b) }}
}

func newBidHeap() *priceHeap {
	return &priceHeap{less: func(a, b decimal.Decimal) bool { return a.GreaterThan(b) }}
}

func (h *priceHeap) Len() int { return len(h.prices) }
func (h *priceHeap) Less(i, j int) bool {
	return h.less(h.prices[i], h.prices[j])
}
func (h *priceHeap) Swap(i, j int) {
	h.prices[i], h.prices[j] = h.prices[j], h.prices[i]
}
func (h *priceHeap) Push(x interface{}) {
	h.prices = append(h.prices, x.(decimal.Decimal))
}
func (h *priceHeap) Pop() interface{} {
	n := len(h.prices)
	x := h.prices[n-1]
	h.prices = h.prices[:n-1]
	return x
}
func (h *priceHeap) Peek() decimal.Decimal {
	return h.prices[0]
}
