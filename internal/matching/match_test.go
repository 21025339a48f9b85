package matching

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLimitOrderRestsWhenNoCross(t *testing.T) {
	ob := NewOrderBook("BTC-USD")
	ob.InsertResting(mkOrder(1, Sell, Limit, "105", "5", 1))

	taker := mkOrder(2, Buy, Limit, "100", "5", 2)
	fills, ok := ob.Match(taker)
	if !ok {
		t.Fatalf("limit orders always succeed")
	}
	if len(fills) != 0 {
		t.Fatalf("expected no fills, got %v", fills)
	}
	if !taker.Remaining.Equal(d("5")) {
		t.Fatalf("expected taker to rest with full remaining quantity, got %s", taker.Remaining)
	}
	lvl, ok := ob.Best(Buy)
	if !ok || lvl.Head().ID != 2 {
		t.Fatalf("expected taker resting on the bid side")
	}
}

func TestLimitOrderPartialFillThenRests(t *testing.T) {
	ob := NewOrderBook("BTC-USD")
	ob.InsertResting(mkOrder(1, Sell, Limit, "100", "3", 1))

	taker := mkOrder(2, Buy, Limit, "100", "5", 2)
	fills, ok := ob.Match(taker)
	if !ok || len(fills) != 1 {
		t.Fatalf("expected one fill, got %v ok=%v", fills, ok)
	}
	if !fills[0].Qty.Equal(d("3")) || !fills[0].Price.Equal(d("100")) {
		t.Fatalf("unexpected fill %+v", fills[0])
	}
	lvl, ok := ob.Best(Buy)
	if !ok || !lvl.Head().Remaining.Equal(d("2")) {
		t.Fatalf("expected 2 resting on the bid side")
	}
}

func TestMarketOrderNeverRests(t *testing.T) {
	ob := NewOrderBook("BTC-USD")
	ob.InsertResting(mkOrder(1, Sell, Limit, "100", "2", 1))

	taker := mkOrder(2, Buy, Market, "", "5", 2)
	fills, ok := ob.Match(taker)
	if !ok {
		t.Fatalf("market orders always succeed")
	}
	if len(fills) != 1 || !fills[0].Qty.Equal(d("2")) {
		t.Fatalf("expected a single 2-qty fill, got %v", fills)
	}
	if taker.Remaining.IsZero() {
		t.Fatalf("taker should have 3 unfilled quantity remaining since no more liquidity")
	}
	if !taker.Remaining.Equal(d("3")) {
		t.Fatalf("expected 3 unfilled remaining, got %s", taker.Remaining)
	}
	if _, found := ob.Best(Buy); found {
		t.Fatalf("market orders must never rest on the book")
	}
}

func TestIOCCancelsUnfilledRemainder(t *testing.T) {
	ob := NewOrderBook("BTC-USD")
	ob.InsertResting(mkOrder(1, Sell, Limit, "100", "2", 1))

	taker := mkOrder(2, Buy, IOC, "100", "5", 2)
	fills, ok := ob.Match(taker)
	if !ok || len(fills) != 1 {
		t.Fatalf("expected one fill, got %v ok=%v", fills, ok)
	}
	if !taker.Remaining.Equal(d("3")) {
		t.Fatalf("expected 3 unfilled (cancelled, not resting), got %s", taker.Remaining)
	}
	if _, found := ob.Best(Buy); found {
		t.Fatalf("IOC remainder must never rest on the book")
	}
}

func TestFOKRejectsWhenInsufficientDepth(t *testing.T) {
	ob := NewOrderBook("BTC-USD")
	ob.InsertResting(mkOrder(1, Sell, Limit, "100", "2", 1))
	ob.InsertResting(mkOrder(2, Sell, Limit, "101", "1", 2))

	taker := mkOrder(3, Buy, FOK, "101", "10", 3)
	fills, ok := ob.Match(taker)
	if ok {
		t.Fatalf("expected FOK to be rejected, got fills=%v", fills)
	}
	if len(fills) != 0 {
		t.Fatalf("rejected FOK must produce no fills")
	}
	// book must be untouched
	lvl, _ := ob.Best(Sell)
	if !lvl.Volume().Equal(d("2")) {
		t.Fatalf("expected best ask level untouched, volume=%s", lvl.Volume())
	}
}

func TestFOKFillsAcrossMultipleLevelsWhenSufficient(t *testing.T) {
	ob := NewOrderBook("BTC-USD")
	ob.InsertResting(mkOrder(1, Sell, Limit, "100", "2", 1))
	ob.InsertResting(mkOrder(2, Sell, Limit, "101", "3", 2))

	taker := mkOrder(3, Buy, FOK, "101", "5", 3)
	fills, ok := ob.Match(taker)
	if !ok {
		t.Fatalf("expected FOK to fill fully across two levels")
	}
	if len(fills) != 2 {
		t.Fatalf("expected two fills (one per level), got %v", fills)
	}
	if !taker.Remaining.IsZero() {
		t.Fatalf("expected FOK fully filled, remaining=%s", taker.Remaining)
	}
}

func TestFOKDryRunMatchesRealWalkPredicate(t *testing.T) {
	// A resting ask priced above the taker's limit must not count toward
	// the dry-run total even though it has depth, since it would never be
	// tradable in the real walk either.
	ob := NewOrderBook("BTC-USD")
	ob.InsertResting(mkOrder(1, Sell, Limit, "100", "2", 1))
	ob.InsertResting(mkOrder(2, Sell, Limit, "200", "100", 2))

	taker := mkOrder(3, Buy, FOK, "100", "5", 3)
	fills, ok := ob.Match(taker)
	if ok {
		t.Fatalf("expected rejection: only 2 units are tradable at or below limit price 100, got fills=%v", fills)
	}
}

func TestNoTradeThroughPriceTimePriority(t *testing.T) {
	ob := NewOrderBook("BTC-USD")
	ob.InsertResting(mkOrder(1, Sell, Limit, "102", "5", 1))
	ob.InsertResting(mkOrder(2, Sell, Limit, "100", "5", 2))
	ob.InsertResting(mkOrder(3, Sell, Limit, "101", "5", 3))

	taker := mkOrder(4, Buy, Limit, "102", "12", 4)
	fills, ok := ob.Match(taker)
	if !ok || len(fills) != 3 {
		t.Fatalf("expected three fills walking 100 -> 101 -> 102, got %v", fills)
	}
	wantPrices := []string{"100", "101", "102"}
	for i, w := range wantPrices {
		if !fills[i].Price.Equal(d(w)) {
			t.Fatalf("fill %d: expected price %s, got %s (trade-through / priority violation)", i, w, fills[i].Price)
		}
	}
}
