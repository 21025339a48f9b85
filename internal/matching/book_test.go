package matching

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mkOrder(id uint64, side Side, typ OrderType, price, qty string, seq uint64) *Order {
	var p decimal.Decimal
	if price != "" {
		p = decimal.RequireFromString(price)
	}
	q := decimal.RequireFromString(qty)
	return &Order{
		ID:        id,
		Symbol:    "BTC-USD",
		Side:      side,
		Type:      typ,
		Price:     p,
		OrigQty:   q,
		Remaining: q,
		Seq:       seq,
	}
}

func TestPriceLevelFIFO(t *testing.T) {
	lvl := newPriceLevel(decimal.RequireFromString("100"))
	o1 := mkOrder(1, Buy, Limit, "100", "5", 1)
	o2 := mkOrder(2, Buy, Limit, "100", "3", 2)
	lvl.Append(o1)
	lvl.Append(o2)

	if !lvl.Volume().Equal(decimal.RequireFromString("8")) {
		t.Fatalf("expected aggregate volume 8, got %s", lvl.Volume())
	}
	if lvl.Head().ID != 1 {
		t.Fatalf("expected head order 1, got %d", lvl.Head().ID)
	}
	lvl.ConsumeHead(decimal.RequireFromString("5"))
	if lvl.IsEmpty() {
		t.Fatalf("level should still hold order 2")
	}
	if lvl.Head().ID != 2 {
		t.Fatalf("expected head order 2 after order 1 fully consumed, got %d", lvl.Head().ID)
	}
	if !lvl.Volume().Equal(decimal.RequireFromString("3")) {
		t.Fatalf("expected aggregate volume 3 after consume, got %s", lvl.Volume())
	}
	lvl.ConsumeHead(decimal.RequireFromString("3"))
	if !lvl.IsEmpty() {
		t.Fatalf("level should be empty after consuming all orders")
	}
}

func TestOrderBookBestIsPriceThenTime(t *testing.T) {
	ob := NewOrderBook("BTC-USD")
	ob.InsertResting(mkOrder(1, Sell, Limit, "101", "5", 1))
	ob.InsertResting(mkOrder(2, Sell, Limit, "100", "5", 2))
	ob.InsertResting(mkOrder(3, Sell, Limit, "100", "2", 3))

	lvl, ok := ob.Best(Sell)
	if !ok {
		t.Fatalf("expected a best ask")
	}
	if !lvl.Price().Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected best ask price 100, got %s", lvl.Price())
	}
	if lvl.Head().ID != 2 {
		t.Fatalf("expected order 2 first at price 100 (arrived first), got %d", lvl.Head().ID)
	}
}

func TestOrderBookRemovesEmptyLevels(t *testing.T) {
	ob := NewOrderBook("BTC-USD")
	resting := mkOrder(1, Sell, Limit, "100", "5", 1)
	ob.InsertResting(resting)

	taker := mkOrder(2, Buy, Limit, "100", "5", 2)
	fills, ok := ob.Match(taker)
	if !ok || len(fills) != 1 {
		t.Fatalf("expected a single fill, got %v ok=%v", fills, ok)
	}
	if _, found := ob.Best(Sell); found {
		t.Fatalf("expected empty ask side after full consumption")
	}
	if len(ob.askLevels) != 0 {
		t.Fatalf("expected empty ask level entirely removed from map, got %d entries", len(ob.askLevels))
	}
}

func TestSnapshotOrdering(t *testing.T) {
	ob := NewOrderBook("BTC-USD")
	ob.InsertResting(mkOrder(1, Buy, Limit, "99", "1", 1))
	ob.InsertResting(mkOrder(2, Buy, Limit, "101", "1", 2))
	ob.InsertResting(mkOrder(3, Buy, Limit, "100", "1", 3))

	bids, _ := ob.Snapshot(10)
	if len(bids) != 3 {
		t.Fatalf("expected 3 bid levels, got %d", len(bids))
	}
	want := []string{"101", "100", "99"}
	for i, w := range want {
		if !bids[i].Price.Equal(decimal.RequireFromString(w)) {
			t.Fatalf("level %d: expected price %s, got %s", i, w, bids[i].Price)
		}
	}
}
