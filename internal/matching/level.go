package matching

import "github.com/shopspring/decimal"

// levelNode is one FIFO slot inside a priceLevel. Adapted from the
// teacher's lvNode, simplified to a singly-linked queue: the core never
// removes from the middle of a level, only from the head (a full fill)
// or the whole level at once (emptied), so the backward link the teacher
// carried is dead weight here.
type levelNode struct {
	order *Order
	next  *levelNode
}

// priceLevel is the FIFO queue of resting orders at one price, plus the
// cached aggregate volume invariant (spec L3): volume always equals the
// sum of Remaining across every order currently queued.
type priceLevel struct {
	price  decimal.Decimal
	head   *levelNode
	tail   *levelNode
	count  int
	volume decimal.Decimal
}

func newPriceLevel(price decimal.Decimal) *priceLevel {
	return &priceLevel{price: price, volume: decimal.Zero}
}

func (lvl *priceLevel) Price() decimal.Decimal { return lvl.price }
func (lvl *priceLevel) Volume() decimal.Decimal { return lvl.volume }
func (lvl *priceLevel) IsEmpty() bool           { return lvl.count == 0 }
func (lvl *priceLevel) Count() int              { return lvl.count }

// Append adds an order to the back of the queue (L1: arrival order within
// a level is preserved).
func (lvl *priceLevel) Append(o *Order) {
	n := &levelNode{order: o}
	if lvl.tail == nil {
		lvl.head, lvl.tail = n, n
	} else {
		lvl.tail.next = n
		lvl.tail = n
	}
	lvl.count++
	lvl.volume = lvl.volume.Add(o.Remaining)
}

// Head returns the order at the front of the queue without removing it.
func (lvl *priceLevel) Head() *Order {
	if lvl.head == nil {
		return nil
	}
	return lvl.head.order
}

// ConsumeHead reduces the head order's remaining quantity by qty and the
// level's cached volume along with it. If the head order is fully
// consumed it is popped from the queue. qty must not exceed the head
// order's remaining quantity — the matching core never calls this with a
// larger amount.
func (lvl *priceLevel) ConsumeHead(qty decimal.Decimal) *Order {
	head := lvl.Head()
	if head == nil {
		return nil
	}
	head.Remaining = head.Remaining.Sub(qty)
	lvl.volume = lvl.volume.Sub(qty)
	if head.done() {
		lvl.head = lvl.head.next
		if lvl.head == nil {
			lvl.tail = nil
		}
		lvl.count--
	}
	return head
}

// snapshotOrders walks the level front to back without mutating it and
// returns its orders in queue order. Nothing in the package calls it.
func (lvl *priceLevel) snapshotOrders() []*Order {
	out := make([]*Order, 0, lvl.count)
	for n := lvl.head; n != nil; n = n.next {
		out = append(out, n.order)
	}
	return out
}
