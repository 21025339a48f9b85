// Package matching implements the price-time priority limit order book and
// the matching core that runs against it. The core is a pure, synchronous
// transformation: given a book and an incoming order it produces fills,
// consuming resting liquidity from the book, and rests any Limit remainder.
// It does not know about actors,
// channels, sequence numbers, or wall-clock time — all of that is the
// engine façade's job (see internal/engine).
package matching

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is which side of the book an order sits on or crosses against.
type Side uint8

const (
	Buy Side = iota + 1
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite returns the side a resting order must be on to trade against s.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType is the admission-time tag that selects post-walk behavior.
type OrderType uint8

const (
	Limit OrderType = iota + 1
	Market
	IOC
	FOK
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "limit"
	case Market:
		return "market"
	case IOC:
		return "ioc"
	case FOK:
		return "fok"
	default:
		return "unknown"
	}
}

// HasPrice reports whether this order type carries a limit price. Market
// orders never do; Limit, IOC and FOK always do.
func (t OrderType) HasPrice() bool {
	return t != Market
}

// Order is the in-memory representation of a resting or incoming order.
// Seq and ArrivalTime are assigned by the engine façade before the order
// ever reaches the matching core — the core trusts them as given and never
// mutates them.
type Order struct {
	ID          uint64
	Symbol      string
	Side        Side
	Type        OrderType
	Price       decimal.Decimal // zero/unused when Type == Market
	OrigQty     decimal.Decimal
	Remaining   decimal.Decimal
	Seq         uint64
	ArrivalTime time.Time
	UserID      uint64 // optional, 0 when absent; carried for observability parity
}

func (o *Order) done() bool {
	return !o.Remaining.IsPositive()
}

// Fill is one maker/taker match produced by the core. It carries no trade
// ID or sequence number — the façade assigns those when it turns a Fill
// into a published Trade, exactly as it assigns Order.Seq on admission.
type Fill struct {
	Symbol        string
	Price         decimal.Decimal
	Qty           decimal.Decimal
	AggressorSide Side
	MakerOrderID  uint64
	TakerOrderID  uint64
	MakerUserID   uint64
	TakerUserID   uint64
}
