package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"matchengine/internal/matching"
)

// SubmitRequest is the admission-layer view of an incoming order, before
// a sequence number or arrival timestamp has been assigned.
type SubmitRequest struct {
	Symbol string
	Side   matching.Side
	Type   matching.OrderType
	Price  decimal.Decimal // must be zero for Type == matching.Market, or validation rejects it
	Qty    decimal.Decimal
	UserID uint64
}

// OrderStatus is the terminal status of a processed submission.
type OrderStatus string

const (
	StatusFilled                   OrderStatus = "filled"
	StatusPartiallyFilledResting   OrderStatus = "partially_filled_resting"
	StatusResting                  OrderStatus = "resting"
	StatusPartiallyFilledCancelled OrderStatus = "partially_filled_cancelled"
	StatusRejected                 OrderStatus = "rejected"
)

// TradeView is the façade's public representation of one fill, with the
// trade ID, sequence number and timestamp the matching core never
// assigns itself.
type TradeView struct {
	TradeID      uint64
	Symbol       string
	Price        decimal.Decimal
	Qty          decimal.Decimal
	AggressorSide matching.Side
	MakerOrderID  uint64
	TakerOrderID  uint64
	Seq           uint64
	Timestamp     time.Time
}

// SubmitResult is what Submit returns for a successfully admitted order
// (admission failures return an error instead).
type SubmitResult struct {
	OrderID      uint64
	Seq          uint64
	Status       OrderStatus
	RemainingQty decimal.Decimal
	Trades       []TradeView
	Reason       string // set only when Status == StatusRejected
}

// ReasonFOKUnfillable is the §7 reason code carried on a rejected FOK
// submission's result.
const ReasonFOKUnfillable = "fok_unfillable"

// BookLevelView is one price level in a book snapshot.
type BookLevelView struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
	Orders int
}

// BookSnapshot is the façade's depth query response.
type BookSnapshot struct {
	Symbol string
	Bids   []BookLevelView
	Asks   []BookLevelView
}

// BBOView is the façade's best-bid/offer response.
type BBOView struct {
	Symbol  string
	HasBid  bool
	BidPrice decimal.Decimal
	BidQty   decimal.Decimal
	HasAsk   bool
	AskPrice decimal.Decimal
	AskQty   decimal.Decimal
}

// SymbolStats is what GET /stats reports per symbol, supplementing the
// original Python implementation's get_performance_stats with per-symbol
// granularity instead of one process-wide scalar set.
type SymbolStats struct {
	Symbol         string
	OrdersAccepted uint64
	TradesExecuted uint64
	VolumeTraded   decimal.Decimal
	Faulted        bool
}
