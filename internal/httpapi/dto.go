package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"matchengine/internal/engine"
	"matchengine/internal/matching"
)

// orderRequest is the wire shape of POST /orders (spec §6: symbol,
// order_type, side, quantity, price-unless-market).
type orderRequest struct {
	Symbol    string `json:"symbol" binding:"required"`
	OrderType string `json:"order_type" binding:"required"`
	Side      string `json:"side" binding:"required"`
	Quantity  string `json:"quantity" binding:"required"`
	Price     string `json:"price"`
	UserID    uint64 `json:"user_id"`
}

func (r orderRequest) toSubmitRequest() (engine.SubmitRequest, error) {
	var req engine.SubmitRequest
	req.Symbol = r.Symbol
	req.UserID = r.UserID

	switch r.OrderType {
	case "limit":
		req.Type = matching.Limit
	case "market":
		req.Type = matching.Market
	case "ioc":
		req.Type = matching.IOC
	case "fok":
		req.Type = matching.FOK
	default:
		return req, &engine.ValidationError{Field: "order_type", Reason: "must be one of limit, market, ioc, fok"}
	}

	switch r.Side {
	case "buy":
		req.Side = matching.Buy
	case "sell":
		req.Side = matching.Sell
	default:
		return req, &engine.ValidationError{Field: "side", Reason: "must be buy or sell"}
	}

	qty, err := decimal.NewFromString(r.Quantity)
	if err != nil {
		return req, &engine.ValidationError{Field: "quantity", Reason: "not a valid decimal"}
	}
	req.Qty = qty

	if r.Price != "" {
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return req, &engine.ValidationError{Field: "price", Reason: "not a valid decimal"}
		}
		req.Price = price
	}

	return req, nil
}

// tradeView is one fill in the submission response, per spec §6's
// trades[] schema.
type tradeView struct {
	TradeID      uint64          `json:"trade_id"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	AggressorSide string         `json:"aggressor_side"`
	MakerOrderID uint64          `json:"maker_order_id"`
	TakerOrderID uint64          `json:"taker_order_id"`
	Timestamp    time.Time       `json:"timestamp"`
}

// submitResponse is the full POST /orders response body.
type submitResponse struct {
	Status          string          `json:"status"`
	OrderID         uint64          `json:"order_id"`
	Sequence        uint64          `json:"sequence"`
	Trades          []tradeView     `json:"trades"`
	RemainingQty    decimal.Decimal `json:"remaining_quantity"`
	Reason          string          `json:"reason,omitempty"`
}

func toSubmitResponse(r engine.SubmitResult) submitResponse {
	trades := make([]tradeView, 0, len(r.Trades))
	for _, t := range r.Trades {
		trades = append(trades, tradeView{
			TradeID:       t.TradeID,
			Price:         t.Price,
			Quantity:      t.Qty,
			AggressorSide: t.AggressorSide.String(),
			MakerOrderID:  t.MakerOrderID,
			TakerOrderID:  t.TakerOrderID,
			Timestamp:     t.Timestamp,
		})
	}
	return submitResponse{
		Status:       string(r.Status),
		OrderID:      r.OrderID,
		Sequence:     r.Seq,
		Trades:       trades,
		RemainingQty: r.RemainingQty,
		Reason:       r.Reason,
	}
}

// bookLevel is one (price, aggregate_quantity) pair per spec §6's book
// query contract.
type bookLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

type bookResponse struct {
	Symbol string      `json:"symbol"`
	Bids   []bookLevel `json:"bids"`
	Asks   []bookLevel `json:"asks"`
}

func toBookResponse(symbol string, snap engine.BookSnapshot) bookResponse {
	return bookResponse{
		Symbol: symbol,
		Bids:   toBookLevels(snap.Bids),
		Asks:   toBookLevels(snap.Asks),
	}
}

func toBookLevels(levels []engine.BookLevelView) []bookLevel {
	out := make([]bookLevel, len(levels))
	for i, l := range levels {
		out[i] = bookLevel{Price: l.Price, Quantity: l.Volume}
	}
	return out
}

// statsResponse is the GET /stats contract: per-symbol counters plus the
// process-wide totals and uptime spec §6 names.
type statsResponse struct {
	TotalOrdersAccepted    uint64                     `json:"total_orders_accepted"`
	TotalOrdersRejected    uint64                     `json:"total_orders_rejected"`
	TotalTrades            uint64                     `json:"total_trades"`
	TotalMatchedVolume     map[string]decimal.Decimal `json:"total_matched_volume_per_symbol"`
	UptimeSeconds          float64                    `json:"uptime"`
	InvariantViolations    uint64                     `json:"invariant_violations"`
}
