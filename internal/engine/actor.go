package engine

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"matchengine/internal/matching"
	"matchengine/pkg/logger"
)

// request is one message in a symbol actor's mailbox: an admitted order
// plus the channel its caller is waiting on for the result. Grounded on
// the teacher's internal/engine/actor.go SymbolActor, stripped of the
// WAL batch-write and outbox-emit steps that existed there only to give
// commands durability — this engine has no durability goal to serve.
type request struct {
	order *matching.Order
	reply chan response
}

type response struct {
	result SubmitResult
	err    error
}

// symbolActor owns one symbol's book exclusively. Every mutation to the
// book happens on this goroutine, which is what makes "exclusive
// critical section, no concurrent mutation" true without a lock: nothing
// outside this goroutine ever touches book.
type symbolActor struct {
	symbol  string
	book    *matching.OrderBook
	mailbox chan request
	reads   chan func()

	eng *Engine

	faulted bool
	trades  *tradeRing
	stats   SymbolStats
}

func newSymbolActor(symbol string, eng *Engine) *symbolActor {
	return &symbolActor{
		symbol:  symbol,
		book:    matching.NewOrderBook(symbol),
		mailbox: make(chan request, 256),
		reads:   make(chan func(), 64),
		eng:     eng,
		trades:  newTradeRing(eng.tradeHistoryDepth),
		stats:   SymbolStats{Symbol: symbol},
	}
}

// run drains the mailbox until ctx is cancelled. A panic while handling
// one request is recovered, logged, and turned into an InvariantViolation
// that faults this symbol only — it never escapes to take down the
// process or any other symbol's actor. Read-only queries (snapshot, BBO,
// stats) come in on a separate channel so they never block behind a
// backlog of submissions, but still execute on this goroutine — the same
// exclusive access that protects writes also gives reads a consistent
// view without a lock.
func (a *symbolActor) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-a.mailbox:
			a.handleSafely(req)
		case fn := <-a.reads:
			fn()
		}
	}
}

func (a *symbolActor) handleSafely(req request) {
	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			logger.Error(context.Background(), "matching core panic recovered, faulting symbol",
				zap.String("symbol", a.symbol),
				zap.Any("panic", r),
				zap.String("stack", stack),
			)
			a.eng.invariantViolations.Add(1)
			a.faulted = true
			req.reply <- response{err: &InvariantViolation{Symbol: a.symbol, Reason: "panic during matching"}}
		}
	}()
	req.reply <- a.handle(req.order)
}

func (a *symbolActor) handle(order *matching.Order) response {
	if a.faulted {
		return response{err: ErrSymbolFaulted}
	}

	fills, ok := a.book.Match(order)
	if !ok {
		// FOK could not be filled in full: book is untouched, nothing to
		// publish, order never existed as far as the book is concerned.
		return response{result: SubmitResult{
			OrderID:      order.ID,
			Seq:          order.Seq,
			Status:       StatusRejected,
			RemainingQty: order.OrigQty,
			Reason:       ReasonFOKUnfillable,
		}}
	}

	now := time.Now()
	trades := make([]TradeView, 0, len(fills))
	for _, f := range fills {
		tv := TradeView{
			TradeID:       a.eng.nextSeq(),
			Symbol:        f.Symbol,
			Price:         f.Price,
			Qty:           f.Qty,
			AggressorSide: f.AggressorSide,
			MakerOrderID:  f.MakerOrderID,
			TakerOrderID:  f.TakerOrderID,
			Seq:           a.eng.nextSeq(),
			Timestamp:     now,
		}
		trades = append(trades, tv)
		a.trades.push(tv)
		a.stats.TradesExecuted++
		a.stats.VolumeTraded = a.stats.VolumeTraded.Add(f.Qty)
		a.eng.publishTrade(a.symbol, tv)
	}

	a.stats.OrdersAccepted++
	a.eng.publishBook(a.symbol, a.book)

	return response{result: SubmitResult{
		OrderID:      order.ID,
		Seq:          order.Seq,
		Status:       statusFor(order),
		RemainingQty: order.Remaining,
		Trades:       trades,
	}}
}

// statusFor derives the terminal status of an already-matched order from
// its type and remaining quantity. FOK never reaches here with ok==false
// (that's handled before matching runs); a successfully matched FOK is
// always fully filled by definition of the dry-run it passed.
func statusFor(o *matching.Order) OrderStatus {
	switch o.Type {
	case matching.FOK:
		return StatusFilled
	case matching.Limit:
		switch {
		case o.Remaining.IsZero():
			return StatusFilled
		case o.Remaining.Equal(o.OrigQty):
			return StatusResting
		default:
			return StatusPartiallyFilledResting
		}
	default: // Market, IOC: never rest, residual is always dropped
		if o.Remaining.IsZero() {
			return StatusFilled
		}
		return StatusPartiallyFilledCancelled
	}
}
