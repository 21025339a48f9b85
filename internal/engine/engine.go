package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"matchengine/internal/fanout"
	"matchengine/internal/matching"
	"matchengine/pkg/logger"
	"matchengine/pkg/safe"
)

// Engine is the matching engine façade: admission validation, sequence
// and timestamp assignment, and per-symbol serialization via one actor
// goroutine per symbol. Grounded on the teacher's internal/engine.Engine
// (getOrCreateActor, TrySubmit), with the WAL/outbox/replay path the
// teacher used for durability removed entirely — this engine keeps
// books in memory only, by design of the system it implements, not as an
// oversight.
type Engine struct {
	symbols map[string]SymbolConfig
	hub     *fanout.Hub

	tradeHistoryDepth int

	mu     sync.RWMutex
	actors map[string]*symbolActor
	cancel context.CancelFunc

	seq                 atomic.Uint64
	orderIDs            atomic.Uint64
	invariantViolations atomic.Uint64
	ordersRejected      atomic.Uint64
	startedAt           time.Time
}

// New builds an engine admitting only the given symbols. hub receives
// book and trade events as they're produced; tradeHistoryDepth bounds the
// per-symbol recent-trade ring (GET /trades/:symbol).
func New(symbols []SymbolConfig, hub *fanout.Hub, tradeHistoryDepth int) *Engine {
	table := make(map[string]SymbolConfig, len(symbols))
	for _, s := range symbols {
		table[s.Symbol] = s
	}
	return &Engine{
		symbols:           table,
		hub:               hub,
		tradeHistoryDepth: tradeHistoryDepth,
		actors:            make(map[string]*symbolActor),
		startedAt:         time.Now(),
	}
}

func (e *Engine) nextSeq() uint64 { return e.seq.Add(1) }

// getOrCreateActor returns the actor for symbol, starting its goroutine
// (via safe.Go, so a panic inside run() is logged instead of crashing the
// process) the first time a symbol is touched.
func (e *Engine) getOrCreateActor(ctx context.Context, symbol string) *symbolActor {
	e.mu.RLock()
	a, ok := e.actors[symbol]
	e.mu.RUnlock()
	if ok {
		return a
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if a, ok = e.actors[symbol]; ok {
		return a
	}
	a = newSymbolActor(symbol, e)
	e.actors[symbol] = a
	safe.Go(func() { a.run(ctx) })
	return a
}

// Run starts the engine's background actors. Call once before Submit;
// cancel via Close.
func (e *Engine) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	for symbol := range e.symbols {
		e.getOrCreateActor(ctx, symbol)
	}
}

// Close stops every symbol actor. A Submit or query made after Close is
// not answered by any actor; it returns only when its own ctx is done,
// with ctx.Err().
func (e *Engine) Close() {
	if e.cancel != nil {
		e.cancel()
	}
}

// Submit validates req, assigns it a sequence number and arrival
// timestamp, and routes it to its symbol's actor. Admission failures never
// reach an actor: an unknown symbol is returned as ErrUnknownSymbol, and
// an off-tick price, off-lot quantity, missing/extraneous price for the
// order type or non-positive quantity as *ValidationError.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	cfg, ok := e.symbols[req.Symbol]
	if !ok {
		e.ordersRejected.Add(1)
		return SubmitResult{}, ErrUnknownSymbol
	}
	if verr := validate(cfg, req); verr != nil {
		e.ordersRejected.Add(1)
		return SubmitResult{}, verr
	}

	order := &matching.Order{
		ID:          e.orderIDs.Add(1),
		Symbol:      req.Symbol,
		Side:        req.Side,
		Type:        req.Type,
		Price:       req.Price,
		OrigQty:     req.Qty,
		Remaining:   req.Qty,
		Seq:         e.nextSeq(),
		ArrivalTime: time.Now(),
		UserID:      req.UserID,
	}

	actor := e.getOrCreateActor(ctx, req.Symbol)
	reply := make(chan response, 1)

	select {
	case actor.mailbox <- request{order: order, reply: reply}:
	case <-ctx.Done():
		return SubmitResult{}, ctx.Err()
	}

	select {
	case resp := <-reply:
		return resp.result, resp.err
	case <-ctx.Done():
		return SubmitResult{}, ctx.Err()
	}
}

func validate(cfg SymbolConfig, req SubmitRequest) *ValidationError {
	if !req.Qty.IsPositive() {
		return &ValidationError{Field: "qty", Reason: "must be positive"}
	}
	if !cfg.onLot(req.Qty) {
		return &ValidationError{Field: "qty", Reason: "not an integral multiple of the symbol's lot size"}
	}
	switch req.Type {
	case matching.Market:
		if !req.Price.IsZero() {
			return &ValidationError{Field: "price", Reason: "market orders must not carry a price"}
		}
	case matching.Limit, matching.IOC, matching.FOK:
		if !req.Price.IsPositive() {
			return &ValidationError{Field: "price", Reason: "required for this order type and must be positive"}
		}
		if !cfg.onTick(req.Price) {
			return &ValidationError{Field: "price", Reason: "not an integral multiple of the symbol's tick size"}
		}
	default:
		return &ValidationError{Field: "order_type", Reason: "unknown order type"}
	}
	return nil
}

// Snapshot returns a depth-limited view of symbol's book by routing a
// read through that symbol's actor, so it observes a consistent state
// instead of racing live mutations.
func (e *Engine) Snapshot(ctx context.Context, symbol string, depth int) (BookSnapshot, error) {
	_, ok := e.symbols[symbol]
	if !ok {
		return BookSnapshot{}, ErrUnknownSymbol
	}
	actor := e.getOrCreateActor(ctx, symbol)
	return runOnActor(ctx, actor, func(a *symbolActor) BookSnapshot {
		bids, asks := a.book.Snapshot(depth)
		return BookSnapshot{Symbol: symbol, Bids: toLevelViews(bids), Asks: toLevelViews(asks)}
	})
}

// BBO returns symbol's current best bid/offer.
func (e *Engine) BBO(ctx context.Context, symbol string) (BBOView, error) {
	_, ok := e.symbols[symbol]
	if !ok {
		return BBOView{}, ErrUnknownSymbol
	}
	actor := e.getOrCreateActor(ctx, symbol)
	return runOnActor(ctx, actor, func(a *symbolActor) BBOView {
		bid, bidOK, ask, askOK := a.book.BBO()
		v := BBOView{Symbol: symbol}
		if bidOK {
			v.HasBid, v.BidPrice, v.BidQty = true, bid.Price, bid.Volume
		}
		if askOK {
			v.HasAsk, v.AskPrice, v.AskQty = true, ask.Price, ask.Volume
		}
		return v
	})
}

// RecentTrades returns up to n of symbol's most recent trades.
func (e *Engine) RecentTrades(ctx context.Context, symbol string, n int) ([]TradeView, error) {
	_, ok := e.symbols[symbol]
	if !ok {
		return nil, ErrUnknownSymbol
	}
	actor := e.getOrCreateActor(ctx, symbol)
	return runOnActor(ctx, actor, func(a *symbolActor) []TradeView {
		return a.trades.recent(n)
	})
}

// Stats returns a snapshot of every configured symbol's counters.
func (e *Engine) Stats(ctx context.Context) []SymbolStats {
	out := make([]SymbolStats, 0, len(e.symbols))
	for symbol := range e.symbols {
		actor := e.getOrCreateActor(ctx, symbol)
		stats, err := runOnActor(ctx, actor, func(a *symbolActor) SymbolStats {
			s := a.stats
			s.Faulted = a.faulted
			return s
		})
		if err != nil {
			logger.Warn(ctx, "stats query failed for symbol", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		out = append(out, stats)
	}
	return out
}

// InvariantViolations returns the process-wide count of faults caught by
// symbol actors since startup.
func (e *Engine) InvariantViolations() uint64 { return e.invariantViolations.Load() }

// OrdersRejected returns the process-wide count of admission-time
// rejections (unknown symbol, validation failure) since startup. FOK
// orders that failed their dry-run passed admission and are not counted
// here; SymbolStats does not count them either.
func (e *Engine) OrdersRejected() uint64 { return e.ordersRejected.Load() }

// Uptime returns how long this engine has been running.
func (e *Engine) Uptime() time.Duration { return time.Since(e.startedAt) }

func toLevelViews(levels []matching.LevelView) []BookLevelView {
	out := make([]BookLevelView, len(levels))
	for i, l := range levels {
		out[i] = BookLevelView{Price: l.Price, Volume: l.Volume, Orders: l.Orders}
	}
	return out
}

func (e *Engine) publishTrade(symbol string, t TradeView) {
	if e.hub == nil {
		return
	}
	e.hub.Publish("trades:"+symbol, t.Seq, t)
}

func (e *Engine) publishBook(symbol string, book *matching.OrderBook) {
	if e.hub == nil {
		return
	}
	bid, bidOK, ask, askOK := book.BBO()
	v := BBOView{Symbol: symbol}
	if bidOK {
		v.HasBid, v.BidPrice, v.BidQty = true, bid.Price, bid.Volume
	}
	if askOK {
		v.HasAsk, v.AskPrice, v.AskQty = true, ask.Price, ask.Volume
	}
	e.hub.Publish("book:"+symbol, e.seq.Load(), v)
}
