package engine_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchengine/internal/engine"
	"matchengine/internal/fanout"
	"matchengine/internal/matching"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestEngine(t *testing.T) (*engine.Engine, context.Context) {
	t.Helper()
	ctx := context.Background()
	cfg := []engine.SymbolConfig{{Symbol: "BTC-USD", Tick: dec("0.01"), Lot: dec("0.0001")}}
	eng := engine.New(cfg, fanout.NewHub(16), 64)
	eng.Run(ctx)
	t.Cleanup(eng.Close)
	return eng, ctx
}

func submit(t *testing.T, eng *engine.Engine, ctx context.Context, side matching.Side, typ matching.OrderType, price, qty string) engine.SubmitResult {
	t.Helper()
	req := engine.SubmitRequest{
		Symbol: "BTC-USD",
		Side:   side,
		Type:   typ,
		Qty:    dec(qty),
	}
	if typ != matching.Market {
		req.Price = dec(price)
	}
	res, err := eng.Submit(ctx, req)
	require.NoError(t, err)
	return res
}

// Scenario 1: resting asks at two prices, a crossing limit buy sweeps
// both and is fully filled; the partly consumed ask keeps resting at the
// worse of the two prices.
func TestScenario1_LimitSweepsTwoLevelsLeavesAskRemainder(t *testing.T) {
	eng, ctx := newTestEngine(t)

	submit(t, eng, ctx, matching.Sell, matching.Limit, "100", "1.0")
	submit(t, eng, ctx, matching.Sell, matching.Limit, "101", "2.0")

	res := submit(t, eng, ctx, matching.Buy, matching.Limit, "101", "2.5")

	require.Len(t, res.Trades, 2)
	assert.True(t, res.Trades[0].Price.Equal(dec("100")))
	assert.True(t, res.Trades[0].Qty.Equal(dec("1.0")))
	assert.True(t, res.Trades[1].Price.Equal(dec("101")))
	assert.True(t, res.Trades[1].Qty.Equal(dec("1.5")))
	assert.Equal(t, engine.StatusFilled, res.Status)
	assert.True(t, res.RemainingQty.IsZero())

	snap, err := eng.Snapshot(ctx, "BTC-USD", 10)
	require.NoError(t, err)
	require.Len(t, snap.Asks, 1)
	assert.True(t, snap.Asks[0].Price.Equal(dec("101")))
	assert.True(t, snap.Asks[0].Volume.Equal(dec("0.5")))
	assert.Empty(t, snap.Bids)
}

// Scenario 2: a market sell against two bid levels only partially fills;
// the residual is dropped, not rested.
func TestScenario2_MarketAgainstTwoBidsPartialThenDropped(t *testing.T) {
	eng, ctx := newTestEngine(t)

	submit(t, eng, ctx, matching.Buy, matching.Limit, "99", "1.0")
	submit(t, eng, ctx, matching.Buy, matching.Limit, "98", "1.0")

	res := submit(t, eng, ctx, matching.Sell, matching.Market, "", "2.5")

	require.Len(t, res.Trades, 2)
	assert.True(t, res.Trades[0].Price.Equal(dec("99")))
	assert.True(t, res.Trades[1].Price.Equal(dec("98")))
	assert.Equal(t, engine.StatusPartiallyFilledCancelled, res.Status)
	assert.True(t, res.RemainingQty.Equal(dec("0.5")))

	snap, err := eng.Snapshot(ctx, "BTC-USD", 10)
	require.NoError(t, err)
	assert.Empty(t, snap.Bids)
}

// Scenario 3: a FOK that can be filled in full trades across both
// resting levels and is marked filled.
func TestScenario3_FOKFillableFillsInFull(t *testing.T) {
	eng, ctx := newTestEngine(t)

	submit(t, eng, ctx, matching.Sell, matching.Limit, "100", "1.0")
	submit(t, eng, ctx, matching.Sell, matching.Limit, "101", "1.0")

	res := submit(t, eng, ctx, matching.Buy, matching.FOK, "101", "2.0")

	require.Len(t, res.Trades, 2)
	assert.Equal(t, engine.StatusFilled, res.Status)
	assert.True(t, res.RemainingQty.IsZero())
}

// Scenario 4: the same seed, but one unit more than available: the FOK
// is rejected and the book is left exactly as it was.
func TestScenario4_FOKUnfillableRejectedLeavesBookUntouched(t *testing.T) {
	eng, ctx := newTestEngine(t)

	submit(t, eng, ctx, matching.Sell, matching.Limit, "100", "1.0")
	submit(t, eng, ctx, matching.Sell, matching.Limit, "101", "1.0")

	before, err := eng.Snapshot(ctx, "BTC-USD", 10)
	require.NoError(t, err)

	res := submit(t, eng, ctx, matching.Buy, matching.FOK, "101", "3.0")

	assert.Equal(t, engine.StatusRejected, res.Status)
	assert.Equal(t, engine.ReasonFOKUnfillable, res.Reason)
	assert.Empty(t, res.Trades)

	after, err := eng.Snapshot(ctx, "BTC-USD", 10)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// Scenario 5: two resting asks at the same price are consumed strictly
// in arrival order (price-time priority within a level).
func TestScenario5_SamePriceFIFOWithinLevel(t *testing.T) {
	eng, ctx := newTestEngine(t)

	submit(t, eng, ctx, matching.Sell, matching.Limit, "100", "1.0") // earlier
	submit(t, eng, ctx, matching.Sell, matching.Limit, "100", "1.0") // later

	res := submit(t, eng, ctx, matching.Buy, matching.Limit, "100", "1.5")

	require.Len(t, res.Trades, 2)
	assert.True(t, res.Trades[0].Qty.Equal(dec("1.0")))
	assert.True(t, res.Trades[1].Qty.Equal(dec("0.5")))
	assert.Less(t, res.Trades[0].MakerOrderID, res.Trades[1].MakerOrderID)

	snap, err := eng.Snapshot(ctx, "BTC-USD", 10)
	require.NoError(t, err)
	require.Len(t, snap.Asks, 1)
	assert.True(t, snap.Asks[0].Volume.Equal(dec("0.5")))
}

// Scenario 6: a limit order rests on an empty book, then an opposing IOC
// partially fills against it and the residual keeps resting.
func TestScenario6_LimitRestsThenIOCPartiallyConsumesIt(t *testing.T) {
	eng, ctx := newTestEngine(t)

	restRes := submit(t, eng, ctx, matching.Buy, matching.Limit, "100", "1.0")
	assert.Equal(t, engine.StatusResting, restRes.Status)
	assert.Empty(t, restRes.Trades)

	iocRes := submit(t, eng, ctx, matching.Sell, matching.IOC, "100", "0.6")
	require.Len(t, iocRes.Trades, 1)
	assert.True(t, iocRes.Trades[0].Qty.Equal(dec("0.6")))
	assert.Equal(t, engine.StatusFilled, iocRes.Status)

	snap, err := eng.Snapshot(ctx, "BTC-USD", 10)
	require.NoError(t, err)
	require.Len(t, snap.Bids, 1)
	assert.True(t, snap.Bids[0].Volume.Equal(dec("0.4")))
}

func TestSubmit_UnknownSymbolRejected(t *testing.T) {
	eng, ctx := newTestEngine(t)
	_, err := eng.Submit(ctx, engine.SubmitRequest{
		Symbol: "NOPE", Side: matching.Buy, Type: matching.Limit, Price: dec("1"), Qty: dec("1"),
	})
	assert.ErrorIs(t, err, engine.ErrUnknownSymbol)
	assert.Equal(t, uint64(1), eng.OrdersRejected())
}

func TestSubmit_OffTickPriceRejected(t *testing.T) {
	eng, ctx := newTestEngine(t)
	_, err := eng.Submit(ctx, engine.SubmitRequest{
		Symbol: "BTC-USD", Side: matching.Buy, Type: matching.Limit, Price: dec("100.005"), Qty: dec("1"),
	})
	var verr *engine.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
}

func TestSubmit_OffLotQuantityRejected(t *testing.T) {
	eng, ctx := newTestEngine(t)
	_, err := eng.Submit(ctx, engine.SubmitRequest{
		Symbol: "BTC-USD", Side: matching.Buy, Type: matching.Limit, Price: dec("100"), Qty: dec("1.00005"),
	})
	var verr *engine.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "qty", verr.Field)
}

func TestSubmit_MarketOrderWithPriceRejected(t *testing.T) {
	eng, ctx := newTestEngine(t)
	_, err := eng.Submit(ctx, engine.SubmitRequest{
		Symbol: "BTC-USD", Side: matching.Buy, Type: matching.Market, Price: dec("100"), Qty: dec("1"),
	})
	var verr *engine.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
}
