package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"matchengine/internal/engine"
	"matchengine/pkg/common"
	"matchengine/pkg/metrics"
	"matchengine/pkg/xerr"
)

// submitOrder handles POST /orders: the spec §6 order submission
// contract. Validation failures never reach the engine's per-symbol
// actor; a symbol whose breaker is open fails fast without even
// attempting Submit.
func (s *Server) submitOrder(c *gin.Context) {
	var body orderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		common.Fail(c, http.StatusBadRequest, xerr.RequestParamsError, err.Error())
		return
	}

	req, err := body.toSubmitRequest()
	if err != nil {
		metrics.OrdersRejectedTotal.WithLabelValues("validation").Inc()
		common.Fail(c, http.StatusBadRequest, xerr.RequestParamsError, err.Error())
		return
	}

	start := time.Now()
	v, err := s.breakers.execute(req.Symbol, func() (any, error) {
		return s.eng.Submit(c.Request.Context(), req)
	})
	if err != nil {
		s.failSubmit(c, req.Symbol, err)
		return
	}

	result := v.(engine.SubmitResult)
	metrics.SubmitDuration.WithLabelValues(req.Symbol, string(result.Status)).Observe(time.Since(start).Seconds())
	if result.Status == engine.StatusRejected {
		metrics.OrdersRejectedTotal.WithLabelValues(result.Reason).Inc()
	} else {
		metrics.OrdersAcceptedTotal.Inc()
		metrics.TradesTotal.Add(float64(len(result.Trades)))
	}

	common.Success(c, toSubmitResponse(result))
}

func (s *Server) failSubmit(c *gin.Context, symbol string, err error) {
	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr):
		metrics.OrdersRejectedTotal.WithLabelValues("validation").Inc()
		common.Fail(c, http.StatusBadRequest, xerr.RequestParamsError, verr.Error())
	case errors.Is(err, engine.ErrUnknownSymbol):
		metrics.OrdersRejectedTotal.WithLabelValues("unknown_symbol").Inc()
		common.Fail(c, http.StatusNotFound, xerr.UnknownSymbol, xerr.MapErrMsg(xerr.UnknownSymbol))
	case errors.Is(err, engine.ErrSymbolFaulted):
		common.FailLogged(c, http.StatusServiceUnavailable, xerr.SymbolFaulted, xerr.MapErrMsg(xerr.SymbolFaulted), err)
	default:
		// circuit breaker open, or the gobreaker-wrapped call itself
		// failed (e.g. context cancelled): never swallow, always log.
		common.FailLogged(c, http.StatusServiceUnavailable, xerr.ServerCommonError, "symbol temporarily unavailable", err)
	}
}

// bookSnapshot handles GET /books/:symbol?depth=N.
func (s *Server) bookSnapshot(defaultDepth int) gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := c.Param("symbol")
		depth := defaultDepth
		if q := c.Query("depth"); q != "" {
			if n, err := strconv.Atoi(q); err == nil && n > 0 {
				depth = n
			}
		}

		snap, err := s.eng.Snapshot(c.Request.Context(), symbol, depth)
		if err != nil {
			s.failQuery(c, err)
			return
		}
		common.Success(c, toBookResponse(symbol, snap))
	}
}

// recentTrades handles GET /trades/:symbol?limit=N, the per-symbol
// trade-history companion endpoint SPEC_FULL.md §9 adds from the
// original Python engine's trade_history[symbol].
func (s *Server) recentTrades(c *gin.Context) {
	symbol := c.Param("symbol")
	limit := 50
	if q := c.Query("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}

	trades, err := s.eng.RecentTrades(c.Request.Context(), symbol, limit)
	if err != nil {
		s.failQuery(c, err)
		return
	}
	out := make([]tradeView, 0, len(trades))
	for _, t := range trades {
		out = append(out, tradeView{
			TradeID:       t.TradeID,
			Price:         t.Price,
			Quantity:      t.Qty,
			AggressorSide: t.AggressorSide.String(),
			MakerOrderID:  t.MakerOrderID,
			TakerOrderID:  t.TakerOrderID,
			Timestamp:     t.Timestamp,
		})
	}
	common.Success(c, out)
}

func (s *Server) failQuery(c *gin.Context, err error) {
	if errors.Is(err, engine.ErrUnknownSymbol) {
		common.Fail(c, http.StatusNotFound, xerr.UnknownSymbol, xerr.MapErrMsg(xerr.UnknownSymbol))
		return
	}
	common.FailLogged(c, http.StatusInternalServerError, xerr.ServerCommonError, xerr.MapErrMsg(xerr.ServerCommonError), err)
}

// stats handles GET /stats: the spec §6 stats contract.
func (s *Server) stats(c *gin.Context) {
	perSymbol := s.eng.Stats(c.Request.Context())

	resp := statsResponse{
		TotalOrdersRejected: s.eng.OrdersRejected(),
		TotalMatchedVolume:  make(map[string]decimal.Decimal, len(perSymbol)),
		UptimeSeconds:       s.eng.Uptime().Seconds(),
		InvariantViolations: s.eng.InvariantViolations(),
	}
	for _, st := range perSymbol {
		resp.TotalOrdersAccepted += st.OrdersAccepted
		resp.TotalTrades += st.TradesExecuted
		resp.TotalMatchedVolume[st.Symbol] = st.VolumeTraded
		metrics.MatchedVolume.WithLabelValues(st.Symbol).Set(asFloat(st.VolumeTraded))
	}
	common.Success(c, resp)
}

func asFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
