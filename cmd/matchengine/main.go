// Command matchengine runs the limit order matching engine: the HTTP
// submission/query API, the WebSocket streaming adapter, and
// (optionally) a NATS bridge republishing book/trade events, all backed
// by one in-process engine.Engine. Grounded on the teacher's per-service
// cmd/*/main.go shutdown/config/logger skeleton (e.g.
// cmd/funds-service/main.go), stripped of the gRPC/DB/Redis/etcd
// machinery this engine doesn't need.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"matchengine/internal/engine"
	"matchengine/internal/fanout"
	"matchengine/internal/httpapi"
	"matchengine/internal/natsbridge"
	"matchengine/internal/wsapi"
	"matchengine/pkg/config"
	"matchengine/pkg/logger"
	"matchengine/pkg/safe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var c cfg
	if _, err := config.LoadAndWatch("matchengine", &c); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(c.Name, c.LogLevel)
	logger.Info(ctx, "matchengine starting", zap.String("name", c.Name))

	symbols, err := buildSymbolTable(c.Symbols)
	if err != nil {
		log.Fatalf("build symbol table: %v", err)
	}

	hub := fanout.NewHub(c.FanoutQueueDepth)
	eng := engine.New(symbols, hub, c.TradeHistoryDepth)
	eng.Run(ctx)
	defer eng.Close()

	var bridge *natsbridge.Bridge
	if c.NATS.Enabled {
		bridge, err = natsbridge.Connect(c.NATS.URL, hub)
		if err != nil {
			log.Fatalf("connect nats: %v", err)
		}
		defer bridge.Close()
		for _, sc := range c.Symbols {
			bridge.Forward(ctx, "book:"+sc.Symbol)
			bridge.Forward(ctx, "trades:"+sc.Symbol)
		}
	}

	httpSrv := httpapi.NewRouter(c.HTTP.Addr, eng, c.BookDepth)
	wsSrv := wsapi.NewServer(hub)
	wsHTTP := &http.Server{
		Addr:         c.WS.Addr,
		Handler:      wsSrv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	safe.Go(func() {
		logger.Info(ctx, "http listening", zap.String("addr", c.HTTP.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	})
	safe.Go(func() {
		logger.Info(ctx, "ws listening", zap.String("addr", c.WS.Addr))
		if err := wsHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("ws server: %w", err)
		}
	})

	select {
	case <-ctx.Done():
		logger.Info(ctx, "shutdown signal received")
	case err := <-errCh:
		logger.Error(ctx, "server error", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = wsHTTP.Shutdown(shutdownCtx)

	logger.Info(ctx, "matchengine stopped")
}

func buildSymbolTable(raw []symbolCfg) ([]engine.SymbolConfig, error) {
	out := make([]engine.SymbolConfig, 0, len(raw))
	for _, sc := range raw {
		tick, lot, err := sc.decimal()
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w", sc.Symbol, err)
		}
		out = append(out, engine.SymbolConfig{Symbol: sc.Symbol, Tick: tick, Lot: lot})
	}
	return out, nil
}
