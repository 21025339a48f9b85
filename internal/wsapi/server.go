// Package wsapi is the streaming transport adapter for book and trade
// events. Grounded on the teacher's exec/networks/wsapi/server.go
// (coder/websocket accept, read-loop-for-close plus write-loop-for-data
// against a fanout subscriber channel), re-pointed from the teacher's
// kline Hub onto matchengine/internal/fanout's topic hub.
package wsapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"matchengine/internal/fanout"
	"matchengine/pkg/logger"
)

// Server upgrades HTTP connections to WebSocket and streams one topic's
// events to each connection until the client disconnects or a write fails
// or exceeds writeTimeout. A lagging subscriber is not disconnected; its
// queue drops the oldest events instead.
type Server struct {
	hub          *fanout.Hub
	writeTimeout time.Duration
}

func NewServer(hub *fanout.Hub) *Server {
	return &Server{hub: hub, writeTimeout: 2 * time.Second}
}

// ServeHTTP streams one subscription per connection. The topic is built
// from ?channel=book|trades and ?symbol=, e.g. /ws?channel=book&symbol=BTC-USD
// subscribes to the "book:BTC-USD" fanout topic.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	channel := strings.ToLower(r.URL.Query().Get("channel"))
	if channel != "book" && channel != "trades" {
		http.Error(w, "channel must be book or trades", http.StatusBadRequest)
		return
	}
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "missing symbol", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	topicName := channel + ":" + symbol
	sub := s.hub.Subscribe(topicName)
	defer s.hub.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read loop exists only to notice the client closing the socket;
	// this adapter never accepts inbound application messages.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			// Marshal the whole envelope, not just ev.Data: ev.Seq is the
			// only way a subscriber can detect the gaps drop-oldest
			// overflow (fanout.Hub) will eventually hand it.
			b, err := json.Marshal(ev)
			if err != nil {
				logger.Warn(ctx, "wsapi: failed to marshal event", zap.String("topic", topicName))
				continue
			}
			wctx, wcancel := context.WithTimeout(ctx, s.writeTimeout)
			err = conn.Write(wctx, websocket.MessageText, b)
			wcancel()
			if err != nil {
				cancel()
				return
			}
		}
	}
}
