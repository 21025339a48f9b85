// Package natsbridge republishes fanout events onto NATS subjects, for
// deployments that want book/trade events available to other services
// instead of (or in addition to) the WebSocket adapter. Optional: a
// deployment with no NATS URL configured never constructs a Bridge.
// Grounded on the teacher's internal/quotes/gateway/broker_nats.go.
package natsbridge

import (
	"context"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"matchengine/internal/fanout"
	"matchengine/pkg/logger"
	"matchengine/pkg/safe"
)

// Bridge forwards every event published on a set of fanout topics onto
// the matching NATS subject, translating "book:BTC-USD" to "book.BTC-USD"
// the way the teacher's broker_nats.go does for its own topic strings.
type Bridge struct {
	nc  *nats.Conn
	hub *fanout.Hub
}

// Connect dials url and returns a Bridge ready to Forward topics.
func Connect(url string, hub *fanout.Hub, opts ...nats.Option) (*Bridge, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &Bridge{nc: nc, hub: hub}, nil
}

// Forward subscribes to topicName on the hub and republishes every event
// it receives to NATS until ctx is cancelled. Call once per topic; each
// call owns its own subscription and runs on its own goroutine.
func (b *Bridge) Forward(ctx context.Context, topicName string) {
	sub := b.hub.Subscribe(topicName)
	subject := topicToSubject(topicName)

	safe.GoCtx(ctx, func(ctx context.Context) {
		defer b.hub.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.C():
				if !ok {
					return
				}
				// Marshal the whole envelope, not just ev.Data, so
				// ev.Seq travels with it: the only way a NATS-side
				// consumer can detect the gaps drop-oldest overflow
				// (fanout.Hub) will eventually hand it.
				payload, err := json.Marshal(ev)
				if err != nil {
					logger.Warn(ctx, "natsbridge: marshal failed", zap.String("topic", topicName), zap.Error(err))
					continue
				}
				if err := b.nc.Publish(subject, payload); err != nil {
					logger.Warn(ctx, "natsbridge: publish failed", zap.String("subject", subject), zap.Error(err))
				}
			}
		}
	})
}

// Close drains and closes the underlying NATS connection.
func (b *Bridge) Close() {
	if b.nc == nil {
		return
	}
	b.nc.Drain()
	b.nc.Close()
}

func topicToSubject(topic string) string { return strings.ReplaceAll(topic, ":", ".") }
