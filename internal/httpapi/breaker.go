package httpapi

import (
	"errors"
	"sync"

	"github.com/sony/gobreaker/v2"

	"matchengine/internal/engine"
	"matchengine/pkg/metrics"
)

// breakers is a per-symbol circuit breaker in front of Engine.Submit,
// grounded on the teacher's pkg/interceptor/circuitbreaker.go (sony/
// gobreaker wrapping a grpc unary call) but re-pointed at HTTP order
// submission instead of a downstream grpc call. Its job is narrow: a
// symbol that keeps returning ErrSymbolFaulted (InternalInvariantViolation
// already tripped that symbol's actor) should fail fast at the transport
// edge instead of round-tripping the actor's mailbox on every request,
// without touching any other symbol's breaker.
type breakers struct {
	mu sync.Mutex
	m  map[string]*gobreaker.CircuitBreaker[any]
}

func newBreakers() *breakers {
	return &breakers{m: make(map[string]*gobreaker.CircuitBreaker[any])}
}

func (b *breakers) get(symbol string) *gobreaker.CircuitBreaker[any] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cb, ok := b.m[symbol]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        symbol,
		MaxRequests: 1,
		// Client input mistakes must never trip a server-health breaker:
		// a validation failure or an unknown-symbol submission is
		// rejected inside Engine.Submit before it ever reaches this
		// symbol's actor, so it says nothing about that actor's health.
		// Only ErrSymbolFaulted (the actor is actually broken) and
		// anything else unexpected (context errors, panics surfaced as
		// errors) should count against the breaker.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var verr *engine.ValidationError
			if errors.As(err, &verr) {
				return true
			}
			return errors.Is(err, engine.ErrUnknownSymbol)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CBState.WithLabelValues(name).Set(float64(to))
		},
	})
	b.m[symbol] = cb
	return cb
}

func (b *breakers) execute(symbol string, fn func() (any, error)) (any, error) {
	cb := b.get(symbol)
	v, err := cb.Execute(fn)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		metrics.CBRejectTotal.WithLabelValues(symbol).Inc()
	}
	return v, err
}
