// Package fanout is a topic-based publish/subscribe hub used to stream
// book and trade events out of the matching engine to transport adapters
// (HTTP/WS handlers, the optional NATS bridge). Grounded on the teacher's
// exec/networks/md/hub.go Hub/Topic/Subscriber, with one deliberate
// policy change: a full subscriber queue drops the *oldest* queued event
// to make room for the new one, instead of dropping the new event. A
// slow book subscriber should see a gap followed by the freshest state,
// not get stuck replaying stale quotes from minutes ago.
package fanout

import "sync"

// Event is one published message. Seq lets a subscriber detect drops by
// noticing a gap, and is also what self-describes "produced at engine
// sequence N" on the wire (spec's minimum event contract).
type Event struct {
	Topic string      `json:"topic"`
	Seq   uint64      `json:"seq"`
	Data  interface{} `json:"data"`
}

// Subscriber is a bounded per-topic delivery queue. Created by Hub.Subscribe
// and drained by the caller via C().
type Subscriber struct {
	id      uint64
	topic   string
	queue   chan Event
	dropped uint64 // guarded by mu

	mu sync.Mutex
}

func (s *Subscriber) C() <-chan Event { return s.queue }

// Dropped returns how many events have been discarded for this
// subscriber because its queue was full when a new event arrived.
func (s *Subscriber) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

type topic struct {
	mu   sync.Mutex
	subs map[uint64]*Subscriber
}

// Hub fans events out to per-topic subscriber sets.
type Hub struct {
	queueDepth int

	mu     sync.RWMutex
	topics map[string]*topic
	nextID uint64
}

func NewHub(queueDepth int) *Hub {
	if queueDepth <= 0 {
		queueDepth = 64
	}
	return &Hub{queueDepth: queueDepth, topics: make(map[string]*topic)}
}

func (h *Hub) topicFor(name string) *topic {
	h.mu.RLock()
	t, ok := h.topics[name]
	h.mu.RUnlock()
	if ok {
		return t
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok = h.topics[name]; ok {
		return t
	}
	t = &topic{subs: make(map[uint64]*Subscriber)}
	h.topics[name] = t
	return t
}

// Subscribe registers a new subscriber on topic and returns it. Callers
// must eventually call Unsubscribe.
func (h *Hub) Subscribe(topicName string) *Subscriber {
	t := h.topicFor(topicName)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.mu.Unlock()

	sub := &Subscriber{id: id, topic: topicName, queue: make(chan Event, h.queueDepth)}

	t.mu.Lock()
	t.subs[id] = sub
	t.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.RLock()
	t, ok := h.topics[sub.topic]
	h.mu.RUnlock()
	if !ok {
		return
	}
	t.mu.Lock()
	delete(t.subs, sub.id)
	t.mu.Unlock()
}

// Publish delivers an event to every current subscriber of topicName.
// Delivery to each subscriber is independent: a full queue drops that
// subscriber's oldest queued event (never blocking the publisher, and
// never dropping the event for other subscribers) rather than refusing
// the new one.
func (h *Hub) Publish(topicName string, seq uint64, data interface{}) {
	h.mu.RLock()
	t, ok := h.topics[topicName]
	h.mu.RUnlock()
	if !ok {
		return
	}

	ev := Event{Topic: topicName, Seq: seq, Data: data}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, sub := range t.subs {
		deliver(sub, ev)
	}
}

// deliver enqueues ev on sub's queue, dropping the oldest queued event
// first if the queue is already full. Must be called with the topic's
// mutex held so concurrent publishes to the same topic don't race on the
// same subscriber's queue.
func deliver(sub *Subscriber, ev Event) {
	select {
	case sub.queue <- ev:
		return
	default:
	}

	// Queue full: drop the oldest to make room. The receive is
	// non-blocking — if a concurrent consumer drains the queue first,
	// it's no longer full and there's nothing to drop, but we must never
	// block here: this runs on the publishing symbol actor's own
	// goroutine, and a slow subscriber must never stall matching.
	select {
	case <-sub.queue:
		sub.mu.Lock()
		sub.dropped++
		sub.mu.Unlock()
	default:
	}

	select {
	case sub.queue <- ev:
	default:
		// A concurrent consumer refilled the queue between the drop
		// above and this enqueue; drop the new event rather than retry
		// and risk blocking.
		sub.mu.Lock()
		sub.dropped++
		sub.mu.Unlock()
	}
}
