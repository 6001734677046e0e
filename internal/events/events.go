// Package events fans a transport's single raw-report stream out to any
// number of subscribers, parsing each report into a protocol.VendorEvent
// along the way. internal/protocol/events.go owns the VendorEvent type and
// its wire parsing; this package owns the subscription lifecycle.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"monsgeek-hid/internal/protocol"
	"monsgeek-hid/internal/transport"
)

const broadcastCap = 256

// Timestamped pairs a parsed event with the time it was observed, for
// callers that log or replay the event stream.
type Timestamped struct {
	Event protocol.VendorEvent
	At    time.Time
}

// Subsystem reads raw reports from one transport.Transport and broadcasts
// parsed events to every active Subscribe call. Slow subscribers drop the
// oldest buffered event rather than block the reader goroutine.
type Subsystem struct {
	raw    <-chan []byte
	kind   transport.Kind
	parse  func([]byte) protocol.VendorEvent
	mu     sync.Mutex
	subs   map[int]chan Timestamped
	nextID int
	done   atomic.Bool
}

// New starts a Subsystem reading from t's Events() channel. The parser is
// chosen by t.Kind(): ParseBLEEvent for BLE, ParseUSBEvent otherwise.
func New(t transport.Transport) *Subsystem {
	parse := protocol.ParseUSBEvent
	if t.Kind() == transport.KindBLE {
		parse = protocol.ParseBLEEvent
	}
	s := &Subsystem{
		raw:   t.Events(),
		kind:  t.Kind(),
		parse: parse,
		subs:  make(map[int]chan Timestamped),
	}
	go s.run()
	return s
}

func (s *Subsystem) run() {
	for raw := range s.raw {
		ev := Timestamped{Event: s.parse(raw), At: time.Now()}
		s.broadcast(ev)
	}
	s.shutdown()
}

func (s *Subsystem) broadcast(ev Timestamped) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Drop-oldest: make room for the newest event rather than
			// stall the reader goroutine on a slow subscriber.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func (s *Subsystem) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done.Store(true)
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

// Subscribe returns a channel of events and an unsubscribe function. The
// channel is closed when the Subsystem shuts down (the underlying
// transport closed) or when unsubscribe is called.
func (s *Subsystem) Subscribe() (<-chan Timestamped, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Timestamped, broadcastCap)
	if s.done.Load() {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.subs[id]; ok {
			close(existing)
			delete(s.subs, id)
		}
	}
	return ch, unsubscribe
}

// SubscriberCount reports how many active Subscribe calls remain, mostly
// useful for diagnostics.
func (s *Subsystem) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
