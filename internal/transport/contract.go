// Package transport implements the three physical links a keyboard can be
// reached over — wired USB, a 2.4GHz dongle, and Bluetooth LE — behind one
// Transport interface. Framing and checksums live in internal/protocol;
// this package only owns bytes-on-the-wire and link-specific timing.
package transport

import (
	"context"
	"time"
)

// Kind identifies which physical link a Transport rides.
type Kind int

const (
	KindWired Kind = iota
	KindDongle
	KindBLE
)

func (k Kind) String() string {
	switch k {
	case KindWired:
		return "wired"
	case KindDongle:
		return "dongle"
	case KindBLE:
		return "ble"
	default:
		return "unknown"
	}
}

// Transport is the link-level contract every backend implements. Exchange
// is the single request/response primitive; Events delivers unsolicited
// input reports (key depth, battery, profile changes) to one reader per
// open Transport.
type Transport interface {
	// Exchange sends a fully-framed feature report and returns the
	// matching response payload, blocking until it arrives or ctx is
	// done. Implementations serialize concurrent callers internally.
	Exchange(ctx context.Context, report []byte) ([]byte, error)

	// Events returns a channel of raw input reports. Closed when the
	// Transport is closed. A Transport owns exactly one reader goroutine
	// feeding this channel regardless of how many Events() callers there
	// are — see internal/events for fan-out to multiple subscribers.
	Events() <-chan []byte

	// Kind reports which physical link this Transport rides.
	Kind() Kind

	// Close releases the underlying handle and stops the reader
	// goroutine. Safe to call more than once.
	Close() error
}

// Stats is a point-in-time snapshot of a Transport's exchange counters,
// safe to copy and log; the live counters backing it are mutex- or
// atomic-protected and never copied directly.
type Stats struct {
	Exchanges     uint64
	Timeouts      uint64
	ChecksumFails uint64
	EventsDropped uint64
	AvgLatency    time.Duration
}

// StatsProvider is implemented by transports that track Stats. All three
// backends here implement it; BLE fills in only Exchanges and Timeouts.
type StatsProvider interface {
	Stats() Stats
}

// ErrClosed-style sentinel errors live in internal/protocol/xerr; backends
// wrap them with transport-specific context via fmt.Errorf("...: %w", ...).
