//go:build !mips && !mipsle

package transport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/gousb"

	"monsgeek-hid/internal/protocol/xerr"
)

// The wired backend talks to the vendor's HID interface through raw
// interrupt IN/OUT endpoints carrying the 65-byte feature report framing,
// even though this is a plain HID device, not a USB-class one gousb
// understands natively. exchangeTimeout bounds one Exchange; eventsCap is
// the buffer size of every backend's events channel.
const (
	exchangeTimeout = 100 * time.Millisecond
	eventsCap       = 256
)

// Wired is the USB-wired Transport. A single mutex serializes Exchange
// calls onto the shared OUT/IN endpoint pair; a dedicated goroutine owns
// blocking reads and feeds unsolicited input reports onto events.
type Wired struct {
	ctx   *gousb.Context
	dev   *gousb.Device
	cfg   *gousb.Config
	intf  *gousb.Interface
	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint

	mu      sync.Mutex
	pending chan []byte // single in-flight response slot

	events chan []byte
	closed atomic.Bool
	stats  wiredStats
}

type wiredStats struct {
	mu            sync.Mutex
	exchanges     uint64
	timeouts      uint64
	checksumFails uint64
	eventsDropped uint64
	totalLatency  time.Duration
}

// OpenWired opens the HID-wired keyboard by vendor/product ID, claiming
// interface 0 and its IN/OUT endpoints.
func OpenWired(vid, pid gousb.ID, epOut, epIn int) (*Wired, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(vid, pid)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("open usb device: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("%w: vid=%04x pid=%04x", xerr.ErrDeviceNotFound, vid, pid)
	}

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("set usb config: %w", err)
	}

	intf, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("claim usb interface: %w", err)
	}

	out, err := intf.OutEndpoint(epOut)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("open out endpoint: %w", err)
	}

	in, err := intf.InEndpoint(epIn)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("open in endpoint: %w", err)
	}

	w := &Wired{
		ctx:     ctx,
		dev:     dev,
		cfg:     cfg,
		intf:    intf,
		epOut:   out,
		epIn:    in,
		pending: make(chan []byte, 1),
		events:  make(chan []byte, eventsCap),
	}
	go w.readLoop()
	return w, nil
}

// readLoop is the Transport's one reader goroutine: every inbound report
// either completes a pending Exchange or, if no Exchange is waiting,
// carries an unsolicited event onto w.events.
func (w *Wired) readLoop() {
	buf := make([]byte, 64)
	for {
		if w.closed.Load() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		n, err := w.epIn.ReadContext(ctx, buf)
		cancel()
		if err != nil {
			continue
		}
		report := append([]byte(nil), buf[:n]...)
		select {
		case w.pending <- report:
		default:
			select {
			case w.events <- report:
			default:
				w.stats.mu.Lock()
				w.stats.eventsDropped++
				w.stats.mu.Unlock()
			}
		}
	}
}

// Exchange writes report to the OUT endpoint and waits for the next
// inbound report, serialized against other callers by mu.
func (w *Wired) Exchange(ctx context.Context, report []byte) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed.Load() {
		return nil, xerr.ErrDisconnected
	}

	start := time.Now()
	writeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	if _, err := w.epOut.WriteContext(writeCtx, report); err != nil {
		return nil, fmt.Errorf("%w: %v", xerr.ErrHID, err)
	}

	select {
	case resp := <-w.pending:
		w.stats.mu.Lock()
		w.stats.exchanges++
		w.stats.totalLatency += time.Since(start)
		w.stats.mu.Unlock()
		return resp, nil
	case <-writeCtx.Done():
		w.stats.mu.Lock()
		w.stats.timeouts++
		w.stats.mu.Unlock()
		return nil, xerr.ErrTimeout
	}
}

func (w *Wired) Events() <-chan []byte { return w.events }

func (w *Wired) Kind() Kind { return KindWired }

func (w *Wired) Stats() Stats {
	w.stats.mu.Lock()
	defer w.stats.mu.Unlock()
	s := Stats{
		Exchanges:     w.stats.exchanges,
		Timeouts:      w.stats.timeouts,
		ChecksumFails: w.stats.checksumFails,
		EventsDropped: w.stats.eventsDropped,
	}
	if s.Exchanges > 0 {
		s.AvgLatency = w.stats.totalLatency / time.Duration(s.Exchanges)
	}
	return s
}

func (w *Wired) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(w.events)
	w.intf.Close()
	w.cfg.Close()
	w.dev.Close()
	w.ctx.Close()
	return nil
}
