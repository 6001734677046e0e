//go:build !mips && !mipsle

package transport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/gousb"

	"monsgeek-hid/internal/protocol"
	"monsgeek-hid/internal/protocol/xerr"
)

const (
	dongleAwakeTimeout  = 500 * time.Millisecond
	dongleAsleepTimeout = 2000 * time.Millisecond
	latencyWindow       = 8
	responseCacheSize   = 16
)

// latencyTracker keeps a ring buffer of the last latencyWindow round-trip
// times, used to pick the initial wait before the first poll so it tracks
// the keyboard's actual responsiveness instead of a fixed guess.
type latencyTracker struct {
	mu      sync.Mutex
	samples [latencyWindow]time.Duration
	count   int
	next    int
}

func (t *latencyTracker) record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples[t.next] = d
	t.next = (t.next + 1) % latencyWindow
	if t.count < latencyWindow {
		t.count++
	}
}

func (t *latencyTracker) average() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count == 0 {
		return 10 * time.Millisecond
	}
	var sum time.Duration
	for i := 0; i < t.count; i++ {
		sum += t.samples[i]
	}
	return sum / time.Duration(t.count)
}

// cachedResponse is one slot in the dongle's out-of-order response cache:
// a command worker can receive another command's reply while waiting on
// its own (the radio link interleaves), and stashes it here for whichever
// Exchange call is actually waiting on that echo byte.
type cachedResponse struct {
	echo byte
	data []byte
}

// responseCache is a small FIFO of responses that arrived but didn't match
// the Exchange call currently waiting — GET_CACHED_RESPONSE / FLUSH can
// also ask the dongle itself to replay one, but replies that already made
// it across the radio link are kept here first.
type responseCache struct {
	mu    sync.Mutex
	items []cachedResponse
}

func (c *responseCache) push(r cachedResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, r)
	if len(c.items) > responseCacheSize {
		c.items = c.items[1:]
	}
}

func (c *responseCache) takeByEcho(echo byte) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.echo == echo {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return it.data, true
		}
	}
	return nil, false
}

// dongleRequest is one queued command for the worker goroutine.
type dongleRequest struct {
	report []byte
	echo   byte
	reply  chan dongleReply
}

type dongleReply struct {
	data []byte
	err  error
}

// Dongle is the 2.4GHz receiver Transport. Commands funnel through a
// single worker goroutine (the radio link allows exactly one outstanding
// command), which adapts its initial wait to recent latency and raises its
// read timeout from 500ms to 2000ms after a timeout, matching the
// firmware's own wake/sleep radio behavior.
type Dongle struct {
	ctx   *gousb.Context
	dev   *gousb.Device
	cfg   *gousb.Config
	intf  *gousb.Interface
	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint

	requests chan dongleRequest
	events   chan []byte
	closed   atomic.Bool

	latency       latencyTracker
	cache         responseCache
	consecutiveTO atomic.Int32

	statsMu       sync.Mutex
	exchanges     uint64
	timeouts      uint64
	checksumFails uint64
	eventsDropped uint64
}

// OpenDongle opens the dongle receiver by vendor/product ID.
func OpenDongle(vid, pid gousb.ID, epOut, epIn int) (*Dongle, error) {
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

	d := &Dongle{
		ctx: ctx, dev: dev, cfg: cfg, intf: intf, epOut: out, epIn: in,
		requests: make(chan dongleRequest),
		events:   make(chan []byte, eventsCap),
	}
	go d.worker()
	return d, nil
}

// currentTimeout implements the wake-mode rule: the dongle's receiver
// sleeps after inactivity, so after a timeout the link is treated as
// "maybe asleep": the timed-out request still fails, and every following
// request gets the longer timeout until a reply arrives again.
func (d *Dongle) currentTimeout() time.Duration {
	if d.consecutiveTO.Load() >= 1 {
		return dongleAsleepTimeout
	}
	return dongleAwakeTimeout
}

// worker is the single goroutine permitted to touch the radio link: it
// serializes every command, classifies replies as either matching the
// in-flight request or an out-of-order one to stash in the cache, and
// polls for unsolicited input reports between commands.
func (d *Dongle) worker() {
	pollTick := time.NewTicker(15 * time.Millisecond)
	defer pollTick.Stop()

	for {
		if d.closed.Load() {
			return
		}
		select {
		case req, ok := <-d.requests:
			if !ok {
				return
			}
			d.serve(req)
		case <-pollTick.C:
			d.pollOnce()
		}
	}
}

// dongleFlushCmd is the pre-built FLUSH frame serve sends on every poll
// iteration. FLUSH has no payload and no response of its own — it only
// prods the dongle into copying its one cached keyboard reply into the
// buffer a subsequent GET_REPORT will actually see.
var dongleFlushCmd = protocol.BuildCommand(protocol.CmdFlush, nil, protocol.ChecksumBit7)

// isNoiseEcho reports whether echo is a byte the dongle itself produces
// that never carries real keyboard data: 0x00 is its "nothing cached yet"
// filler reply to FLUSH, and CmdFlush is FLUSH's own echo.
func isNoiseEcho(echo byte) bool {
	return echo == 0x00 || echo == protocol.CmdFlush
}

func (d *Dongle) serve(req dongleRequest) {
	if cached, ok := d.cache.takeByEcho(req.echo); ok {
		req.reply <- dongleReply{data: cached}
		return
	}

	start := time.Now()
	timeout := d.currentTimeout()
	deadline := start.Add(timeout)

	writeCtx, writeCancel := context.WithTimeout(context.Background(), timeout)
	_, err := d.epOut.WriteContext(writeCtx, req.report)
	writeCancel()
	if err != nil {
		req.reply <- dongleReply{err: fmt.Errorf("%w: %v", xerr.ErrHID, err)}
		return
	}

	// Initial wait: half the recent average round trip, floored at 1ms, so
	// the first FLUSH goes out close to when the reply is due.
	wait := d.latency.average() / 2
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	time.Sleep(wait)

	buf := make([]byte, 64)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}

		// The radio link buffers exactly one cached reply on the dongle
		// side; the host has to prod it with FLUSH every iteration or a
		// reply the keyboard already sent will never surface.
		flushCtx, flushCancel := context.WithTimeout(context.Background(), remaining)
		d.epOut.WriteContext(flushCtx, dongleFlushCmd[:])
		flushCancel()

		readCtx, readCancel := context.WithDeadline(context.Background(), deadline)
		n, err := d.epIn.ReadContext(readCtx, buf)
		readCancel()
		if err != nil {
			break
		}

		data := append([]byte(nil), buf[:n]...)
		echo := byte(0)
		if len(data) > 0 {
			echo = data[0]
		}
		noise := isNoiseEcho(echo)
		if echo == req.echo || (req.echo == 0 && !noise) {
			d.consecutiveTO.Store(0)
			d.latency.record(time.Since(start))
			d.statsMu.Lock()
			d.exchanges++
			d.statsMu.Unlock()
			req.reply <- dongleReply{data: data}
			return
		}
		if noise {
			continue
		}
		// Out-of-order reply (or an unsolicited event) — route it and
		// keep waiting for our own echo until the deadline.
		if looksLikeEvent(data) {
			select {
			case d.events <- data:
			default:
				d.statsMu.Lock()
				d.eventsDropped++
				d.statsMu.Unlock()
			}
		} else {
			d.cache.push(cachedResponse{echo: echo, data: data})
		}
	}

	d.consecutiveTO.Add(1)
	d.statsMu.Lock()
	d.timeouts++
	d.statsMu.Unlock()
	req.reply <- dongleReply{err: xerr.ErrTimeout}
}

// pollOnce drains one input report outside of a command exchange, needed
// because key-depth and battery events arrive unsolicited and the worker
// is otherwise only listening while serving a request.
func (d *Dongle) pollOnce() {
	buf := make([]byte, 64)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	n, err := d.epIn.ReadContext(ctx, buf)
	cancel()
	if err != nil || n == 0 {
		return
	}
	data := append([]byte(nil), buf[:n]...)
	select {
	case d.events <- data:
	default:
		d.statsMu.Lock()
		d.eventsDropped++
		d.statsMu.Unlock()
	}
}

// looksLikeEvent separates an unsolicited input report from an
// out-of-order command reply. Only replies whose first byte is GET_REV,
// GET_PROFILE or GET_REPORT count as command replies (and so reach the
// response cache); every other report, including out-of-order replies to
// other commands, is treated as an event.
func looksLikeEvent(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	_, known := map[byte]struct{}{
		protocol.CmdGetRev: {}, protocol.CmdGetProfile: {}, protocol.CmdGetReport: {},
	}[data[0]]
	return !known
}

// ExchangeEcho enqueues report onto the worker and waits for its matching
// reply. echo is the byte the worker should correlate replies against;
// callers pass 0 for commands with no echo (GET_MULTI_MAGNETISM).
func (d *Dongle) ExchangeEcho(ctx context.Context, report []byte, echo byte) ([]byte, error) {
	if d.closed.Load() {
		return nil, xerr.ErrDisconnected
	}
	reply := make(chan dongleReply, 1)
	select {
	case d.requests <- dongleRequest{report: report, echo: echo, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-reply:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Exchange implements Transport by using the command byte (report[1]) as
// the expected echo, the common case for every command except
// GET_MULTI_MAGNETISM, which callers should drive through ExchangeEcho
// with echo=0 directly.
func (d *Dongle) Exchange(ctx context.Context, report []byte) ([]byte, error) {
	echo := byte(0)
	if len(report) > 1 {
		echo = report[1]
	}
	return d.ExchangeEcho(ctx, report, echo)
}

func (d *Dongle) Events() <-chan []byte { return d.events }

func (d *Dongle) Kind() Kind { return KindDongle }

func (d *Dongle) AverageLatency() time.Duration { return d.latency.average() }

func (d *Dongle) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return Stats{
		Exchanges:     d.exchanges,
		Timeouts:      d.timeouts,
		ChecksumFails: d.checksumFails,
		EventsDropped: d.eventsDropped,
		AvgLatency:    d.latency.average(),
	}
}

func (d *Dongle) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(d.requests)
	close(d.events)
	d.intf.Close()
	d.cfg.Close()
	d.dev.Close()
	d.ctx.Close()
	return nil
}
