package transport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paypal/gatt"

	"monsgeek-hid/internal/protocol/xerr"
)

// BLE UUIDs for the vendor's keyboard service: one write characteristic for
// commands, one notify characteristic for responses and events. Both carry
// the 66-byte BLE envelope (report id 0x06, marker byte, cmd, payload,
// checksum) defined in internal/protocol.
var (
	BLEServiceUUID  = gatt.MustParseUUID("0000fee7-0000-1000-8000-00805f9b34fb")
	BLEWriteCharUUID  = gatt.MustParseUUID("000036f5-0000-1000-8000-00805f9b34fb")
	BLENotifyCharUUID = gatt.MustParseUUID("000036f6-0000-1000-8000-00805f9b34fb")
)

// BLE is the Bluetooth LE Transport. It connects as a GATT central to the
// keyboard's advertised peripheral, writes commands to the write
// characteristic, and polls the notify characteristic for both command
// replies and unsolicited events — SetNotifyValue on this platform only
// toggles the CCCD, so delivery is pull-based rather than callback-driven.
type BLE struct {
	device gatt.Device
	periph gatt.Peripheral
	wChar  *gatt.Characteristic
	nChar  *gatt.Characteristic

	mu      sync.Mutex
	pending chan []byte

	events  chan []byte
	closed  atomic.Bool
	ready   chan struct{}
	readyMu sync.Once

	statsMu   sync.Mutex
	exchanges uint64
	timeouts  uint64
}

// OpenBLE connects to the keyboard advertising peripheralID and returns a
// ready BLE Transport once service/characteristic discovery completes.
func OpenBLE(peripheralID string) (*BLE, error) {
	b := &BLE{
		pending: make(chan []byte, 1),
		events:  make(chan []byte, eventsCap),
		ready:   make(chan struct{}),
	}

	dev, err := gatt.NewDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: open ble device: %v", xerr.ErrHID, err)
	}
	b.device = dev

	dev.Handle(
		gatt.PeripheralDiscovered(func(p gatt.Peripheral, a *gatt.Advertisement, rssi int) {
			if p.ID() != peripheralID {
				return
			}
			p.Device().StopScanning()
			p.Device().Connect(p)
		}),
		gatt.PeripheralConnected(b.onConnected),
		gatt.PeripheralDisconnected(b.onDisconnected),
	)

	dev.Init(func(d gatt.Device, s gatt.State) {
		if s == gatt.StatePoweredOn {
			d.Scan(nil, false)
		}
	})

	select {
	case <-b.ready:
	case <-time.After(10 * time.Second):
		return nil, fmt.Errorf("%w: ble discovery timed out", xerr.ErrTimeout)
	}
	return b, nil
}

func (b *BLE) onConnected(p gatt.Peripheral, err error) {
	if err != nil {
		return
	}
	b.periph = p
	services, err := p.DiscoverServices([]gatt.UUID{BLEServiceUUID})
	if err != nil || len(services) == 0 {
		return
	}
	chars, err := p.DiscoverCharacteristics(nil, services[0])
	if err != nil {
		return
	}
	for _, c := range chars {
		switch c.UUID().String() {
		case BLEWriteCharUUID.String():
			b.wChar = c
		case BLENotifyCharUUID.String():
			b.nChar = c
			_ = p.SetNotifyValue(c, true)
		}
	}
	go b.pollLoop()
	b.readyMu.Do(func() { close(b.ready) })
}

func (b *BLE) onDisconnected(p gatt.Peripheral, err error) {
	b.closed.Store(true)
}

// pollLoop reads the notify characteristic on a short interval: the
// keyboard's BLE firmware updates it whenever a reply or event is ready,
// and this platform's SetNotifyValue only arms the CCCD rather than
// delivering values via callback.
func (b *BLE) pollLoop() {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	var last []byte
	for range ticker.C {
		if b.closed.Load() {
			return
		}
		data, err := b.periph.ReadCharacteristic(b.nChar)
		if err != nil || len(data) == 0 || bytesEqual(data, last) {
			continue
		}
		last = append([]byte(nil), data...)
		select {
		case b.pending <- last:
		default:
			select {
			case b.events <- last:
			default:
			}
		}
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Exchange writes report to the write characteristic and waits for the
// next notify-characteristic value.
func (b *BLE) Exchange(ctx context.Context, report []byte) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed.Load() || b.wChar == nil {
		return nil, xerr.ErrDisconnected
	}
	if err := b.periph.WriteCharacteristic(b.wChar, report, false); err != nil {
		return nil, fmt.Errorf("%w: %v", xerr.ErrHID, err)
	}

	select {
	case resp := <-b.pending:
		b.statsMu.Lock()
		b.exchanges++
		b.statsMu.Unlock()
		return resp, nil
	case <-ctx.Done():
		b.statsMu.Lock()
		b.timeouts++
		b.statsMu.Unlock()
		return nil, xerr.ErrTimeout
	case <-time.After(2 * time.Second):
		b.statsMu.Lock()
		b.timeouts++
		b.statsMu.Unlock()
		return nil, xerr.ErrTimeout
	}
}

func (b *BLE) Events() <-chan []byte { return b.events }

func (b *BLE) Kind() Kind { return KindBLE }

func (b *BLE) Stats() Stats {
	b.statsMu.Lock()
	defer b.statsMu.Unlock()
	return Stats{Exchanges: b.exchanges, Timeouts: b.timeouts}
}

func (b *BLE) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	if b.periph != nil {
		b.device.CancelConnection(b.periph)
	}
	close(b.events)
	return nil
}
