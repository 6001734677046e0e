// Package discovery enumerates connected keyboards across all three
// transports: USB bus scanning for wired and dongle devices, a timed BLE
// advertisement scan for Bluetooth ones.
package discovery

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"
	"github.com/paypal/gatt"

	"monsgeek-hid/internal/transport"
)

// VendorID is the vendor's USB vendor id across all product variants.
const VendorID = 0x3151

// Product ids for the three USB-visible variants. ScanUSB matches only the
// wired and dongle ids; ScanBLE does not filter peripherals at all.
const (
	ProductWired  = 0x5030
	ProductDongle = 0x5038
	ProductBLE    = 0x5027
)

// Found describes one discovered keyboard, however it was reached.
type Found struct {
	Kind         transport.Kind
	VendorID     uint16
	ProductID    uint16
	SerialNumber string
	BLEPeriphID  string // set only for Kind == KindBLE
	RSSI         int    // set only for Kind == KindBLE
}

// ScanUSB enumerates every USB device matching VendorID across the wired
// and dongle product ids, in a single pass of gousb's OpenDevices over the
// bus device list with a vendor/product predicate.
func ScanUSB() ([]Found, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var (
		mu      sync.Mutex
		results []Found
	)

	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if uint16(desc.Vendor) != VendorID {
			return false
		}
		switch uint16(desc.Product) {
		case ProductWired, ProductDongle:
		default:
			return false
		}
		mu.Lock()
		kind := transport.KindWired
		if uint16(desc.Product) == ProductDongle {
			kind = transport.KindDongle
		}
		results = append(results, Found{
			Kind:      kind,
			VendorID:  uint16(desc.Vendor),
			ProductID: uint16(desc.Product),
		})
		mu.Unlock()
		return false // never keep devices open, we're only enumerating
	})
	if err != nil {
		return nil, fmt.Errorf("usb device scan: %w", err)
	}
	return results, nil
}

// ScanBLE scans for BLE advertisements for window and returns every
// peripheral seen, regardless of whether it's actually this vendor's
// keyboard (callers filter by name/service before connecting via
// transport.OpenBLE).
func ScanBLE(window time.Duration) ([]Found, error) {
	dev, err := gatt.NewDevice()
	if err != nil {
		return nil, fmt.Errorf("open ble device: %w", err)
	}

	var (
		mu      sync.Mutex
		results []Found
		seen    = make(map[string]bool)
	)

	dev.Handle(gatt.PeripheralDiscovered(func(p gatt.Peripheral, a *gatt.Advertisement, rssi int) {
		mu.Lock()
		defer mu.Unlock()
		if seen[p.ID()] {
			return
		}
		seen[p.ID()] = true
		results = append(results, Found{
			Kind:        transport.KindBLE,
			BLEPeriphID: p.ID(),
			RSSI:        rssi,
		})
	}))

	dev.Init(func(d gatt.Device, s gatt.State) {
		if s == gatt.StatePoweredOn {
			d.Scan(nil, false)
		}
	})

	time.Sleep(window)
	dev.StopScanning()

	mu.Lock()
	defer mu.Unlock()
	return results, nil
}

// ScanAll runs ScanUSB and ScanBLE concurrently and merges the results.
func ScanAll(bleWindow time.Duration) ([]Found, error) {
	var (
		usbResults []Found
		usbErr     error
		bleResults []Found
		bleErr     error
		wg         sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		usbResults, usbErr = ScanUSB()
	}()
	go func() {
		defer wg.Done()
		bleResults, bleErr = ScanBLE(bleWindow)
	}()
	wg.Wait()

	if usbErr != nil {
		return nil, usbErr
	}
	if bleErr != nil {
		return usbResults, bleErr
	}
	return append(usbResults, bleResults...), nil
}
