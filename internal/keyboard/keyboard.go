// Package keyboard is the high-level facade over internal/flowctl: one
// method per vendor operation (profile, LED, magnetism, macro, keymap,
// userpic, patch features), each building the wire command from
// internal/protocol and driving it through the shared Wrapper.
package keyboard

import (
	"context"
	"fmt"
	"time"

	"monsgeek-hid/internal/flowctl"
	"monsgeek-hid/internal/protocol"
	"monsgeek-hid/internal/protocol/xerr"
	"monsgeek-hid/internal/transport"
)

// Keyboard is a connected vendor keyboard reachable over any Transport.
type Keyboard struct {
	wrap      *flowctl.Wrapper
	checksum  protocol.ChecksumKind
	precision uint16 // travel precision factor: 10, 100, or 200
}

// New wraps an already-open transport.Transport with the command-level
// flow control every operation below relies on.
func New(t transport.Transport, checksum protocol.ChecksumKind) *Keyboard {
	return &Keyboard{
		wrap:      flowctl.New(t, postSendDelayFor(t.Kind())),
		checksum:  checksum,
		precision: 10,
	}
}

// postSendDelayFor returns the per-transport post-send delay budget: the
// device may silently drop a write issued during the previous write's
// internal processing, and wired/BLE need a longer budget than flowctl's
// generic default to stay clear of that window.
func postSendDelayFor(kind transport.Kind) flowctl.Option {
	switch kind {
	case transport.KindBLE:
		return flowctl.WithPostSendDelay(150 * time.Millisecond)
	case transport.KindWired:
		return flowctl.WithPostSendDelay(100 * time.Millisecond)
	default:
		return flowctl.WithPostSendDelay(2 * time.Millisecond)
	}
}

func (k *Keyboard) Kind() transport.Kind { return k.wrap.Kind() }
func (k *Keyboard) Close() error         { return k.wrap.Close() }

func (k *Keyboard) send(ctx context.Context, cmd byte, payload []byte) error {
	report := protocol.BuildCommand(cmd, payload, k.checksum)
	resp, err := k.wrap.Exchange(ctx, report[:])
	if err != nil {
		return err
	}
	if len(resp) < 2 || resp[1] != protocol.StatusSuccess {
		return fmt.Errorf("%w: cmd 0x%02X", xerr.ErrInvalidResponse, cmd)
	}
	return nil
}

func (k *Keyboard) query(ctx context.Context, cmd byte, payload []byte) ([]byte, error) {
	report := protocol.BuildCommand(cmd, payload, k.checksum)
	resp, err := k.wrap.Exchange(ctx, report[:])
	if err != nil {
		return nil, err
	}
	if len(resp) < 1 {
		return nil, xerr.ErrInvalidResponse
	}
	return resp[1:], nil
}

// SetProfile switches the active profile, 0..3.
func (k *Keyboard) SetProfile(ctx context.Context, profile byte) error {
	if profile > 3 {
		return fmt.Errorf("%w: profile %d out of range", xerr.ErrInvalidParameter, profile)
	}
	return k.send(ctx, protocol.CmdSetProfile, []byte{profile})
}

// GetProfile returns the active profile.
func (k *Keyboard) GetProfile(ctx context.Context) (byte, error) {
	resp, err := k.query(ctx, protocol.CmdGetProfile, nil)
	if err != nil || len(resp) == 0 {
		return 0, err
	}
	return resp[0], nil
}

// FactoryReset restores firmware defaults.
func (k *Keyboard) FactoryReset(ctx context.Context) error {
	return k.send(ctx, protocol.CmdSetReset, nil)
}

// SetDebounce sets the debounce time in milliseconds, 0..50.
func (k *Keyboard) SetDebounce(ctx context.Context, ms byte) error {
	if ms > 50 {
		return fmt.Errorf("%w: debounce %dms out of range", xerr.ErrInvalidParameter, ms)
	}
	return k.send(ctx, protocol.CmdSetDebounce, []byte{ms})
}

// LEDParams is the payload of SET_LEDPARAM / SET_SLEDPARAM.
type LEDParams struct {
	Mode           byte
	InvertedSpeed  byte // firmware stores speed inverted: 0 = fastest
	Brightness     byte
	Layer          byte // upper nibble of option
	Dazzle         bool // lower nibble of option: 7=on, 8=off
	Red, Green, Blue byte
}

func (p LEDParams) encode() []byte {
	option := (p.Layer << 4) & 0xF0
	if p.Dazzle {
		option |= 0x07
	} else {
		option |= 0x08
	}
	return []byte{p.Mode, p.InvertedSpeed, p.Brightness, option, p.Red, p.Green, p.Blue}
}

// SetLEDParams sets the main LED effect parameters.
func (k *Keyboard) SetLEDParams(ctx context.Context, p LEDParams) error {
	return k.send(ctx, protocol.CmdSetLedParam, p.encode())
}

// SetSideLEDParams sets the side-LED strip parameters.
func (k *Keyboard) SetSideLEDParams(ctx context.Context, p LEDParams) error {
	return k.send(ctx, protocol.CmdSetSLedParam, p.encode())
}

// KeyboardOptions packs the SET_KBOPTION toggle set.
type KeyboardOptions struct {
	OSMode    byte // 0 = Windows, 1 = Mac
	FnLayer   bool
	AntiGhost bool
	WASDSwap  bool
}

// SetKeyboardOptions writes the OS mode / Fn layer / anti-ghost / WASD swap
// toggle set.
func (k *Keyboard) SetKeyboardOptions(ctx context.Context, o KeyboardOptions) error {
	var flags byte
	if o.FnLayer {
		flags |= 0x01
	}
	if o.AntiGhost {
		flags |= 0x02
	}
	if o.WASDSwap {
		flags |= 0x04
	}
	return k.send(ctx, protocol.CmdSetKbOption, []byte{o.OSMode, flags})
}

// SetKeyMatrixEntry remaps one key on profile: layer 0 is the base layer,
// layer 1 is reached through SetFnLayerKey instead.
func (k *Keyboard) SetKeyMatrixEntry(ctx context.Context, profileNum, keyIndex, layer byte, action protocol.KeyAction) error {
	cfg := action.ToConfigBytes()
	payload := []byte{profileNum, keyIndex, layer, 1, cfg[0], cfg[1], cfg[2], cfg[3]}
	return k.send(ctx, protocol.CmdSetKeyMatrix, payload)
}

// SetFnLayerKey remaps one key on the Fn layer.
func (k *Keyboard) SetFnLayerKey(ctx context.Context, profileNum, keyIndex byte, action protocol.KeyAction) error {
	cfg := action.ToConfigBytes()
	payload := []byte{profileNum, keyIndex, 1, 1, cfg[0], cfg[1], cfg[2], cfg[3]}
	return k.send(ctx, protocol.CmdSetFn, payload)
}

// GetKeyMatrixEntry reads back one key's assignment.
func (k *Keyboard) GetKeyMatrixEntry(ctx context.Context, profileNum, keyIndex, layer byte) (protocol.KeyAction, error) {
	resp, err := k.query(ctx, protocol.CmdGetKeyMatrix, []byte{profileNum, keyIndex, layer})
	if err != nil {
		return protocol.KeyAction{}, err
	}
	if len(resp) < 4 {
		return protocol.KeyAction{}, xerr.ErrInvalidResponse
	}
	return protocol.KeyActionFromConfigBytes([4]byte{resp[0], resp[1], resp[2], resp[3]}), nil
}

// SleepTimers is the payload of SET_SLEEPTIME, all fields in seconds.
type SleepTimers struct {
	IdleBT, Idle24 uint16
	DeepBT, Deep24 uint16
}

// SetSleepTimers configures idle and deep sleep timers per radio.
func (k *Keyboard) SetSleepTimers(ctx context.Context, t SleepTimers) error {
	payload := []byte{
		byte(t.IdleBT), byte(t.IdleBT >> 8),
		byte(t.Idle24), byte(t.Idle24 >> 8),
		byte(t.DeepBT), byte(t.DeepBT >> 8),
		byte(t.Deep24), byte(t.Deep24 >> 8),
	}
	return k.send(ctx, protocol.CmdSetSleepTime, payload)
}

// SetMagnetismReporting turns the live key-depth event stream on or off.
func (k *Keyboard) SetMagnetismReporting(ctx context.Context, on bool) error {
	v := byte(0)
	if on {
		v = 1
	}
	return k.send(ctx, protocol.CmdSetMagnetismReport, []byte{v})
}

// StartCalibration begins min/max travel calibration; StopCalibration ends
// it and commits the observed range.
func (k *Keyboard) StartCalibration(ctx context.Context) error {
	return k.send(ctx, protocol.CmdSetMagnetismCal, []byte{1})
}

func (k *Keyboard) StopCalibration(ctx context.Context) error {
	return k.send(ctx, protocol.CmdSetMagnetismMaxCal, []byte{0})
}

// GetBatteryStatus queries the keyboard's current battery state — the
// callable counterpart to the unsolicited EventBatteryStatus notification.
// On a dongle transport this is GET_DONGLE_STATUS (0xF7), answered by the
// dongle's own firmware and never forwarded to the keyboard over the
// radio; charging state isn't available through this path. Wired (and
// BLE, which has no dongle-side status command to ask) never answers a
// standalone battery query, so this returns the documented always-online
// constant the vendor driver uses for those transports.
func (k *Keyboard) GetBatteryStatus(ctx context.Context) (level byte, online bool, idle bool, err error) {
	if k.Kind() != transport.KindDongle {
		return 100, true, false, nil
	}
	resp, err := k.query(ctx, protocol.CmdGetDongleStatus, nil)
	if err != nil {
		return 0, false, false, err
	}
	if len(resp) < 6 {
		return 0, false, false, xerr.ErrInvalidResponse
	}
	hasResponse := resp[0]
	level = resp[1]
	rfReady := resp[5]
	return level, rfReady != 0, hasResponse == 0, nil
}

// SetKeyTrigger sets one key's actuation/deactuation points and mode.
// actuation/deactuation are tenths of a millimeter, per the wire table.
func (k *Keyboard) SetKeyTrigger(ctx context.Context, keyIndex, actuationTenthsMM, deactuationTenthsMM, mode byte) error {
	return k.send(ctx, protocol.CmdSetKeyMagnetMode, []byte{keyIndex, actuationTenthsMM, deactuationTenthsMM, mode})
}

// mmToRaw converts millimeters to the device's raw travel units using the
// announced precision factor (10 = 0.1mm, 100 = 0.01mm, 200 = 0.005mm).
func (k *Keyboard) mmToRaw(mm float64) uint16 {
	switch {
	case k.precision >= 200:
		return uint16(mm / 0.005)
	case k.precision >= 100:
		return uint16(mm / 0.01)
	default:
		return uint16(mm / 0.1)
	}
}

func (k *Keyboard) rawToMM(raw uint16) float64 {
	switch {
	case k.precision >= 200:
		return float64(raw) * 0.005
	case k.precision >= 100:
		return float64(raw) * 0.01
	default:
		return float64(raw) * 0.1
	}
}

// SetMultiMagnetismPage writes one page of an extended multi-magnetism
// sub-command (press/lift travel, rapid-trigger thresholds, deadzones,
// per-key mode, snap-tap, DKS, switch type, calibration).
func (k *Keyboard) SetMultiMagnetismPage(ctx context.Context, sub byte, page, commit byte, payload []byte) error {
	data := make([]byte, 0, 7+len(payload))
	data = append(data, sub, 1, page, commit, 0, 0, 0)
	data = append(data, payload...)
	return k.send(ctx, protocol.CmdSetMultiMagnetism, data)
}

// GetMultiMagnetismPage reads one page. The response carries no echo byte
// (the one exception in the protocol), so it bypasses flowctl.Wrapper's
// echo-checked Exchange via RawExchange.
func (k *Keyboard) GetMultiMagnetismPage(ctx context.Context, sub byte, page byte) ([]byte, error) {
	report := protocol.BuildCommand(protocol.CmdGetMultiMagnetism, []byte{sub, 1, page}, k.checksum)
	return k.wrap.RawExchange(ctx, report[:])
}

// SetActuationMM is a millimeter-unit convenience over SetMultiMagnetismPage
// for SubPressTravel.
func (k *Keyboard) SetActuationMM(ctx context.Context, keyIndex byte, mm float64) error {
	raw := k.mmToRaw(mm)
	payload := []byte{keyIndex, byte(raw), byte(raw >> 8)}
	return k.SetMultiMagnetismPage(ctx, protocol.SubPressTravel, 0, 1, payload)
}

// GetFeatureList returns the bitmask of optional firmware features.
func (k *Keyboard) GetFeatureList(ctx context.Context) (uint32, error) {
	resp, err := k.query(ctx, protocol.CmdGetFeatureList, nil)
	if err != nil {
		return 0, err
	}
	if len(resp) < 4 {
		return 0, nil
	}
	return uint32(resp[0]) | uint32(resp[1])<<8 | uint32(resp[2])<<16 | uint32(resp[3])<<24, nil
}

// PatchInfo describes an installed firmware extension, discovered via
// GET_PATCH_INFO's magic-byte handshake.
type PatchInfo struct {
	Installed    bool
	Version      byte
	Capabilities uint16
	Name         string
}

// GetPatchInfo probes for a firmware extension. Stock firmware ignores the
// magic bytes and returns a response that fails the magic check, so
// Installed=false is the expected result on unmodified hardware.
func (k *Keyboard) GetPatchInfo(ctx context.Context) (PatchInfo, error) {
	resp, err := k.query(ctx, protocol.CmdGetPatchInfo, protocol.PatchInfoRequest())
	if err != nil {
		return PatchInfo{}, err
	}
	if !protocol.IsPatchMagic(resp) || len(resp) < 14 {
		return PatchInfo{}, nil
	}
	name := resp[6:14]
	nameLen := 0
	for nameLen < len(name) && name[nameLen] != 0 {
		nameLen++
	}
	return PatchInfo{
		Installed:    true,
		Version:      resp[2],
		Capabilities: uint16(resp[3]) | uint16(resp[4])<<8,
		Name:         string(name[:nameLen]),
	}, nil
}

// StreamLEDPage pushes one LED animation frame page through the patch's
// streaming command. It goes through RawExchange, so it skips the echo
// check but still waits the wrapper's per-transport post-send delay, like
// every other command.
func (k *Keyboard) StreamLEDPage(ctx context.Context, page byte, rgb []byte) error {
	payload := append([]byte{0x01, page}, rgb...)
	report := protocol.BuildCommand(protocol.CmdLedStream, payload, protocol.ChecksumNone)
	resp, err := k.wrap.RawExchange(ctx, report[:])
	if err != nil {
		return err
	}
	if len(resp) < 1 || resp[0] != protocol.StatusSuccess {
		return xerr.ErrInvalidResponse
	}
	return nil
}

// StreamLEDCommit flips the streamed frame to the active buffer.
func (k *Keyboard) StreamLEDCommit(ctx context.Context) error {
	report := protocol.BuildCommand(protocol.CmdLedStream, []byte{0x02}, protocol.ChecksumNone)
	_, err := k.wrap.RawExchange(ctx, report[:])
	return err
}

// StreamLEDRelease returns LED control to the firmware's normal effect
// engine.
func (k *Keyboard) StreamLEDRelease(ctx context.Context) error {
	report := protocol.BuildCommand(protocol.CmdLedStream, []byte{0x03}, protocol.ChecksumNone)
	_, err := k.wrap.RawExchange(ctx, report[:])
	return err
}

// SetMacro assigns a macro sequence to slot, paging the encoded bytes per
// the 56-byte-page SET_MACRO wire format.
func (k *Keyboard) SetMacro(ctx context.Context, slot byte, seq protocol.MacroSeq) error {
	data := protocol.EncodeMacroData(seq.ToEvents(), seq.Repeat)
	pages := protocol.PageMacroData(data)
	for i, page := range pages {
		last := byte(0)
		if i == len(pages)-1 {
			last = 1
		}
		payload := make([]byte, 0, 7+len(page))
		payload = append(payload, slot, byte(i), byte(len(page)), last, 0, 0, 0)
		payload = append(payload, page...)
		if err := k.send(ctx, protocol.CmdSetMacro, payload); err != nil {
			return fmt.Errorf("macro page %d: %w", i, err)
		}
		if last == 0 {
			time.Sleep(30 * time.Millisecond)
		}
	}
	return nil
}

// GetMacro reads back slot's assigned macro sequence, one page at a time
// until the firmware reports the last page.
func (k *Keyboard) GetMacro(ctx context.Context, slot byte) (protocol.MacroSeq, error) {
	var data []byte
	for page := byte(0); ; page++ {
		resp, err := k.query(ctx, protocol.CmdGetMacro, []byte{slot, page})
		if err != nil {
			return protocol.MacroSeq{}, err
		}
		if len(resp) < 4 {
			break
		}
		size := resp[1]
		last := resp[2]
		body := resp[3:]
		if int(size) < len(body) {
			body = body[:size]
		}
		data = append(data, body...)
		if last != 0 {
			break
		}
	}
	repeat, rawEvents, err := protocol.DecodeMacroData(data)
	if err != nil {
		return protocol.MacroSeq{}, err
	}
	steps, defaultDelay := protocol.ParseMacroEvents(rawEvents)
	return protocol.MacroSeq{Steps: steps, DefaultDelay: defaultDelay, Repeat: repeat}, nil
}

// SetUserpic uploads a userpic image in 56-byte RGB pages to slot.
func (k *Keyboard) SetUserpic(ctx context.Context, slot byte, rgbData []byte) error {
	pages := protocol.PageMacroData(rgbData) // same 56-byte paging convention
	for i, page := range pages {
		last := byte(0)
		if i == len(pages)-1 {
			last = 1
		}
		payload := []byte{slot, 0xFF, byte(i), byte(len(page)), last, 0, 0}
		payload = append(payload, page...)
		if err := k.send(ctx, protocol.CmdSetUserpic, payload); err != nil {
			return fmt.Errorf("userpic page %d: %w", i, err)
		}
	}
	return nil
}
