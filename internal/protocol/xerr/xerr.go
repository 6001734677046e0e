// Package xerr defines the error taxonomy shared by the transport, flow
// control, and keyboard layers. Callers should use errors.Is/As against the
// sentinel and typed values here rather than string-matching error text.
package xerr

import "fmt"

// Sentinel errors, wrapped with fmt.Errorf("...: %w", ...) at the call site
// so errors.Is still matches while context is preserved.
var (
	ErrDeviceNotFound        = sentinel("device not found")
	ErrDisconnected          = sentinel("device disconnected")
	ErrTimeout               = sentinel("operation timed out")
	ErrChecksum              = sentinel("checksum mismatch")
	ErrHID                   = sentinel("hid transport error")
	ErrHIDPermissionDenied   = sentinel("hid permission denied")
	ErrDongleBufferOverflow  = sentinel("dongle response buffer overflow")
	ErrKeyboardOffline       = sentinel("keyboard offline (dongle present, receiver asleep)")
	ErrNotSupported          = sentinel("operation not supported on this transport")
	ErrInvalidParameter      = sentinel("invalid parameter")
	ErrInternal              = sentinel("internal error")
)

type sentinelError string

func sentinel(msg string) error { return sentinelError(msg) }

func (e sentinelError) Error() string { return string(e) }

// InvalidResponseError reports a command/response mismatch: the echo byte,
// status byte, or length didn't match what the caller expected.
type InvalidResponseError struct {
	Expected []byte
	Actual   []byte
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response: expected %x, got %x", e.Expected, e.Actual)
}

func (e *InvalidResponseError) Is(target error) bool {
	return target == ErrInvalidResponse
}

// ErrInvalidResponse is the sentinel InvalidResponseError.Is matches against.
var ErrInvalidResponse = sentinel("invalid response")

// NewInvalidResponse builds an InvalidResponseError carrying the mismatched
// bytes, for callers that want the detail rather than just the sentinel.
func NewInvalidResponse(expected, actual []byte) error {
	return &InvalidResponseError{
		Expected: append([]byte(nil), expected...),
		Actual:   append([]byte(nil), actual...),
	}
}
