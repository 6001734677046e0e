// Package flowctl wraps a transport.Transport with the command-level flow
// control every backend needs regardless of physical link: a brief delay
// after writes the firmware needs to settle, and a retry when the reply's
// echo byte doesn't match what was sent (the dongle's out-of-order replies
// occasionally slip past its own cache).
package flowctl

import (
	"context"
	"time"

	"monsgeek-hid/internal/protocol"
	"monsgeek-hid/internal/protocol/xerr"
	"monsgeek-hid/internal/transport"
)

// Wrapper decorates a transport.Transport with retry and settle-delay
// policy. It implements transport.Transport itself so callers can use it
// anywhere a bare transport is expected.
type Wrapper struct {
	inner        transport.Transport
	postSendWait time.Duration
	maxRetries   int
}

// Option configures a Wrapper.
type Option func(*Wrapper)

// WithPostSendDelay sets the pause after a successful write before the
// caller is allowed to issue the next command; the firmware on some
// transports needs this to avoid dropping back-to-back commands.
func WithPostSendDelay(d time.Duration) Option {
	return func(w *Wrapper) { w.postSendWait = d }
}

// WithMaxRetries sets how many times Exchange retries after an echo
// mismatch before giving up. Default is 2.
func WithMaxRetries(n int) Option {
	return func(w *Wrapper) { w.maxRetries = n }
}

// New wraps inner with the given options.
func New(inner transport.Transport, opts ...Option) *Wrapper {
	w := &Wrapper{inner: inner, postSendWait: 2 * time.Millisecond, maxRetries: 2}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Exchange sends report and retries on echo mismatch up to maxRetries
// times. Commands with no echo byte (GET_MULTI_MAGNETISM) should be sent
// through RawExchange instead, which skips the echo check entirely.
func (w *Wrapper) Exchange(ctx context.Context, report []byte) ([]byte, error) {
	if len(report) < 2 {
		return w.inner.Exchange(ctx, report)
	}
	wantEcho := report[1]
	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		resp, err := w.inner.Exchange(ctx, report)
		if err != nil {
			lastErr = err
			continue
		}
		time.Sleep(w.postSendWait)
		if len(resp) == 0 || resp[0] == wantEcho {
			return resp, nil
		}
		lastErr = xerr.NewInvalidResponse([]byte{wantEcho}, []byte{resp[0]})
	}
	return nil, lastErr
}

// RawExchange sends report without echo validation, for commands such as
// GET_MULTI_MAGNETISM whose response carries no echo byte.
func (w *Wrapper) RawExchange(ctx context.Context, report []byte) ([]byte, error) {
	resp, err := w.inner.Exchange(ctx, report)
	if err != nil {
		return nil, err
	}
	time.Sleep(w.postSendWait)
	return resp, nil
}

func (w *Wrapper) Events() <-chan []byte { return w.inner.Events() }
func (w *Wrapper) Kind() transport.Kind  { return w.inner.Kind() }
func (w *Wrapper) Close() error          { return w.inner.Close() }

// Codec is implemented by any request/response pair whose wire shapes are
// known: typed callers build the outbound payload and parse the inbound
// one without hand-rolling byte slicing at every call site.
type Codec[Req, Resp any] interface {
	Encode(req Req) (cmd byte, payload []byte, checksum protocol.ChecksumKind)
	Decode(resp []byte) (Resp, error)
}

// Query sends a typed request and decodes a typed response through codec,
// building and checksumming the command and stripping the response's echo
// byte before decode.
func Query[Req, Resp any](ctx context.Context, w *Wrapper, codec Codec[Req, Resp], req Req) (Resp, error) {
	var zero Resp
	cmd, payload, checksum := codec.Encode(req)
	report := protocol.BuildCommand(cmd, payload, checksum)
	resp, err := w.Exchange(ctx, report[:])
	if err != nil {
		return zero, err
	}
	body := resp
	if len(body) > 0 {
		body = body[1:] // drop echo byte
	}
	return codec.Decode(body)
}

// SendCodec is implemented by fire-and-forget commands that only need to
// encode an outbound payload — most SET_* commands, whose reply is just a
// StatusSuccess echo the caller doesn't need decoded.
type SendCodec[Cmd any] interface {
	Encode(cmd Cmd) (command byte, payload []byte, checksum protocol.ChecksumKind)
}

// Send encodes cmd, sends it, and reports whether the firmware acked with
// StatusSuccess.
func Send[Cmd any](ctx context.Context, w *Wrapper, codec SendCodec[Cmd], cmd Cmd) error {
	command, payload, checksum := codec.Encode(cmd)
	report := protocol.BuildCommand(command, payload, checksum)
	resp, err := w.Exchange(ctx, report[:])
	if err != nil {
		return err
	}
	if len(resp) < 2 || resp[1] != protocol.StatusSuccess {
		return xerr.NewInvalidResponse([]byte{protocol.StatusSuccess}, resp)
	}
	return nil
}
