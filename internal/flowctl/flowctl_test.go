package flowctl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"monsgeek-hid/internal/protocol"
	"monsgeek-hid/internal/transport"
)

type fakeTransport struct {
	responses [][]byte
	calls     int
	events    chan []byte
	closed    bool
}

func newFakeTransport(responses ...[]byte) *fakeTransport {
	return &fakeTransport{responses: responses, events: make(chan []byte, 1)}
}

func (f *fakeTransport) Exchange(ctx context.Context, report []byte) ([]byte, error) {
	if f.calls >= len(f.responses) {
		return nil, errors.New("fakeTransport: no more canned responses")
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func (f *fakeTransport) Events() <-chan []byte { return f.events }
func (f *fakeTransport) Kind() transport.Kind  { return transport.KindWired }
func (f *fakeTransport) Close() error          { f.closed = true; return nil }

func TestExchangeReturnsOnEchoMatch(t *testing.T) {
	fake := newFakeTransport([]byte{protocol.CmdSetProfile, protocol.StatusSuccess})
	w := New(fake, WithPostSendDelay(0))

	resp, err := w.Exchange(context.Background(), []byte{0, protocol.CmdSetProfile, 2})
	require.NoError(t, err)
	require.Equal(t, []byte{protocol.CmdSetProfile, protocol.StatusSuccess}, resp)
	require.Equal(t, 1, fake.calls)
}

func TestExchangeRetriesOnEchoMismatch(t *testing.T) {
	fake := newFakeTransport(
		[]byte{0x99, 0}, // wrong echo
		[]byte{protocol.CmdSetProfile, protocol.StatusSuccess},
	)
	w := New(fake, WithPostSendDelay(0), WithMaxRetries(2))

	resp, err := w.Exchange(context.Background(), []byte{0, protocol.CmdSetProfile, 2})
	require.NoError(t, err)
	require.Equal(t, []byte{protocol.CmdSetProfile, protocol.StatusSuccess}, resp)
	require.Equal(t, 2, fake.calls)
}

func TestExchangeGivesUpAfterMaxRetries(t *testing.T) {
	fake := newFakeTransport(
		[]byte{0x99, 0},
		[]byte{0x99, 0},
		[]byte{0x99, 0},
	)
	w := New(fake, WithPostSendDelay(0), WithMaxRetries(2))

	_, err := w.Exchange(context.Background(), []byte{0, protocol.CmdSetProfile, 2})
	require.Error(t, err)
	require.Equal(t, 3, fake.calls)
}

func TestExchangeSkipsEchoCheckForShortReports(t *testing.T) {
	fake := newFakeTransport([]byte{1, 2, 3})
	w := New(fake, WithPostSendDelay(0))

	resp, err := w.Exchange(context.Background(), []byte{0})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, resp)
}

func TestRawExchangeSkipsEchoValidation(t *testing.T) {
	fake := newFakeTransport([]byte{0xAA, 0xBB})
	w := New(fake, WithPostSendDelay(0))

	resp, err := w.RawExchange(context.Background(), []byte{0, protocol.CmdGetMultiMagnetism})
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB}, resp)
}

func TestWrapperDelegatesKindAndClose(t *testing.T) {
	fake := newFakeTransport()
	w := New(fake)
	require.Equal(t, transport.KindWired, w.Kind())
	require.NoError(t, w.Close())
	require.True(t, fake.closed)
}

type setProfileCodec struct{}

func (setProfileCodec) Encode(profile byte) (byte, []byte, protocol.ChecksumKind) {
	return protocol.CmdSetProfile, []byte{profile}, protocol.ChecksumNone
}

func TestSendSucceedsOnStatusSuccess(t *testing.T) {
	fake := newFakeTransport([]byte{protocol.CmdSetProfile, protocol.StatusSuccess})
	w := New(fake, WithPostSendDelay(0))

	err := Send[byte](context.Background(), w, setProfileCodec{}, 1)
	require.NoError(t, err)
}

func TestSendFailsOnNonSuccessStatus(t *testing.T) {
	fake := newFakeTransport([]byte{protocol.CmdSetProfile, 0x01})
	w := New(fake, WithPostSendDelay(0), WithMaxRetries(0))

	err := Send[byte](context.Background(), w, setProfileCodec{}, 1)
	require.Error(t, err)
}

type getProfileCodec struct{}

func (getProfileCodec) Encode(struct{}) (byte, []byte, protocol.ChecksumKind) {
	return protocol.CmdGetProfile, nil, protocol.ChecksumNone
}

func (getProfileCodec) Decode(resp []byte) (byte, error) {
	if len(resp) == 0 {
		return 0, errors.New("empty response")
	}
	return resp[0], nil
}

func TestQueryDecodesResponseBody(t *testing.T) {
	fake := newFakeTransport([]byte{protocol.CmdGetProfile, 3})
	w := New(fake, WithPostSendDelay(0))

	profile, err := Query[struct{}, byte](context.Background(), w, getProfileCodec{}, struct{}{})
	require.NoError(t, err)
	require.Equal(t, byte(3), profile)
}

func TestPostSendDelayIsApplied(t *testing.T) {
	fake := newFakeTransport([]byte{protocol.CmdSetProfile, protocol.StatusSuccess})
	w := New(fake, WithPostSendDelay(15*time.Millisecond))

	start := time.Now()
	_, err := w.Exchange(context.Background(), []byte{0, protocol.CmdSetProfile, 2})
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
