package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"monsgeek-hid/internal/protocol"
	"monsgeek-hid/internal/transport"
)

type fakeTransport struct {
	events chan []byte
	kind   transport.Kind
}

func newFakeTransport(kind transport.Kind) *fakeTransport {
	return &fakeTransport{events: make(chan []byte, 16), kind: kind}
}

func (f *fakeTransport) Exchange(ctx context.Context, report []byte) ([]byte, error) {
	return nil, nil
}
func (f *fakeTransport) Events() <-chan []byte { return f.events }
func (f *fakeTransport) Kind() transport.Kind  { return f.kind }
func (f *fakeTransport) Close() error          { close(f.events); return nil }

func TestSubsystemBroadcastsToSubscribers(t *testing.T) {
	fake := newFakeTransport(transport.KindWired)
	sub := New(fake)

	ch, unsubscribe := sub.Subscribe()
	defer unsubscribe()

	fake.events <- []byte{0x01, 5} // notifProfile, profile=5

	select {
	case ts := <-ch:
		require.Equal(t, protocol.EventProfileChange, ts.Event.Kind)
		require.Equal(t, byte(5), ts.Event.Profile)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast event")
	}
}

func TestSubsystemUsesBLEParserForBLEKind(t *testing.T) {
	fake := newFakeTransport(transport.KindBLE)
	sub := New(fake)

	ch, unsubscribe := sub.Subscribe()
	defer unsubscribe()

	// BLE framing: report id 0x06, marker 0x66, then the USB-shaped payload.
	fake.events <- []byte{0x06, 0x66, 0x01, 9}

	select {
	case ts := <-ch:
		require.Equal(t, protocol.EventProfileChange, ts.Event.Kind)
		require.Equal(t, byte(9), ts.Event.Profile)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast event")
	}
}

func TestMultipleSubscribersEachGetTheEvent(t *testing.T) {
	fake := newFakeTransport(transport.KindWired)
	sub := New(fake)

	ch1, unsub1 := sub.Subscribe()
	defer unsub1()
	ch2, unsub2 := sub.Subscribe()
	defer unsub2()

	require.Equal(t, 2, sub.SubscriberCount())

	fake.events <- []byte{0, 0, 0, 0} // wake

	for _, ch := range []<-chan Timestamped{ch1, ch2} {
		select {
		case ts := <-ch:
			require.Equal(t, protocol.EventWake, ts.Event.Kind)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast event")
		}
	}
}

func TestUnsubscribeClosesChannelAndDropsCount(t *testing.T) {
	fake := newFakeTransport(transport.KindWired)
	sub := New(fake)

	ch, unsubscribe := sub.Subscribe()
	unsubscribe()

	_, ok := <-ch
	require.False(t, ok)
	require.Equal(t, 0, sub.SubscriberCount())
}

func TestSubsystemShutdownClosesAllSubscriberChannels(t *testing.T) {
	fake := newFakeTransport(transport.KindWired)
	sub := New(fake)

	ch, _ := sub.Subscribe()
	require.NoError(t, fake.Close())

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestSubscribeAfterShutdownReturnsClosedChannel(t *testing.T) {
	fake := newFakeTransport(transport.KindWired)
	sub := New(fake)
	require.NoError(t, fake.Close())

	require.Eventually(t, func() bool {
		return sub.done.Load()
	}, time.Second, 10*time.Millisecond)

	ch, _ := sub.Subscribe()
	_, ok := <-ch
	require.False(t, ok)
}
