package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"monsgeek-hid/internal/events"
	"monsgeek-hid/internal/protocol"
)

func TestVendorEventToMessageMapsKeyDepth(t *testing.T) {
	at := time.Unix(1234, 0)
	ts := events.Timestamped{
		Event: protocol.VendorEvent{Kind: protocol.EventKeyDepth, KeyIndex: 9, Depth: 512},
		At:    at,
	}

	msg := vendorEventToMessage(ts)
	require.Equal(t, "KeyDepth", msg.Kind)
	require.Equal(t, byte(9), msg.KeyIndex)
	require.Equal(t, uint16(512), msg.Depth)
	require.Equal(t, at.Unix(), msg.ObservedAtUnix)
}

func TestVendorEventToMessageMapsBatteryStatus(t *testing.T) {
	ts := events.Timestamped{
		Event: protocol.VendorEvent{
			Kind:            protocol.EventBatteryStatus,
			BatteryLevel:    77,
			BatteryCharging: true,
			BatteryOnline:   true,
		},
		At: time.Now(),
	}

	msg := vendorEventToMessage(ts)
	require.Equal(t, "BatteryStatus", msg.Kind)
	require.Equal(t, byte(77), msg.BatteryLevel)
	require.True(t, msg.BatteryCharging)
	require.True(t, msg.BatteryOnline)
}

func TestVendorEventToMessageKindIsStableTagNotFormattedString(t *testing.T) {
	ts := events.Timestamped{
		Event: protocol.VendorEvent{Kind: protocol.EventProfileChange, Profile: 2},
		At:    time.Now(),
	}
	msg := vendorEventToMessage(ts)
	require.Equal(t, "ProfileChange", msg.Kind)
	require.Equal(t, byte(2), msg.Profile)
}
