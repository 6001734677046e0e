package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"monsgeek-hid/internal/driver/device"
)

func TestWatchTraceStopsOnReaderError(t *testing.T) {
	// watchTrace has no mockable seam for a real device.Tracer (it wraps an
	// OS-level ring buffer reader), so this only exercises that calling it
	// with an already-closed tracer returns promptly instead of hanging.
	tracer, err := device.NewTracer()
	if err != nil {
		t.Skipf("bpf tracer unavailable in this environment: %v", err)
	}
	require.NoError(t, tracer.Close())

	done := make(chan struct{})
	go func() {
		watchTrace(tracer)
		close(done)
	}()

	require.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
