package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tonearm/types"
)

func newTestClient(h Hub, scanID string) *Client {
	return &Client{
		hub:    h,
		send:   make(chan types.ScanMessage, 4),
		scanID: scanID,
		log:    zap.NewNop(),
	}
}

func receive(t *testing.T, c *Client) types.ScanMessage {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for scan event")
		return types.ScanMessage{}
	}
}

// TestHubRoutesByScanID tests that events reach the matching scan's
// subscribers and the all-scans subscribers, and nobody else
func TestHubRoutesByScanID(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	matching := newTestClient(h, "scan-1")
	everything := newTestClient(h, AllScans)
	other := newTestClient(h, "scan-2")
	h.RegisterClient(matching)
	h.RegisterClient(everything)
	h.RegisterClient(other)

	h.ScanEvent(types.ScanMessage{
		ScanID:     "scan-1",
		Type:       "discovered",
		URI:        "file:/music/track.mp3",
		Discovered: 1,
		Timestamp:  time.Now(),
	})

	got := receive(t, matching)
	assert.Equal(t, "scan-1", got.ScanID)
	assert.Equal(t, "file:/music/track.mp3", got.URI)

	got = receive(t, everything)
	assert.Equal(t, "discovered", got.Type)

	select {
	case msg := <-other.send:
		t.Fatalf("client for another scan received %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestHubUnregisterClosesSend tests cleanup on disconnect
func TestHubUnregisterClosesSend(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	client := newTestClient(h, AllScans)
	h.RegisterClient(client)
	h.UnregisterClient(client)

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-client.send:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)

	// Events after the disconnect go nowhere, and must not panic the hub.
	h.ScanEvent(types.ScanMessage{ScanID: "scan-1", Type: "complete"})
	h.ScanEvent(types.ScanMessage{ScanID: AllScans, Type: "complete"})
	time.Sleep(20 * time.Millisecond)
}

// TestHubDropsStalledClient tests that a full send buffer evicts the
// client instead of blocking the broadcast loop
func TestHubDropsStalledClient(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	stalled := newTestClient(h, AllScans)
	// Fill the send buffer before registering so the next delivery
	// cannot fit.
	for i := 0; i < cap(stalled.send); i++ {
		stalled.send <- types.ScanMessage{Type: "discovered", Discovered: i}
	}
	h.RegisterClient(stalled)

	h.ScanEvent(types.ScanMessage{ScanID: "scan-1", Type: "discovered"})

	// Eviction closes the channel after the buffered events drain.
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-stalled.send:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, 2*time.Second, 5*time.Millisecond)
}
