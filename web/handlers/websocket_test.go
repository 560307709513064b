package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/focusd/pkg/types"
)

func TestWebSocketHubBroadcastEvent(t *testing.T) {
	hub := NewWebSocketHub(6767)
	go hub.Run()
	defer hub.Stop()

	client := &MockClient{SendChan: make(chan []byte, 8)}
	hub.Register(client)

	event := &types.ClassificationEvent{
		ID:         "evt-1",
		Theme:      types.Theme{Category: "Work", Subcategory: "Development", Specific: "Backend"},
		Analysis:   "editing code",
		Confidence: 90,
		OccurredAt: time.Now(),
	}
	hub.BroadcastEvent(event)

	select {
	case data := <-client.SendChan:
		var msg EventMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "classification", msg.Type)
		require.NotNil(t, msg.Event)
		assert.Equal(t, "evt-1", msg.Event.ID)
		assert.Equal(t, "Work", msg.Event.Theme.Category)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestWebSocketHubDropsSlowClient(t *testing.T) {
	hub := NewWebSocketHub(6767)
	go hub.Run()
	defer hub.Stop()

	// Unbuffered channel with no reader: the first broadcast evicts it.
	slow := &MockClient{SendChan: make(chan []byte)}
	hub.Register(slow)

	hub.Broadcast(map[string]string{"type": "ping"})

	// The eviction closes the send channel.
	select {
	case _, open := <-slow.SendChan:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for slow client eviction")
	}
}

func TestWebSocketHubUnregister(t *testing.T) {
	hub := NewWebSocketHub(6767)
	go hub.Run()
	defer hub.Stop()

	client := &MockClient{SendChan: make(chan []byte, 1)}
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, open := <-client.SendChan:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
