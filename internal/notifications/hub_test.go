package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, hub.ConnectionCount())

	hub.UnregisterClient(client)
	assert.Equal(t, 0, hub.ConnectionCount())

	// Unregistering the same client again must be a no-op.
	hub.UnregisterClient(client)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHubPerUserConnectionCap(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(7, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(7, nil)
	assert.Error(t, err)

	// A different user is unaffected by another user's cap.
	_, err = hub.Register(8, nil)
	assert.NoError(t, err)
}

func TestBroadcastAllDeliversToEveryClient(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.BroadcastAll(`{"action":"create"}`)

	select {
	case msg := <-a.Send:
		assert.JSONEq(t, `{"action":"create"}`, string(msg))
	default:
		t.Fatal("client a received nothing")
	}
	select {
	case msg := <-b.Send:
		assert.JSONEq(t, `{"action":"create"}`, string(msg))
	default:
		t.Fatal("client b received nothing")
	}
}

func TestBroadcastAllDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(1, nil)
	require.NoError(t, err)

	// Saturate the outbound buffer so the next send cannot be queued.
	for i := 0; i < cap(client.Send); i++ {
		client.Send <- []byte(fmt.Sprintf("backlog-%d", i))
	}

	done := make(chan struct{})
	go func() {
		hub.BroadcastAll(`{"action":"update"}`)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a saturated client")
	}
	assert.Equal(t, cap(client.Send), len(client.Send))
}

func TestHubShutdownClearsConnections(t *testing.T) {
	hub := NewHub()

	_, err := hub.Register(1, nil)
	require.NoError(t, err)
	_, err = hub.Register(2, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.ConnectionCount())
}
