package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiknote-be/internal/pkg/logger"
)

func register(t *testing.T, h *Hub, userID string, buffer int) *Client {
	t.Helper()
	c := &Client{Hub: h, UserID: userID, Send: make(chan []byte, buffer)}
	h.register <- c
	return c
}

func TestHub_SendReachesOnlyTheUser(t *testing.T) {
	h := NewHub(nil, "test", logger.NewNopLogger())
	go h.Run()

	a1 := register(t, h, "ann", 4)
	a2 := register(t, h, "ann", 4)
	b := register(t, h, "bob", 4)
	require.Eventually(t, func() bool { return h.Connected("ann") == 2 && h.Connected("bob") == 1 }, time.Second, 5*time.Millisecond)

	h.Send("ann", Message{Type: "note.created", Data: map[string]string{"id": "n1"}})

	for _, c := range []*Client{a1, a2} {
		select {
		case raw := <-c.Send:
			var got Message
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, "note.created", got.Type)
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Empty(t, b.Send)
}

func TestHub_DropsSlowClients(t *testing.T) {
	h := NewHub(nil, "test", logger.NewNopLogger())
	go h.Run()

	c := register(t, h, "ann", 1)
	require.Eventually(t, func() bool { return h.Connected("ann") == 1 }, time.Second, 5*time.Millisecond)

	h.Send("ann", Message{Type: "a"})
	h.Send("ann", Message{Type: "b"})

	assert.Eventually(t, func() bool { return h.Connected("ann") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.True(t, open, "buffered frame is still readable")
	_, open = <-c.Send
	assert.False(t, open)
}
