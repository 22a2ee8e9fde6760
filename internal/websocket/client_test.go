package websocket

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiknote-be/internal/pkg/logger"
)

type frame struct {
	kind int
	data []byte
}

// fakeConn records written frames and fails reads once closed.
type fakeConn struct {
	mu     sync.Mutex
	frames []frame
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn { return &fakeConn{closed: make(chan struct{})} }

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("use of closed connection")
}

func (f *fakeConn) WriteMessage(kind int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame{kind: kind, data: data})
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) written() []frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]frame(nil), f.frames...)
}

func TestClient_ForwardWritesQueuedMessagesThenCloses(t *testing.T) {
	conn := newFakeConn()
	c := &Client{Hub: NewHub(nil, "test", logger.NewNopLogger()), Conn: conn, UserID: "ann", Send: make(chan []byte, 2)}
	c.Send <- []byte(`{"type":"note.created"}`)
	c.Send <- []byte(`{"type":"note.updated"}`)
	close(c.Send)

	c.forward()

	frames := conn.written()
	require.Len(t, frames, 3)
	assert.Equal(t, websocket.TextMessage, frames[0].kind)
	assert.JSONEq(t, `{"type":"note.created"}`, string(frames[0].data))
	assert.Equal(t, websocket.TextMessage, frames[1].kind)
	assert.Equal(t, websocket.CloseMessage, frames[2].kind)
}

func TestClient_WatchCloseUnregisters(t *testing.T) {
	h := NewHub(nil, "test", logger.NewNopLogger())
	go h.Run()

	conn := newFakeConn()
	c := &Client{Hub: h, Conn: conn, UserID: "ann", Send: make(chan []byte, 1)}
	h.register <- c
	require.Eventually(t, func() bool { return h.Connected("ann") == 1 }, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		c.watchClose()
		close(done)
	}()
	_ = conn.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watchClose did not return after the connection closed")
	}
	require.Eventually(t, func() bool { return h.Connected("ann") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}
