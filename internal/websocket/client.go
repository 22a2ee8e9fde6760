package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeTimeout   = 10 * time.Second
	pongTimeout    = 60 * time.Second
	heartbeatEvery = (pongTimeout * 9) / 10

	// The feed is server to client; inbound frames are only control traffic.
	maxInboundFrame = 512
	sendBuffer      = 256
)

// frameConn is the part of *websocket.Conn a feed client uses.
type frameConn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one open change-feed connection of a user. A user may hold
// several, one per tab or device.
type Client struct {
	Hub    *Hub
	Conn   frameConn
	UserID string

	// Encoded messages queued by the hub. The hub closes it on unregister.
	Send chan []byte
}

// ServeWs registers the connection with the hub and blocks until the peer
// goes away.
func ServeWs(hub *Hub, conn *websocket.Conn, userID string) {
	c := &Client{Hub: hub, Conn: conn, UserID: userID, Send: make(chan []byte, sendBuffer)}
	hub.register <- c

	go c.forward()
	c.watchClose()
}

// watchClose discards inbound frames, renewing the read deadline on every
// pong, and unregisters the client once reading fails.
func (c *Client) watchClose() {
	defer func() {
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxInboundFrame)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, _, err := c.Conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
			c.Hub.logger.Warn("RealtimeClient", "Feed connection closed unexpectedly", map[string]interface{}{
				"user_id": c.UserID,
				"error":   err,
			})
		}
		return
	}
}

// forward writes queued messages and heartbeats until the hub closes Send
// or a write fails.
func (c *Client) forward() {
	heartbeat := time.NewTicker(heartbeatEvery)
	defer func() {
		heartbeat.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.Hub.logger.Warn("RealtimeClient", "Failed to write change message", map[string]interface{}{
					"user_id": c.UserID,
					"error":   err,
				})
				return
			}
		case <-heartbeat.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(kind int, data []byte) error {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(kind, data)
}
