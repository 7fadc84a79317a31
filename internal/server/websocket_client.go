package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/hexcrawl/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is the live-frame headroom on top of the replay.
	sendBuffer = 256
)

// WebSocketClient is one subscriber of the spawn stream. The send channel
// is owned by the hub; enqueue, reserve and closeSend run under the hub lock.
type WebSocketClient struct {
	id     string
	ip     string
	conn   *websocket.Conn
	send   chan []byte
	closed bool
}

// NewWebSocketClient wraps conn with a fresh session id.
func NewWebSocketClient(conn *websocket.Conn, ip string) *WebSocketClient {
	return &WebSocketClient{
		id:   uuid.NewString(),
		ip:   ip,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// ID returns the session id.
func (c *WebSocketClient) ID() string {
	return c.id
}

// RemoteAddr returns the remote address as a string.
func (c *WebSocketClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// reserve grows the send buffer to hold n more frames.
func (c *WebSocketClient) reserve(n int) {
	if cap(c.send)-len(c.send) >= n+sendBuffer {
		return
	}
	grown := make(chan []byte, len(c.send)+n+sendBuffer)
	close(c.send)
	for frame := range c.send {
		grown <- frame
	}
	c.send = grown
}

// enqueue queues a frame without blocking. It reports false when the
// client has fallen a full buffer behind.
func (c *WebSocketClient) enqueue(frame []byte) bool {
	if c.closed {
		return true
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *WebSocketClient) closeSend() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump discards inbound frames and keeps the read deadline alive. It
// returns once the peer goes away.
func (c *WebSocketClient) readPump(maxMessageSize int64) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Stream read ended", "session", c.id, "error", err)
			}
			return
		}
	}
}

// writePump drains send until the hub closes it.
func (c *WebSocketClient) writePump(send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
