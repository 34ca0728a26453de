package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnClosed = websocket.ErrCloseSent

// Conn wraps a bot's WebSocket connection with buffered read and write
// pumps. Inbound text frames arrive on Frames(); the channel closes when the
// peer goes away. Outbound messages are JSON-encoded by the write pump.
type Conn struct {
	ws     *websocket.Conn
	send   chan any
	frames chan []byte
	logger *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConn wraps an upgraded WebSocket connection. Call Start to begin the
// pumps.
func NewConn(ws *websocket.Conn, logger *log.Logger) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		ws:     ws,
		send:   make(chan any, 256),
		frames: make(chan []byte, 16),
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection.
func (c *Conn) Start() {
	go c.writePump()
	go c.readPump()
}

// Frames returns the inbound frame channel. It is closed once the peer
// disconnects or the connection is closed.
func (c *Conn) Frames() <-chan []byte { return c.frames }

// Done is closed when the connection is shut down.
func (c *Conn) Done() <-chan struct{} { return c.ctx.Done() }

// RemoteAddr returns the peer address for logging.
func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// Close tears the connection down. Safe to call more than once. The
// socket itself is closed by writePump once it has drained any queued
// frames, so rejection errors still reach the peer.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
	})
	return nil
}

// Send queues a message for delivery. A bot that cannot drain its send
// buffer is disconnected rather than allowed to stall the table.
func (c *Conn) Send(msg any) error {
	defer func() {
		if r := recover(); r != nil {
			// Send raced with Close; the channel is gone.
			c.logger.Debug("Send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnClosed
	}
}

// readPump forwards raw frames to the frames channel until the peer drops.
func (c *Conn) readPump() {
	defer func() {
		_ = c.Close()
		close(c.frames)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Debug("WebSocket read error", "error", err)
			}
			return
		}

		select {
		case c.frames <- data:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump serializes outbound messages and keeps the connection alive
// with periodic pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(msg); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			// Flush anything already queued so rejection errors still
			// reach the peer before the close frame.
			for {
				select {
				case msg, ok := <-c.send:
					if !ok {
						_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
						return
					}
					_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.ws.WriteJSON(msg); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}
