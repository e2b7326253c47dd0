package ws

import (
	"context"
	"sync"
	"time"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize must stay above the largest inbound frame a handler
	// will accept, JSON envelope included, so oversize messages get the
	// handler's error reply instead of a 1009 close.
	maxMessageSize = 8192
)

// Client is one live duplex connection. It belongs to exactly one room for
// its whole lifetime and is destroyed on disconnect. The write pump owns
// the socket for writes; everyone else goes through Send.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	id        string
	room      domain.Room
	identity  *domain.Identity // nil for anonymous event-stream watchers
	createdAt time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, room domain.Room, identity *domain.Identity, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		conn:      conn,
		send:      make(chan []byte, sendBuffer), // buffered to avoid dead-locks on slow clients
		id:        uuid.NewString(),
		room:      room,
		identity:  identity,
		createdAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Room() domain.Room {
	return c.room
}

func (c *Client) Identity() *domain.Identity {
	return c.identity
}

// Context is canceled when the connection closes; in-flight handlers see
// the cancellation, already-dispatched store writes run to completion.
func (c *Client) Context() context.Context {
	return c.ctx
}

// Send queues an encoded frame for the write pump. It never blocks: a full
// buffer or a closed connection reports false and the frame is dropped for
// this client only.
func (c *Client) Send(event []byte) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// ReadPump reads frames until the connection drops and hands each one to
// handle. Frames are processed strictly in receipt order, one at a time;
// there is never more than one in-flight handler per connection.
func (c *Client) ReadPump(handle func(ctx context.Context, raw []byte)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		handle(c.ctx, raw)
	}
}

// WritePump drains the send buffer onto the socket and keeps the
// connection alive with pings. Must run in its own goroutine, one per
// client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case event := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close tears the connection down. Safe to call from any goroutine and
// idempotent under repeated calls.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.Close()
	})
}
