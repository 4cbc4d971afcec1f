package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/herd/internal/core/observability/log"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// client is one connected observer. Writes go through send so only writePump touches the
// connection's writer.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger log.Log
}

func newClient(id string, conn *websocket.Conn, logger log.Log) *client {
	return &client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: logger.With(log.String("client_id", id)),
	}
}

// enqueue queues b for the client and reports false when the client is too slow and the
// message was dropped.
func (c *client) enqueue(b []byte) bool {
	select {
	case <-c.done:
		return false
	case c.send <- b:
		return true
	default:
		return false
	}
}

// close asks writePump to send a close frame and release the connection.
func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// writePump is the only goroutine that writes to the connection, and it closes the connection
// when it returns.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer func() { _ = c.conn.Close() }()
	defer c.close()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				c.logger.Debug("write failed", log.Error(err))
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

// readPump decodes control messages until the connection fails.
func (c *client) readPump(handle func(ControlMessage) (ControlResult, error)) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("read failed", log.Error(err))
			}
			return
		}

		var msg ControlMessage
		if err = json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("invalid control message", log.Error(err))
			continue
		}
		res, err := handle(msg)
		if err != nil {
			c.logger.Warn("control message rejected", log.String("action", msg.Action), log.Error(err))
			continue
		}
		if b, err := encode(MessageControl, "", res); err == nil {
			c.enqueue(b)
		}
	}
}
