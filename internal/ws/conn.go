package ws

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// writeWait is the deadline for a single frame write.
	writeWait = 10 * time.Second
	// pongWait is how long the read side tolerates silence from the peer.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = 54 * time.Second

	defaultSendBuffer = 256
)

// Conn adapts a gorilla websocket connection to the Transport interface.
// Writes go through a buffered channel drained by a single write pump, so
// WriteEvent is safe from any goroutine and never blocks the caller: when
// the buffer is full the write fails, which the registry treats as a dead
// subscriber.
type Conn struct {
	ws       *websocket.Conn
	send     chan []byte
	done     chan struct{}
	once     sync.Once
	sockOnce sync.Once
	log      zerolog.Logger
}

func NewConn(ws *websocket.Conn, sendBuffer int, log zerolog.Logger) *Conn {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Conn{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
}

// WriteEvent queues an envelope for the write pump.
func (c *Conn) WriteEvent(env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return errors.New("ws: connection closed")
	case c.send <- payload:
		return nil
	default:
		return errors.New("ws: send buffer full")
	}
}

// Close initiates teardown. The write pump flushes queued frames, sends
// the close handshake, and severs the socket. Idempotent.
func (c *Conn) Close() error {
	c.once.Do(func() {
		close(c.done)
	})
	return nil
}

func (c *Conn) closeSocket() {
	c.sockOnce.Do(func() {
		if err := c.ws.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Debug().Err(err).Msg("ws socket close")
		}
	})
}

// WritePump drains the send channel onto the wire and keeps the peer alive
// with periodic pings. Runs until Close or a write failure.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
		c.closeSocket()
	}()

	for {
		select {
		case <-c.done:
			// Flush whatever was queued before Close — a rejection frame
			// must reach the peer ahead of the close handshake.
			for {
				select {
				case payload := <-c.send:
					_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
						return
					}
				default:
					_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.ws.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				if !isExpectedCloseError(err) {
					c.log.Debug().Err(err).Msg("ws write failed")
				}
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readFrame blocks for the next client frame. The read deadline is pushed
// forward on every pong so quiet-but-alive peers are not dropped.
func (c *Conn) readFrame() (inboundFrame, error) {
	var frame inboundFrame
	_, payload, err := c.ws.ReadMessage()
	if err != nil {
		return frame, err
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return frame, errFrameMalformed
	}
	return frame, nil
}

var errFrameMalformed = errors.New("ws: malformed frame")

func (c *Conn) setupRead(maxMessageSize int64) {
	if maxMessageSize > 0 {
		c.ws.SetReadLimit(maxMessageSize)
	}
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// isExpectedCloseError reports whether err is part of a normal teardown.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "websocket: close sent") ||
		strings.Contains(msg, "broken pipe")
}
