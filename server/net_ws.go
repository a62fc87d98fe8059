package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
	readLimit  = 1 << 16
)

// ClientConn wraps one websocket. Writes go through a buffered queue drained
// by writePump so a slow client never stalls a session's tick.
type ClientConn struct {
	id    string
	ws    *websocket.Conn
	codec Codec
	log   *zap.SugaredLogger

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	connected atomic.Bool
}

// NewClientConn wraps an upgraded socket under a fresh uuid.
func NewClientConn(ws *websocket.Conn, codec Codec, log *zap.SugaredLogger) *ClientConn {
	id := uuid.NewString()
	c := &ClientConn{
		id:     id,
		ws:     ws,
		codec:  codec,
		log:    log.With("conn", id),
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
	c.connected.Store(true)
	return c
}

// ID is the connection id sent in the welcome message.
func (c *ClientConn) ID() string { return c.id }

func (c *ClientConn) Connected() bool { return c.connected.Load() }

// Send encodes and queues a message without blocking. A full queue drops the
// message; the peer is too far behind for stale state to matter.
func (c *ClientConn) Send(msgType string, payload any) error {
	if !c.connected.Load() {
		return ErrConnClosed
	}
	b, err := c.codec.Encode(msgType, payload)
	if err != nil {
		return err
	}
	select {
	case c.send <- b:
		return nil
	case <-c.closed:
		return ErrConnClosed
	default:
		return ErrSendQueueFull
	}
}

// Close marks the connection dead; writePump then says goodbye and closes the
// socket, which ends readPump. Safe to call twice.
func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		close(c.closed)
	})
}

// writePump drains the send queue and keeps the socket alive with pings.
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(c.codec.FrameType(), msg); err != nil {
				c.log.Debugw("write failed", "err", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// readPump decodes client frames and hands them to the hub. When it exits the
// hub learns of the disconnect exactly here.
func (c *ClientConn) readPump(h *Hub) {
	defer func() {
		c.Close()
		h.metrics.IncClosed()
		h.OnDisconnect(c)
	}()

	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Infow("connection dropped", "err", err)
			}
			return
		}
		msg, err := DecodeInbound(c.codec, payload)
		if err != nil {
			c.log.Debugw("discarding malformed frame", "err", err)
			continue
		}
		h.OnMessage(c, msg)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin may connect; clients are anonymous.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades /ws?codec=json|msgpack and enqueues the client for a match.
func HandleWS(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codec, err := CodecByName(r.URL.Query().Get("codec"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warnw("upgrade failed", "remote", r.RemoteAddr, "err", err)
			return
		}

		client := NewClientConn(ws, codec, h.log)
		h.metrics.IncOpened()
		go client.writePump()
		h.OnConnect(client)
		go client.readPump(h)
	}
}
