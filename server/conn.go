package server

import "errors"

// Conn is the session's view of a client's network channel: an opaque,
// process-unique identifier, a liveness flag, and a way to emit messages.
// The transport owns the underlying socket.
type Conn interface {
	ID() string
	Connected() bool
	Send(msgType string, payload any) error
}

var (
	ErrConnClosed    = errors.New("connection closed")
	ErrSendQueueFull = errors.New("send queue full")
)
