package server

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type sent struct {
	Type    string
	Payload any
}

type fakeConn struct {
	id    string
	alive atomic.Bool

	mu   sync.Mutex
	msgs []sent
	ch   chan sent
}

func newFakeConn(id string) *fakeConn {
	c := &fakeConn{id: id, ch: make(chan sent, 8192)}
	c.alive.Store(true)
	return c
}

func (c *fakeConn) ID() string      { return c.id }
func (c *fakeConn) Connected() bool { return c.alive.Load() }

func (c *fakeConn) Send(msgType string, payload any) error {
	if !c.alive.Load() {
		return ErrConnClosed
	}
	m := sent{Type: msgType, Payload: payload}
	c.mu.Lock()
	c.msgs = append(c.msgs, m)
	c.mu.Unlock()
	select {
	case c.ch <- m:
	default:
	}
	return nil
}

func (c *fakeConn) drop() { c.alive.Store(false) }

func (c *fakeConn) ofType(msgType string) []sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []sent
	for _, m := range c.msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func (c *fakeConn) count(msgType string) int {
	return len(c.ofType(msgType))
}

func (c *fakeConn) last(t *testing.T, msgType string) sent {
	t.Helper()
	msgs := c.ofType(msgType)
	if len(msgs) == 0 {
		t.Fatalf("%s: no %q message sent", c.id, msgType)
	}
	return msgs[len(msgs)-1]
}

// await consumes messages in order until one of msgType arrives.
func (c *fakeConn) await(t *testing.T, msgType string) sent {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case m := <-c.ch:
			if m.Type == msgType {
				return m
			}
		case <-timeout:
			t.Fatalf("%s: timed out waiting for %q", c.id, msgType)
		}
	}
}

// awaitState consumes state broadcasts until match accepts one.
func (c *fakeConn) awaitState(t *testing.T, match func(WorldSnapshot) bool) WorldSnapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case m := <-c.ch:
			if m.Type != MsgState {
				continue
			}
			snap := m.Payload.(WorldSnapshot)
			if match(snap) {
				return snap
			}
		case <-timeout:
			t.Fatalf("%s: timed out waiting for a matching state", c.id)
		}
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
