package server

import "container/list"

// Registry is the arrival-ordered set of connected, unpaired clients.
// It is not safe for concurrent use; Matchmaker guards it.
type Registry struct {
	order *list.List
	index map[string]*list.Element
}

// NewRegistry returns an empty queue.
func NewRegistry() *Registry {
	return &Registry{
		order: list.New(),
		index: make(map[string]*list.Element),
	}
}

// Enqueue appends c behind every earlier arrival. Re-enqueueing a waiting
// connection keeps its original place and reports false.
func (r *Registry) Enqueue(c Conn) bool {
	if _, ok := r.index[c.ID()]; ok {
		return false
	}
	r.index[c.ID()] = r.order.PushBack(c)
	return true
}

// Remove evicts a waiting connection. It reports whether c was waiting.
func (r *Registry) Remove(id string) bool {
	el, ok := r.index[id]
	if !ok {
		return false
	}
	r.order.Remove(el)
	delete(r.index, id)
	return true
}

// Contains reports whether id is waiting.
func (r *Registry) Contains(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Len is the number of waiting connections.
func (r *Registry) Len() int {
	return r.order.Len()
}

// Position is the 1-based place of id in the queue, or 0 if not waiting.
func (r *Registry) Position(id string) int {
	pos := 1
	for el := r.order.Front(); el != nil; el = el.Next() {
		if el.Value.(Conn).ID() == id {
			return pos
		}
		pos++
	}
	return 0
}

// PopPair removes and returns the two longest-waiting connections.
func (r *Registry) PopPair() (first, second Conn, ok bool) {
	if r.order.Len() < 2 {
		return nil, nil, false
	}
	first = r.pop()
	second = r.pop()
	return first, second, true
}

// Prune drops waiting connections whose transport already went away and
// returns how many were dropped.
func (r *Registry) Prune() int {
	n := 0
	for el := r.order.Front(); el != nil; {
		next := el.Next()
		c := el.Value.(Conn)
		if !c.Connected() {
			r.order.Remove(el)
			delete(r.index, c.ID())
			n++
		}
		el = next
	}
	return n
}

// Waiting returns the queue in arrival order.
func (r *Registry) Waiting() []Conn {
	out := make([]Conn, 0, r.order.Len())
	for el := r.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(Conn))
	}
	return out
}

func (r *Registry) pop() Conn {
	el := r.order.Front()
	c := r.order.Remove(el).(Conn)
	delete(r.index, c.ID())
	return c
}
