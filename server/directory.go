package server

import (
	"fmt"
	"sort"
	"sync"
)

// Directory maps live session ids to sessions for the whole process.
type Directory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{sessions: make(map[string]*Session)}
}

// Add registers s. Ids never repeat, so a clash is a bug upstream.
func (d *Directory) Add(s *Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already registered", s.ID)
	}
	d.sessions[s.ID] = s
	return nil
}

// Remove drops id and reports whether it was present. Removing twice is a no-op.
func (d *Directory) Remove(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sessions[id]; !ok {
		return false
	}
	delete(d.sessions, id)
	return true
}

// Get looks up a live session by id.
func (d *Directory) Get(id string) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sessions[id]
	return s, ok
}

// Len is the number of live sessions.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

// Sessions returns every live session.
func (d *Directory) Sessions() []*Session {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		out = append(out, s)
	}
	return out
}

// List returns the admin view of every live session, oldest first
// (ksuid ids sort by creation time).
func (d *Directory) List() []SessionInfo {
	sessions := d.Sessions()
	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
