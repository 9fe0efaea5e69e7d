package game

import (
	"fmt"
	"sync"

	"github.com/anchal00/blackjack/internal/logger"
)

// Registry maps a table id to its live Session and to the mutex that serializes
// all work on that table, lobby operations included.
type Registry struct {
	mu       sync.Mutex
	units    map[int64]*sync.Mutex
	sessions map[int64]*Session
	log      logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		units:    make(map[int64]*sync.Mutex),
		sessions: make(map[int64]*Session),
		log:      log,
	}
}

func (r *Registry) unit(tableID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[tableID]
	if !ok {
		u = &sync.Mutex{}
		r.units[tableID] = u
	}
	return u
}

// Lock acquires the table's serialization unit and returns its release.
func (r *Registry) Lock(tableID int64) func() {
	u := r.unit(tableID)
	u.Lock()
	return u.Unlock
}

func (r *Registry) Get(tableID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tableID]
	return s, ok
}

func (r *Registry) register(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.tableID] = s
	r.log.Info(fmt.Sprintf("Session registered for table %d", s.tableID))
}

func (r *Registry) drop(tableID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, tableID)
}

// forget drops everything known about a table that no longer exists.
func (r *Registry) forget(tableID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, tableID)
	delete(r.units, tableID)
	r.log.Info(fmt.Sprintf("Table %d removed from registry", tableID))
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
