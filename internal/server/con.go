package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/anchal00/blackjack/internal/game"
	"github.com/anchal00/blackjack/internal/logger"
	"github.com/google/uuid"
)

// writeWait bounds a single write, events are sent while the table is locked.
const writeWait = 2 * time.Second

// Conn is the part of *websocket.Conn the store writes to.
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v any) error
	Close() error
}

// ConnectionStore keeps at most one live connection per participant and delivers
// game events to it.
type ConnectionStore interface {
	game.Sender
	// AddConnection registers conn for the participant, closing any older one, and
	// returns the new connection's id.
	AddConnection(participantID string, conn Conn) string
	// RemoveConnection drops the connection if it is still the participant's current one.
	RemoveConnection(participantID, connID string) bool
	GetConnection(participantID string) Conn
	Count() int
}

type client struct {
	id   string
	conn Conn
	// wmu serializes writes, a websocket allows one concurrent writer.
	wmu sync.Mutex
}

func (c *client) write(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

type InMemoryConnectionStore struct {
	mu     sync.RWMutex
	conns  map[string]*client
	Logger logger.Logger
}

func NewConnectionStore(log logger.Logger) *InMemoryConnectionStore {
	return &InMemoryConnectionStore{
		conns:  make(map[string]*client),
		Logger: log,
	}
}

func (c *InMemoryConnectionStore) AddConnection(participantID string, conn Conn) string {
	cl := &client{id: uuid.NewString(), conn: conn}
	c.mu.Lock()
	old, exists := c.conns[participantID]
	c.conns[participantID] = cl
	c.mu.Unlock()
	if exists {
		c.Logger.Info(fmt.Sprintf("Replacing connection %s of %s", old.id, participantID))
		if err := old.conn.Close(); err != nil {
			c.Logger.Debug(fmt.Sprintf("Closing replaced connection %s: %v", old.id, err))
		}
	}
	return cl.id
}

func (c *InMemoryConnectionStore) RemoveConnection(participantID, connID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, exists := c.conns[participantID]
	if !exists || current.id != connID {
		return false
	}
	delete(c.conns, participantID)
	return true
}

func (c *InMemoryConnectionStore) GetConnection(participantID string) Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cl, exists := c.conns[participantID]
	if !exists {
		return nil
	}
	return cl.conn
}

func (c *InMemoryConnectionStore) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.conns)
}

// SendToParticipant writes event to the participant's connection, or drops it
// when they have none.
func (c *InMemoryConnectionStore) SendToParticipant(participantID string, event game.Event) {
	c.mu.RLock()
	cl, exists := c.conns[participantID]
	c.mu.RUnlock()
	if !exists {
		return
	}
	if err := cl.write(event); err != nil {
		// A failed or timed out write leaves the socket unusable. Closing it ends the
		// read loop, which removes the connection and reports the disconnect.
		c.Logger.Error(fmt.Sprintf("Failed to send %s to %s, closing connection %s", event.Type, participantID, cl.id), err)
		_ = cl.conn.Close()
	}
}
