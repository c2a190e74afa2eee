package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/evgo/dispatch/internal/pkg/models"
)

// Transport is the write side of a live session. *websocket.Conn from
// gorilla/websocket satisfies it.
type Transport interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Connection is one live transport session tracked by the Registry
type Connection struct {
	id          string
	transport   Transport
	connectedAt time.Time

	state atomic.Int32

	mu       sync.RWMutex
	role     models.Role
	identity string

	// one writer at a time per transport
	writeMu sync.Mutex
}

func newConnection(id string, transport Transport) *Connection {
	c := &Connection{
		id:          id,
		transport:   transport,
		connectedAt: time.Now(),
		role:        models.RoleUnassigned,
	}
	c.state.Store(int32(models.ConnectionOpen))
	return c
}

// ID returns the identifier assigned at accept time
func (c *Connection) ID() string {
	return c.id
}

// ConnectedAt returns the accept time
func (c *Connection) ConnectedAt() time.Time {
	return c.connectedAt
}

// Role returns the claimed role, RoleUnassigned until a role frame arrives
func (c *Connection) Role() models.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.role
}

// Identity returns the identity bound with the role, empty for anonymous sessions
func (c *Connection) Identity() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// State returns the liveness state
func (c *Connection) State() models.ConnectionState {
	return models.ConnectionState(c.state.Load())
}

func (c *Connection) claim(role models.Role, identity string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role != models.RoleUnassigned {
		return ErrRoleAlreadyClaimed
	}
	c.role = role
	c.identity = identity
	return nil
}

func (c *Connection) write(v interface{}, timeout time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	// re-checked under the write lock: a close may have raced the caller's check
	if c.State() != models.ConnectionOpen {
		return ErrConnectionNotOpen
	}
	if timeout > 0 {
		if err := c.transport.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	return c.transport.WriteJSON(v)
}

// markClosing stops further sends while the transport is being torn down
func (c *Connection) markClosing() {
	c.state.CompareAndSwap(int32(models.ConnectionOpen), int32(models.ConnectionClosing))
}

// close moves the connection to closed and releases the transport. It
// reports whether this call performed the transition.
func (c *Connection) close() bool {
	for {
		s := c.state.Load()
		if s == int32(models.ConnectionClosed) {
			return false
		}
		if c.state.CompareAndSwap(s, int32(models.ConnectionClosed)) {
			break
		}
	}
	_ = c.transport.Close()
	return true
}
