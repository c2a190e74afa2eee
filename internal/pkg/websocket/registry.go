package websocket

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/evgo/dispatch/internal/pkg/logger"
	"github.com/evgo/dispatch/internal/pkg/models"
)

// Registry tracks every live connection. It is the only owner of the
// connection set; mutation takes the write lock, snapshots the read lock,
// and no transport I/O happens while either is held.
type Registry struct {
	sync.RWMutex
	conns        map[string]*Connection
	writeTimeout time.Duration
}

// NewRegistry creates an empty registry. writeTimeout bounds every send; zero
// disables the deadline.
func NewRegistry(writeTimeout time.Duration) *Registry {
	return &Registry{
		conns:        make(map[string]*Connection),
		writeTimeout: writeTimeout,
	}
}

// Register adds an unassigned, open connection
func (r *Registry) Register(id string, transport Transport) (*Connection, error) {
	r.Lock()
	defer r.Unlock()

	if _, exists := r.conns[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateConnection, id)
	}
	conn := newConnection(id, transport)
	r.conns[id] = conn
	return conn, nil
}

// ClaimRole sets the role and identity of a connection exactly once
func (r *Registry) ClaimRole(id string, role models.Role, identity string) error {
	if role != models.RoleRider && role != models.RoleDriver {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	r.Lock()
	defer r.Unlock()

	conn, exists := r.conns[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, id)
	}
	if err := conn.claim(role, identity); err != nil {
		return fmt.Errorf("%w: %s", err, id)
	}
	return nil
}

// Unregister marks the connection closed and removes it. Unknown or already
// removed identifiers are ignored.
func (r *Registry) Unregister(id string) {
	r.Lock()
	conn, exists := r.conns[id]
	if exists {
		delete(r.conns, id)
	}
	r.Unlock()

	if exists {
		conn.close()
	}
}

// remove drops conn only if it is still the registered instance for its ID
func (r *Registry) remove(conn *Connection) {
	r.Lock()
	if current, exists := r.conns[conn.ID()]; exists && current == conn {
		delete(r.conns, conn.ID())
	}
	r.Unlock()

	conn.close()
}

// Get returns the connection registered under id
func (r *Registry) Get(id string) (*Connection, bool) {
	r.RLock()
	defer r.RUnlock()
	conn, exists := r.conns[id]
	return conn, exists
}

// ListByRole returns a point-in-time snapshot of the connections holding
// role, oldest first. Later registrations are not reflected in the slice.
func (r *Registry) ListByRole(role models.Role) []*Connection {
	r.RLock()
	snapshot := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		if conn.Role() == role {
			snapshot = append(snapshot, conn)
		}
	}
	r.RUnlock()

	sortByAge(snapshot)
	return snapshot
}

// Riders returns the rider connections bound to identity
func (r *Registry) Riders(identity string) []*Connection {
	if identity == "" {
		return nil
	}

	r.RLock()
	var riders []*Connection
	for _, conn := range r.conns {
		if conn.Role() == models.RoleRider && conn.Identity() == identity {
			riders = append(riders, conn)
		}
	}
	r.RUnlock()

	sortByAge(riders)
	return riders
}

// Count returns the number of registered connections holding role
func (r *Registry) Count(role models.Role) int {
	r.RLock()
	defer r.RUnlock()

	n := 0
	for _, conn := range r.conns {
		if conn.Role() == role {
			n++
		}
	}
	return n
}

// Send writes frame to conn. A connection that is not open is skipped with
// ErrConnectionNotOpen. A failed or timed out write closes and removes the
// connection, the same as a transport close.
func (r *Registry) Send(conn *Connection, frame interface{}) error {
	if conn.State() != models.ConnectionOpen {
		return ErrConnectionNotOpen
	}

	if err := conn.write(frame, r.writeTimeout); err != nil {
		if errors.Is(err, ErrConnectionNotOpen) {
			return err
		}
		r.remove(conn)
		logger.Debug("Connection removed after send failure",
			logger.String("connection_id", conn.ID()),
			logger.String("role", string(conn.Role())),
			logger.Err(err))
		return fmt.Errorf("send to connection %s: %w", conn.ID(), err)
	}
	return nil
}

// CloseAll closes every connection, used on shutdown
func (r *Registry) CloseAll() {
	r.Lock()
	conns := make([]*Connection, 0, len(r.conns))
	for id, conn := range r.conns {
		conn.markClosing()
		conns = append(conns, conn)
		delete(r.conns, id)
	}
	r.Unlock()

	for _, conn := range conns {
		conn.close()
	}
}

func sortByAge(conns []*Connection) {
	sort.Slice(conns, func(i, j int) bool {
		if conns[i].ConnectedAt().Equal(conns[j].ConnectedAt()) {
			return conns[i].ID() < conns[j].ID()
		}
		return conns[i].ConnectedAt().Before(conns[j].ConnectedAt())
	})
}
