package websocket

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu       sync.Mutex
	frames   []interface{}
	writeErr error
	closed   int
	deadline time.Time
}

func (f *fakeTransport) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.frames = append(f.frames, v)
	return nil
}

func (f *fakeTransport) SetWriteDeadline(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadline = t
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeTransport) sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func TestRegister(t *testing.T) {
	r := NewRegistry(0)

	conn, err := r.Register("c-1", &fakeTransport{})
	require.NoError(t, err)
	assert.Equal(t, "c-1", conn.ID())
	assert.Equal(t, models.RoleUnassigned, conn.Role())
	assert.Equal(t, models.ConnectionOpen, conn.State())

	_, err = r.Register("c-1", &fakeTransport{})
	assert.ErrorIs(t, err, ErrDuplicateConnection)
}

func TestClaimRole(t *testing.T) {
	testCases := []struct {
		name    string
		setup   func(r *Registry)
		id      string
		role    models.Role
		wantErr error
	}{
		{
			name:  "Rider",
			setup: func(r *Registry) { _, _ = r.Register("c-1", &fakeTransport{}) },
			id:    "c-1",
			role:  models.RoleRider,
		},
		{
			name:  "Driver",
			setup: func(r *Registry) { _, _ = r.Register("c-1", &fakeTransport{}) },
			id:    "c-1",
			role:  models.RoleDriver,
		},
		{
			name:    "Unknown Connection",
			setup:   func(r *Registry) {},
			id:      "missing",
			role:    models.RoleDriver,
			wantErr: ErrUnknownConnection,
		},
		{
			name: "Already Claimed",
			setup: func(r *Registry) {
				_, _ = r.Register("c-1", &fakeTransport{})
				_ = r.ClaimRole("c-1", models.RoleRider, "u1")
			},
			id:      "c-1",
			role:    models.RoleDriver,
			wantErr: ErrRoleAlreadyClaimed,
		},
		{
			name:    "Unassigned Is Not Claimable",
			setup:   func(r *Registry) { _, _ = r.Register("c-1", &fakeTransport{}) },
			id:      "c-1",
			role:    models.RoleUnassigned,
			wantErr: ErrInvalidRole,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry(0)
			tc.setup(r)

			err := r.ClaimRole(tc.id, tc.role, "identity")

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			conn, ok := r.Get(tc.id)
			require.True(t, ok)
			assert.Equal(t, tc.role, conn.Role())
			assert.Equal(t, "identity", conn.Identity())
		})
	}
}

func TestClaimRole_KeepsFirstRole(t *testing.T) {
	r := NewRegistry(0)
	conn, _ := r.Register("c-1", &fakeTransport{})

	require.NoError(t, r.ClaimRole("c-1", models.RoleDriver, "d1"))
	require.Error(t, r.ClaimRole("c-1", models.RoleRider, "u1"))

	assert.Equal(t, models.RoleDriver, conn.Role())
	assert.Equal(t, "d1", conn.Identity())
}

func TestUnregister_Idempotent(t *testing.T) {
	r := NewRegistry(0)
	transport := &fakeTransport{}
	conn, _ := r.Register("c-1", transport)

	r.Unregister("c-1")
	r.Unregister("c-1")
	r.Unregister("never-registered")

	_, ok := r.Get("c-1")
	assert.False(t, ok)
	assert.Equal(t, models.ConnectionClosed, conn.State())
	assert.Equal(t, 1, transport.closed)
}

func TestListByRole_Snapshot(t *testing.T) {
	r := NewRegistry(0)
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("d-%d", i)
		_, _ = r.Register(id, &fakeTransport{})
		require.NoError(t, r.ClaimRole(id, models.RoleDriver, ""))
	}
	_, _ = r.Register("u-1", &fakeTransport{})
	require.NoError(t, r.ClaimRole("u-1", models.RoleRider, "u1"))
	_, _ = r.Register("anon", &fakeTransport{})

	drivers := r.ListByRole(models.RoleDriver)
	require.Len(t, drivers, 3)

	// mutations after the snapshot are not reflected in it
	_, _ = r.Register("d-late", &fakeTransport{})
	require.NoError(t, r.ClaimRole("d-late", models.RoleDriver, ""))
	r.Unregister("d-0")

	assert.Len(t, drivers, 3)
	assert.Equal(t, 3, r.Count(models.RoleDriver))
	assert.Equal(t, 1, r.Count(models.RoleRider))
	assert.Equal(t, 1, r.Count(models.RoleUnassigned))
}

func TestRiders_KeyedByIdentity(t *testing.T) {
	r := NewRegistry(0)
	_, _ = r.Register("phone", &fakeTransport{})
	_, _ = r.Register("tablet", &fakeTransport{})
	_, _ = r.Register("other", &fakeTransport{})
	_, _ = r.Register("driver", &fakeTransport{})
	require.NoError(t, r.ClaimRole("phone", models.RoleRider, "u1"))
	require.NoError(t, r.ClaimRole("tablet", models.RoleRider, "u1"))
	require.NoError(t, r.ClaimRole("other", models.RoleRider, "u2"))
	require.NoError(t, r.ClaimRole("driver", models.RoleDriver, "u1"))

	riders := r.Riders("u1")

	require.Len(t, riders, 2)
	ids := []string{riders[0].ID(), riders[1].ID()}
	assert.ElementsMatch(t, []string{"phone", "tablet"}, ids)
	assert.Empty(t, r.Riders(""))
}

func TestSend(t *testing.T) {
	t.Run("Open Connection", func(t *testing.T) {
		r := NewRegistry(time.Second)
		transport := &fakeTransport{}
		conn, _ := r.Register("c-1", transport)

		err := r.Send(conn, map[string]string{"type": "newRequest"})

		require.NoError(t, err)
		assert.Equal(t, 1, transport.sent())
		assert.False(t, transport.deadline.IsZero())
	})

	t.Run("Closed Connection Is Skipped", func(t *testing.T) {
		r := NewRegistry(0)
		transport := &fakeTransport{}
		conn, _ := r.Register("c-1", transport)
		r.Unregister("c-1")

		err := r.Send(conn, map[string]string{"type": "newRequest"})

		assert.ErrorIs(t, err, ErrConnectionNotOpen)
		assert.Equal(t, 0, transport.sent())
	})

	t.Run("Write Failure Removes Connection", func(t *testing.T) {
		r := NewRegistry(0)
		transport := &fakeTransport{writeErr: errors.New("broken pipe")}
		conn, _ := r.Register("c-1", transport)

		err := r.Send(conn, map[string]string{"type": "newRequest"})

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrConnectionNotOpen)
		_, ok := r.Get("c-1")
		assert.False(t, ok)
		assert.Equal(t, models.ConnectionClosed, conn.State())

		// a later send is a skip, not another write
		assert.ErrorIs(t, r.Send(conn, "again"), ErrConnectionNotOpen)
	})
}

func TestConcurrentAccess(t *testing.T) {
	r := NewRegistry(0)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c-%d", i)
			conn, err := r.Register(id, &fakeTransport{})
			if err != nil {
				return
			}
			_ = r.ClaimRole(id, models.RoleDriver, "")
			_ = r.Send(conn, "ping")
			r.Unregister(id)
		}(i)
		go func() {
			defer wg.Done()
			for _, conn := range r.ListByRole(models.RoleDriver) {
				_ = r.Send(conn, "ping")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Count(models.RoleDriver))
}

func TestCloseAll(t *testing.T) {
	r := NewRegistry(0)
	a, _ := r.Register("a", &fakeTransport{})
	b, _ := r.Register("b", &fakeTransport{})

	r.CloseAll()

	assert.Equal(t, models.ConnectionClosed, a.State())
	assert.Equal(t, models.ConnectionClosed, b.State())
	_, ok := r.Get("a")
	assert.False(t, ok)
}
