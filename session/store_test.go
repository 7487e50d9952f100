package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories runs the same behaviour against every Store implementation
func storeFactories(t *testing.T) map[string]func(opts ...Option) Store {
	t.Helper()
	return map[string]func(opts ...Option) Store{
		"memory": func(opts ...Option) Store {
			return NewMemoryStore(opts...)
		},
		"badger": func(opts ...Option) Store {
			st, err := OpenBadgerStore("", opts...)
			require.NoError(t, err)
			return st
		},
	}
}

func TestStore_GetSaveDelete(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := newStore(WithSweepInterval(0))
			defer st.Close()

			_, err := st.Get(ctx, "missing")
			assert.True(t, errors.Is(err, ErrNotFound))

			s := New("whatsapp-1", "1", "hola", time.Now())
			s.ClientInfo = ClientInfo{Name: "Juan", Vehicle: &VehicleInfo{Brand: "Toyota", Year: 2018}}
			require.NoError(t, st.Save(ctx, s))

			got, err := st.Get(ctx, "whatsapp-1")
			require.NoError(t, err)
			assert.Equal(t, "Juan", got.ClientInfo.Name)
			assert.Equal(t, 2018, got.ClientInfo.Vehicle.Year)
			assert.Len(t, got.Messages, 1)

			n, err := st.Len(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			require.NoError(t, st.Delete(ctx, "whatsapp-1"))
			_, err = st.Get(ctx, "whatsapp-1")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := newStore(WithSweepInterval(0))
			defer st.Close()

			s := New("c", "u", "hola", time.Now())
			require.NoError(t, st.Save(ctx, s))

			got, err := st.Get(ctx, "c")
			require.NoError(t, err)
			got.ClientInfo.Name = "mutated"

			again, err := st.Get(ctx, "c")
			require.NoError(t, err)
			assert.Empty(t, again.ClientInfo.Name)
		})
	}
}

func TestStore_SweepEvictsIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			st := newStore(WithTimeout(30*time.Minute), WithSweepInterval(0))
			defer st.Close()

			idle := New("idle", "1", "", now.Add(-31*time.Minute))
			active := New("active", "2", "", now.Add(-40*time.Minute))
			active.Touch(now.Add(-time.Minute))
			require.NoError(t, st.Save(ctx, idle))
			require.NoError(t, st.Save(ctx, active))

			evicted, err := st.Sweep(ctx, now)
			require.NoError(t, err)
			assert.Equal(t, 1, evicted)

			_, err = st.Get(ctx, "idle")
			assert.True(t, errors.Is(err, ErrNotFound))
			_, err = st.Get(ctx, "active")
			assert.NoError(t, err)
		})
	}
}

func TestMemoryStore_BackgroundSweep(t *testing.T) {
	ctx := context.Background()
	future := time.Now().Add(time.Hour)
	st := NewMemoryStore(
		WithTimeout(time.Minute),
		WithSweepInterval(10*time.Millisecond),
		WithClock(func() time.Time { return future }),
	)
	defer st.Close()

	require.NoError(t, st.Save(ctx, New("c", "u", "", time.Now())))

	assert.Eventually(t, func() bool {
		n, _ := st.Len(ctx)
		return n == 0
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	st := NewMemoryStore()
	assert.NoError(t, st.Close())
	assert.NoError(t, st.Close())
}
