package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrolluash/rentconnect/internal/model"
)

func landlord() *model.User {
	return &model.User{ID: 9, FirstName: "Ana", LastName: "Reyes", Email: "ana@example.com", Role: model.RoleLandlord}
}

func TestManager_StartResolveEnd(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), "secret", time.Hour)

	s, token, err := m.Start(ctx, landlord())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "Ana Reyes", s.Name)
	assert.Equal(t, model.RoleLandlord, s.Role)

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, uint64(9), got.UserID)

	require.NoError(t, m.End(ctx, token))
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_ResolveRejectsForeignSecret(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, token, err := NewManager(store, "a", time.Hour).Start(ctx, landlord())
	require.NoError(t, err)

	_, err = NewManager(store, "b", time.Hour).Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_ResolveEmptyToken(t *testing.T) {
	_, err := NewManager(NewMemoryStore(), "a", time.Hour).Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_EndUnknownToken(t *testing.T) {
	assert.NoError(t, NewManager(NewMemoryStore(), "a", time.Hour).End(context.Background(), "garbage"))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &model.Session{ID: "x", ExpiresAt: now.Add(time.Minute)}))
	_, err := store.Get(ctx, "x")
	require.NoError(t, err)

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = store.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	// Saving sweeps records already past their expiry.
	require.NoError(t, store.Save(ctx, &model.Session{ID: "y", ExpiresAt: now.Add(time.Hour)}))
	store.mu.RLock()
	_, stale := store.data["x"]
	store.mu.RUnlock()
	assert.False(t, stale)
}

func TestRedisStore_KeyHidesSessionID(t *testing.T) {
	r := NewRedisStore(nil, "")
	k := r.key("abc")
	assert.Contains(t, k, "rc:sess:")
	assert.NotContains(t, k, "abc")
}
