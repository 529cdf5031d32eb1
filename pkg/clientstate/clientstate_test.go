package clientstate

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenfi-wallet/pkg/reconcile"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_ImplementsReconcileStorage(t *testing.T) {
	var _ reconcile.Storage = newTestStore(t)
}

func TestStore_GetSetDelete(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got, "miss is (nil, nil)")

	require.NoError(t, s.Set("k", []byte("v1")))
	got, err = s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.Set("k", []byte("v2")))
	got, err = s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got, "set replaces")

	require.NoError(t, s.Delete("k"))
	got, err = s.Get("k")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Delete("k"), "deleting a missing key is fine")
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("cache:balance", []byte(`{"confirmed":180000}`)))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get("cache:balance")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"confirmed":180000}`), got)
}

func TestStore_LastClaimAt(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LastClaimAt()
	assert.ErrorIs(t, err, ErrNotFound)

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetLastClaimAt(stamp))

	got, err := s.LastClaimAt()
	require.NoError(t, err)
	assert.True(t, got.Equal(stamp))
}

func TestStore_OnboardingAndCrashFlags(t *testing.T) {
	s := newTestStore(t)

	seen, err := s.OnboardingSeen()
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.SetOnboardingSeen())
	seen, err = s.OnboardingSeen()
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, s.SetCrashMode(true))
	on, err := s.CrashMode()
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, s.SetCrashMode(false))
	on, err = s.CrashMode()
	require.NoError(t, err)
	assert.False(t, on)
}

func TestStore_CompletedTasks(t *testing.T) {
	s := newTestStore(t)

	fresh, err := s.MarkTaskCompleted("follow-x")
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = s.MarkTaskCompleted("follow-x")
	require.NoError(t, err)
	assert.False(t, fresh, "repeat completion is not new")

	assert.True(t, s.IsTaskCompleted("follow-x"))
	assert.False(t, s.IsTaskCompleted("join-channel"))

	_, err = s.MarkTaskCompleted("join-channel")
	require.NoError(t, err)

	ids, err := s.CompletedTasks()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"follow-x", "join-channel"}, ids)
}

func TestStore_ResetWipesEverything(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("k", []byte("v")))
	_, err := s.MarkTaskCompleted("follow-x")
	require.NoError(t, err)

	require.NoError(t, s.Reset())

	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, s.IsTaskCompleted("follow-x"))
}
