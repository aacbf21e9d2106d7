package identity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"contesthub/internal/model"
	pkgerrors "contesthub/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store, err := NewRedisStoreWithClient(client, "test:")
	require.NoError(t, err)
	return store, mr
}

func TestLoginSurvivesRestart_FileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "identity.json")

	s, err := Open(ctx, NewFileStore(path))
	require.NoError(t, err)
	assert.Equal(t, model.Identity{}, s.Current())

	require.NoError(t, s.Login(ctx, "alice", "admin"))
	assert.Equal(t, model.Identity{Username: "alice", Role: "admin"}, s.Current())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restarted, err := Open(ctx, NewFileStore(path))
	require.NoError(t, err)
	assert.Equal(t, model.Identity{Username: "alice", Role: "admin"}, restarted.Current())
}

func TestLogoutSurvivesRestart_FileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "identity.json")

	s, err := Open(ctx, NewFileStore(path))
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, "alice", "admin"))
	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, model.Identity{}, s.Current())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "state file should be removed once empty")

	restarted, err := Open(ctx, NewFileStore(path))
	require.NoError(t, err)
	assert.Equal(t, model.Identity{Username: "", Role: ""}, restarted.Current())
}

func TestLoginOverwritesPreviousIdentity(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, NewMemoryStore())
	require.NoError(t, err)

	require.NoError(t, s.Login(ctx, "alice", "admin"))
	require.NoError(t, s.Login(ctx, "bob", ""))
	assert.Equal(t, model.Identity{Username: "bob"}, s.Current())
}

func TestFileStoreKeepsUnrelatedKeys(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "identity.json")
	store := NewFileStore(path)

	require.NoError(t, store.Set(ctx, "theme", "dark"))
	s, err := Open(ctx, store)
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, "alice", "user"))
	require.NoError(t, s.Logout(ctx))

	v, ok, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestOpenCorruptFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(context.Background(), NewFileStore(path))
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.IdentityStoreError))
}

func TestLoginSurvivesRestart_RedisStore(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	s, err := Open(ctx, store)
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, "alice", "admin"))

	got, err := mr.Get("test:username")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	restarted, err := Open(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{Username: "alice", Role: "admin"}, restarted.Current())

	require.NoError(t, restarted.Logout(ctx))
	assert.False(t, mr.Exists("test:username"))
	assert.False(t, mr.Exists("test:role"))

	again, err := Open(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{}, again.Current())
}

func TestRedisStoreFailureIsReported(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	s, err := Open(ctx, store)
	require.NoError(t, err)

	mr.SetError("READONLY replica")
	err = s.Login(ctx, "alice", "admin")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.IdentityStoreError))
	// memory still reflects the login
	assert.Equal(t, "alice", s.Current().Username)

	_, err = Open(ctx, store)
	require.Error(t, err)
}

func TestNewRedisStoreRequiresAddr(t *testing.T) {
	_, err := NewRedisStore(DefaultRedisConfig())
	require.Error(t, err)

	_, err = NewRedisStoreWithClient(nil, "")
	require.Error(t, err)
}

func TestNewRedisStoreDials(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()

	store, err := NewRedisStore(cfg)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Set(context.Background(), KeyRole, "admin"))
	got, err := mr.Get("contesthub:role")
	require.NoError(t, err)
	assert.Equal(t, "admin", got)
}
