package artifact

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

var _ core.ArtifactStore = (*RedisStore)(nil)

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	store, err := NewRedisStore(func(o *RedisOptions) {
		o.Addr = mr.Addr()
		o.TTL = time.Minute
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close()
		mr.Close()
	})
	return mr, store
}

func TestRedisStore_SaveGetList(t *testing.T) {
	_, store := setupRedisStore(t)

	require.NoError(t, store.Save("s1", "b", []byte("frame-b")))
	require.NoError(t, store.Save("s1", "a", []byte("frame-a")))

	data, err := store.Get("s1", "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("frame-a"), data)

	ids, err := store.List("s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestRedisStore_NotFound(t *testing.T) {
	_, store := setupRedisStore(t)

	_, err := store.Get("s1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete("s1", "missing"), ErrNotFound)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, store := setupRedisStore(t)

	require.NoError(t, store.Save("s1", "a", []byte("x")))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get("s1", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_DeleteSession(t *testing.T) {
	mr, store := setupRedisStore(t)

	require.NoError(t, store.Save("s1", "a", []byte("x")))
	require.NoError(t, store.Save("s1", "b", []byte("y")))
	require.NoError(t, store.Save("s2", "a", []byte("z")))

	require.NoError(t, store.DeleteSession("s1"))

	ids, err := store.List("s1")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.False(t, mr.Exists("agentrelay:artifact:s1:a"))

	data, err := store.Get("s2", "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("z"), data)
}

func TestRedisStore_MaxSize(t *testing.T) {
	_, store := setupRedisStore(t)
	store.opts.MaxSize = 2
	assert.ErrorIs(t, store.Save("s1", "a", []byte("abc")), ErrTooLarge)
}
