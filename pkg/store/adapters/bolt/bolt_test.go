package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/chris-alexander-pop/persiqueue/pkg/store"
	"github.com/chris-alexander-pop/persiqueue/pkg/store/adapters/bolt"
	"github.com/stretchr/testify/require"
)

func openEnv(t *testing.T) *bolt.Env {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.db")
	env, err := bolt.Open(path, store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	return env
}

func TestPutAndGet(t *testing.T) {
	env := openEnv(t)
	ctx := context.Background()

	err := env.Update(ctx, func(tx store.Tx) error {
		b, err := tx.CreateBucketIfNotExists("data")
		require.NoError(t, err)
		return b.Put([]byte("k1"), []byte("v1"))
	})
	require.NoError(t, err)

	err = env.View(ctx, func(tx store.Tx) error {
		b, err := tx.Bucket("data")
		require.NoError(t, err)
		require.Equal(t, []byte("v1"), b.Get([]byte("k1")))
		return nil
	})
	require.NoError(t, err)
}

func TestBucketNotFound(t *testing.T) {
	env := openEnv(t)
	ctx := context.Background()

	err := env.View(ctx, func(tx store.Tx) error {
		_, err := tx.Bucket("missing")
		return err
	})
	require.ErrorIs(t, err, store.ErrBucketNotFound)
}

func TestCursorOrdering(t *testing.T) {
	env := openEnv(t)
	ctx := context.Background()

	err := env.Update(ctx, func(tx store.Tx) error {
		b, err := tx.CreateBucketIfNotExists("ordered")
		require.NoError(t, err)
		for _, k := range []string{"b", "a", "c"} {
			require.NoError(t, b.Put([]byte(k), []byte(k)))
		}
		return nil
	})
	require.NoError(t, err)

	var keys []string
	err = env.View(ctx, func(tx store.Tx) error {
		b, err := tx.Bucket("ordered")
		require.NoError(t, err)
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestDeleteBucket(t *testing.T) {
	env := openEnv(t)
	ctx := context.Background()

	require.NoError(t, env.Update(ctx, func(tx store.Tx) error {
		_, err := tx.CreateBucketIfNotExists("gone")
		return err
	}))

	require.NoError(t, env.Update(ctx, func(tx store.Tx) error {
		return tx.DeleteBucket("gone")
	}))

	err := env.View(ctx, func(tx store.Tx) error {
		_, err := tx.Bucket("gone")
		return err
	})
	require.ErrorIs(t, err, store.ErrBucketNotFound)
}

func TestKeyN(t *testing.T) {
	env := openEnv(t)
	ctx := context.Background()

	require.NoError(t, env.Update(ctx, func(tx store.Tx) error {
		b, err := tx.CreateBucketIfNotExists("count")
		require.NoError(t, err)
		require.NoError(t, b.Put([]byte("1"), []byte{}))
		require.NoError(t, b.Put([]byte("2"), []byte{}))
		return nil
	}))

	err := env.View(ctx, func(tx store.Tx) error {
		b, err := tx.Bucket("count")
		require.NoError(t, err)
		require.Equal(t, 2, b.KeyN())
		return nil
	})
	require.NoError(t, err)
}

func TestStats(t *testing.T) {
	env := openEnv(t)
	s := env.Stats()
	require.NotEmpty(t, s.Path)
}
