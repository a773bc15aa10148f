// Package bolt adapts go.etcd.io/bbolt to the pkg/store interfaces.
package bolt

import (
	"context"
	"os"
	"time"

	"github.com/chris-alexander-pop/persiqueue/pkg/errors"
	"github.com/chris-alexander-pop/persiqueue/pkg/store"
	bolt "go.etcd.io/bbolt"
)

// Env wraps a single bbolt database file.
type Env struct {
	db   *bolt.DB
	path string
	opts store.Options
}

// Open opens (creating if absent) a bbolt database file at path.
func Open(path string, opts store.Options) (*Env, error) {
	boltOpts := &bolt.Options{
		Timeout:  time.Second,
		ReadOnly: opts.ReadOnly,
	}

	db, err := bolt.Open(path, 0o600, boltOpts)
	if err != nil {
		return nil, errors.Internal("failed to open store at "+path, err)
	}

	return &Env{db: db, path: path, opts: opts}, nil
}

func (e *Env) View(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := e.db.View(func(btx *bolt.Tx) error {
		return fn(&tx{btx: btx})
	})
	if err != nil {
		return errors.Internal("store read transaction failed", err)
	}
	return nil
}

func (e *Env) Update(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := e.db.Update(func(btx *bolt.Tx) error {
		return fn(&tx{btx: btx})
	})
	if err != nil {
		return errors.Internal("store write transaction failed", err)
	}
	return nil
}

func (e *Env) Stats() store.Stats {
	info, err := os.Stat(e.path)
	var size int64
	if err == nil {
		size = info.Size()
	}

	bstats := e.db.Stats()
	buckets := 0
	_ = e.db.View(func(btx *bolt.Tx) error {
		buckets = btx.Stats().BucketN
		return nil
	})

	return store.Stats{
		Path:       e.path,
		SizeBytes:  size,
		BucketsN:   buckets,
		OpenReadTx: bstats.OpenTxN,
	}
}

func (e *Env) Path() string { return e.path }

func (e *Env) Close() error {
	if err := e.db.Close(); err != nil {
		return errors.Internal("failed to close store", err)
	}
	return nil
}

type tx struct {
	btx *bolt.Tx
}

func (t *tx) Writable() bool { return t.btx.Writable() }

func (t *tx) Bucket(name string) (store.Bucket, error) {
	b := t.btx.Bucket([]byte(name))
	if b == nil {
		return nil, store.ErrBucketNotFound
	}
	return &bucket{b: b}, nil
}

func (t *tx) CreateBucketIfNotExists(name string) (store.Bucket, error) {
	b, err := t.btx.CreateBucketIfNotExists([]byte(name))
	if err != nil {
		return nil, errors.Internal("failed to create bucket "+name, err)
	}
	return &bucket{b: b}, nil
}

func (t *tx) DeleteBucket(name string) error {
	if err := t.btx.DeleteBucket([]byte(name)); err != nil {
		if err == bolt.ErrBucketNotFound {
			return store.ErrBucketNotFound
		}
		return errors.Internal("failed to delete bucket "+name, err)
	}
	return nil
}

type bucket struct {
	b *bolt.Bucket
}

func (bk *bucket) Get(key []byte) []byte {
	v := bk.b.Get(key)
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func (bk *bucket) Put(key, value []byte) error {
	if err := bk.b.Put(key, value); err != nil {
		if err == bolt.ErrTxNotWritable {
			return store.ErrTxNotWritable
		}
		return errors.Internal("failed to put key", err)
	}
	return nil
}

func (bk *bucket) Delete(key []byte) error {
	if err := bk.b.Delete(key); err != nil {
		if err == bolt.ErrTxNotWritable {
			return store.ErrTxNotWritable
		}
		return errors.Internal("failed to delete key", err)
	}
	return nil
}

func (bk *bucket) KeyN() int {
	return bk.b.Stats().KeyN
}

func (bk *bucket) Cursor() store.Cursor {
	return &cursor{c: bk.b.Cursor()}
}

type cursor struct {
	c *bolt.Cursor
}

func (c *cursor) First() ([]byte, []byte) { return c.c.First() }
func (c *cursor) Last() ([]byte, []byte)  { return c.c.Last() }
func (c *cursor) Next() ([]byte, []byte)  { return c.c.Next() }
func (c *cursor) Prev() ([]byte, []byte)  { return c.c.Prev() }
func (c *cursor) Seek(key []byte) ([]byte, []byte) { return c.c.Seek(key) }
