package store

import "context"

// Options configures an Env at open time. MaxReaderNum, MaxDBNum and
// MaxDBSizeBytes mirror the sizing section of a queue deployment file
// (see pkg/config.QueueConfig); see doc.go for how the bbolt adapter
// treats them.
type Options struct {
	MaxReaderNum   int
	MaxDBNum       int
	MaxDBSizeBytes int64

	// ReadOnly opens the environment without acquiring the writer lock,
	// for inspection tools that must not block a running daemon.
	ReadOnly bool
}

// Stats reports environment-level counters for observability.
type Stats struct {
	Path       string
	SizeBytes  int64
	BucketsN   int
	OpenReadTx int
}

// Env is one open database file.
type Env interface {
	// View runs fn in a read-only transaction. Safe to call concurrently
	// with other View calls and with an in-flight Update.
	View(ctx context.Context, fn func(Tx) error) error

	// Update runs fn in a read-write transaction, serialized against all
	// other Update calls on this Env. fn returning a non-nil error rolls
	// the transaction back.
	Update(ctx context.Context, fn func(Tx) error) error

	Stats() Stats
	Path() string
	Close() error
}

// Tx is a transaction against an Env.
type Tx interface {
	// Bucket returns an existing named sub-database, or ErrBucketNotFound.
	Bucket(name string) (Bucket, error)

	// CreateBucketIfNotExists returns the named sub-database, creating it
	// if absent. Only valid inside an Update transaction.
	CreateBucketIfNotExists(name string) (Bucket, error)

	// DeleteBucket removes a named sub-database and everything in it.
	// Only valid inside an Update transaction.
	DeleteBucket(name string) error

	// Writable reports whether this is a read-write transaction.
	Writable() bool
}

// Bucket is a named sub-database: an ordered key-value map.
type Bucket interface {
	Get(key []byte) []byte
	Put(key, value []byte) error
	Delete(key []byte) error

	// Cursor returns a cursor positioned before the first key.
	Cursor() Cursor

	// KeyN returns the number of keys in the bucket. O(n) on some
	// adapters; callers on a hot path should prefer a running count.
	KeyN() int
}

// Cursor iterates a bucket's keys in byte-lexicographic order. A nil key
// signals exhaustion in either direction.
type Cursor interface {
	First() (key, value []byte)
	Last() (key, value []byte)
	Next() (key, value []byte)
	Prev() (key, value []byte)
	Seek(key []byte) (key, value []byte)
}
