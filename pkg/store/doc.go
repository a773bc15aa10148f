/*
Package store provides a minimal, transactional key-value abstraction over
an embedded, memory-mapped database file.

# Architecture

The package follows the adapter pattern used throughout this module: the
core Env/Tx/Bucket/Cursor interfaces are defined here with zero external
dependencies on any particular engine, and a single concrete adapter
(adapters/bolt) implements them on top of go.etcd.io/bbolt, a pure-Go
copy-on-write B+tree with the same transaction model (single writer,
multiple concurrent readers via MVCC snapshots, crash-safe commits) as the
LMDB-family engines this queue's wire layout was designed against.

	┌───────────────────────── STORE ─────────────────────────┐
	│  Env   - one open database file, one writer at a time    │
	│  Tx    - a read or read-write transaction                │
	│  Bucket - a named sub-database (bbolt bucket)             │
	│  Cursor - ordered iteration within a bucket               │
	└────────────────────────────────────────────────────────┘

# Transaction model

  - View(fn): read-only, concurrent with other readers and with the
    writer's in-flight transaction (snapshot isolation).
  - Update(fn): read-write, serialized against other writers. The
    callback's returned error rolls the transaction back; a nil return
    commits.

# Sizing parameters

max_reader_num, max_db_num and max_db_size_bytes come from queue
deployment files written against LMDB-style engines, which pre-allocate
those limits at environment-open time. bbolt has no equivalent
preallocation: buckets are created on demand up to the process's open
file descriptor and memory limits, and the backing file grows
incrementally. Env accepts these parameters for wire-format
compatibility, but neither enforces them as hard caps nor reports them
through Stats; callers needing an enforced message-count ceiling use
the high-water-mark pruning in pkg/queue/engine instead.
*/
package store
