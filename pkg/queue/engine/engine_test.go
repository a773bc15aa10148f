package engine_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/chris-alexander-pop/persiqueue/pkg/datastructures/set"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue/engine"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue/schema"
	"github.com/chris-alexander-pop/persiqueue/pkg/store"
	"github.com/chris-alexander-pop/persiqueue/pkg/store/adapters/bolt"
	"github.com/stretchr/testify/require"
)

// sequentialClock returns a clock that advances by one second on every
// call, starting at startUnix. Tests needing deterministic msg_id ordering
// inject this via Engine.SetClock: schema.NewMsgID breaks ties between
// same-second messages with a random UUID, so relying on wall-clock
// time.Now staying within one second across a handful of Put calls would
// make ordering assertions flaky.
func sequentialClock(startUnix int64) func() time.Time {
	next := startUnix
	return func() time.Time {
		t := time.Unix(next, 0)
		next++
		return t
	}
}

// newTestQueue opens a fresh queue directory, writes the five queue_db
// parameter records directly (standing in for the control plane's
// Initialize, not yet exercised here), and creates a sub-database for
// every subscriber in subscriberIDs.
func newTestQueue(t *testing.T, msgTimeoutSecs, maxMsgsNum, hwmDBSizeBytes uint64, strategy schema.Strategy, subscriberIDs ...string) (*engine.Engine, store.Env) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.db")
	env, err := bolt.Open(path, store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })

	ctx := context.Background()
	ids := set.New[string](subscriberIDs...)

	err = env.Update(ctx, func(tx store.Tx) error {
		qb, err := tx.CreateBucketIfNotExists(schema.QueueDB)
		require.NoError(t, err)
		require.NoError(t, qb.Put([]byte(schema.MsgTimeoutSecsKey), schema.EncodeUint64(msgTimeoutSecs)))
		require.NoError(t, qb.Put([]byte(schema.MaxMsgsNumKey), schema.EncodeUint64(maxMsgsNum)))
		require.NoError(t, qb.Put([]byte(schema.HWMDBSizeBytesKey), schema.EncodeUint64(hwmDBSizeBytes)))
		require.NoError(t, qb.Put([]byte(schema.StrategyKey), []byte(strategy)))
		require.NoError(t, qb.Put([]byte(schema.SubscriberIDsKey), schema.EncodeSubscriberIDs(ids)))

		for _, id := range subscriberIDs {
			if _, err := tx.CreateBucketIfNotExists(id); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	e, err := engine.New(ctx, env)
	require.NoError(t, err)
	return e, env
}

func TestNewRejectsUninitializedQueue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")
	env, err := bolt.Open(path, store.Options{})
	require.NoError(t, err)
	defer env.Close()

	_, err = engine.New(context.Background(), env)
	require.ErrorIs(t, err, queue.ErrNotInitialized)
}

// Round-trip for a single subscriber.
func TestPutFrontPopRoundTrip(t *testing.T) {
	e, _ := newTestQueue(t, 500, 65536, 1<<30, schema.PruneFirst, "sub")
	ctx := context.Background()

	require.NoError(t, e.Put(ctx, []byte("Hello there!"), []string{"sub"}))

	payload, err := e.Front(ctx, "sub")
	require.NoError(t, err)
	require.Equal(t, []byte("Hello there!"), payload)

	require.NoError(t, e.Pop(ctx, "sub"))

	_, err = e.Front(ctx, "sub")
	require.ErrorIs(t, err, queue.Empty)
}

// Broadcast to many subscribers; popping one does not affect others.
func TestBroadcastToMultipleSubscribers(t *testing.T) {
	e, _ := newTestQueue(t, 500, 65536, 1<<30, schema.PruneFirst, "sub1", "sub2")
	ctx := context.Background()

	require.NoError(t, e.Put(ctx, []byte("I'm a message.\n"), []string{"sub1", "sub2"}))

	p1, err := e.Front(ctx, "sub1")
	require.NoError(t, err)
	require.Equal(t, []byte("I'm a message.\n"), p1)

	p2, err := e.Front(ctx, "sub2")
	require.NoError(t, err)
	require.Equal(t, []byte("I'm a message.\n"), p2)

	require.NoError(t, e.Pop(ctx, "sub1"))

	_, err = e.Front(ctx, "sub1")
	require.ErrorIs(t, err, queue.Empty)

	p2again, err := e.Front(ctx, "sub2")
	require.NoError(t, err)
	require.Equal(t, []byte("I'm a message.\n"), p2again)
}

// PutMany writes a batch in one transaction.
func TestPutManyBatch(t *testing.T) {
	e, _ := newTestQueue(t, 500, 65536, 1<<30, schema.PruneFirst, "sub")
	ctx := context.Background()

	require.NoError(t, e.PutMany(ctx, [][]byte{
		[]byte("What's up?"),
		[]byte("Do you like the README?"),
	}, []string{"sub"}))

	st, err := e.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, st.MessageCount)

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		p, err := e.Front(ctx, "sub")
		require.NoError(t, err)
		seen[string(p)] = true
		require.NoError(t, e.Pop(ctx, "sub"))
	}
	require.True(t, seen["What's up?"])
	require.True(t, seen["Do you like the README?"])

	_, err = e.Front(ctx, "sub")
	require.ErrorIs(t, err, queue.Empty)
}

// FIFO ordering per subscriber.
func TestFIFOOrdering(t *testing.T) {
	e, _ := newTestQueue(t, 500, 65536, 1<<30, schema.PruneFirst, "sub")
	e.SetClock(sequentialClock(1000))
	ctx := context.Background()

	for _, p := range []string{"1", "2", "3"} {
		require.NoError(t, e.Put(ctx, []byte(p), []string{"sub"}))
	}

	for _, want := range []string{"1", "2", "3"} {
		got, err := e.Front(ctx, "sub")
		require.NoError(t, err)
		require.Equal(t, []byte(want), got)
		require.NoError(t, e.Pop(ctx, "sub"))
	}
}

// Dangling reclamation by timeout.
func TestDanglingReclamationByTimeout(t *testing.T) {
	e, env := newTestQueue(t, 1, 65536, 1<<30, schema.PruneFirst, "sub")
	ctx := context.Background()

	require.NoError(t, e.Put(ctx, []byte("stale"), []string{"sub"}))
	time.Sleep(2 * time.Second)

	report, err := e.Vacuum(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.ReclaimedDangling)

	err = env.View(ctx, func(tx store.Tx) error {
		for _, name := range []string{schema.DataDB, schema.MetaDB, schema.PendingDB, "sub"} {
			b, err := tx.Bucket(name)
			require.NoError(t, err)
			require.Equal(t, 0, b.KeyN())
		}
		return nil
	})
	require.NoError(t, err)
}

// Dangling reclamation by zero pending count (all subscribers popped).
func TestDanglingReclamationByZeroPending(t *testing.T) {
	e, _ := newTestQueue(t, 500, 65536, 1<<30, schema.PruneFirst, "sub")
	ctx := context.Background()

	require.NoError(t, e.Put(ctx, []byte("msg"), []string{"sub"}))
	require.NoError(t, e.Pop(ctx, "sub"))

	report, err := e.Vacuum(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.ReclaimedDangling)

	st, err := e.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, st.MessageCount)
	require.Equal(t, 1, st.TotalReclaimed)
}

// Overflow pruning converges under prune_first: once the message count
// reaches maxMsgsNum, the oldest half is dropped on the next write.
func TestOverflowPruningPruneFirst(t *testing.T) {
	e, _ := newTestQueue(t, 500, 4, 1<<30, schema.PruneFirst, "sub")
	e.SetClock(sequentialClock(2000))
	ctx := context.Background()

	for _, p := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, e.Put(ctx, []byte(p), []string{"sub"}))
	}

	st, err := e.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, st.MessageCount)
	require.Equal(t, 2, st.TotalPrunedOverflow)

	var remaining []string
	for {
		p, err := e.Front(ctx, "sub")
		if err != nil {
			break
		}
		remaining = append(remaining, string(p))
		require.NoError(t, e.Pop(ctx, "sub"))
	}
	require.Equal(t, []string{"3", "4", "5"}, remaining)
}

// Vacuum is idempotent with no intervening writes.
func TestVacuumIdempotent(t *testing.T) {
	e, _ := newTestQueue(t, 500, 65536, 1<<30, schema.PruneFirst, "sub")
	ctx := context.Background()

	require.NoError(t, e.Put(ctx, []byte("a"), []string{"sub"}))

	r1, err := e.Vacuum(ctx)
	require.NoError(t, err)
	require.Zero(t, r1.ReclaimedDangling)
	require.Zero(t, r1.PrunedOverflow)

	st1, err := e.Stats(ctx)
	require.NoError(t, err)

	r2, err := e.Vacuum(ctx)
	require.NoError(t, err)
	require.Equal(t, r1, r2)

	st2, err := e.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, st1, st2)
}

// Receive-to-top returns the newest message and leaves the backlog empty.
func TestReceiveToTop(t *testing.T) {
	e, _ := newTestQueue(t, 500, 65536, 1<<30, schema.PruneFirst, "sub")
	e.SetClock(sequentialClock(3000))
	ctx := context.Background()

	for _, p := range []string{"a", "b", "c"} {
		require.NoError(t, e.Put(ctx, []byte(p), []string{"sub"}))
	}

	top, err := e.ReceiveToTop(ctx, "sub")
	require.NoError(t, err)
	require.Equal(t, []byte("c"), top)

	_, err = e.Front(ctx, "sub")
	require.ErrorIs(t, err, queue.Empty)
}

// Pending-count invariant after partial pops across subscribers.
func TestPendingCountInvariant(t *testing.T) {
	e, env := newTestQueue(t, 500, 65536, 1<<30, schema.PruneFirst, "sub1", "sub2", "sub3")
	ctx := context.Background()

	require.NoError(t, e.Put(ctx, []byte("x"), []string{"sub1", "sub2", "sub3"}))
	require.NoError(t, e.Pop(ctx, "sub1"))

	var msgID []byte
	err := env.View(ctx, func(tx store.Tx) error {
		metaB, err := tx.Bucket(schema.MetaDB)
		require.NoError(t, err)
		k, _ := metaB.Cursor().First()
		msgID = append([]byte(nil), k...)

		pendingB, err := tx.Bucket(schema.PendingDB)
		require.NoError(t, err)
		n, err := schema.DecodeInt(pendingB.Get(msgID))
		require.NoError(t, err)
		require.Equal(t, 2, n)
		return nil
	})
	require.NoError(t, err)
}

func TestFrontOnUnregisteredSubscriberIsEmpty(t *testing.T) {
	e, _ := newTestQueue(t, 500, 65536, 1<<30, schema.PruneFirst)
	_, err := e.Front(context.Background(), "nobody")
	require.ErrorIs(t, err, queue.Empty)
}

func TestPopOnEmptySubscriberIsNoOp(t *testing.T) {
	e, _ := newTestQueue(t, 500, 65536, 1<<30, schema.PruneFirst, "sub")
	require.NoError(t, e.Pop(context.Background(), "sub"))
}
