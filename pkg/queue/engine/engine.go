package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/chris-alexander-pop/persiqueue/pkg/queue"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue/schema"
	"github.com/chris-alexander-pop/persiqueue/pkg/store"
)

// Engine is the transactional core of one open queue. It caches the
// high-water-mark parameters and pruning strategy read from queue_db at
// open time; the subscriber-id list is read live from queue_db inside
// every transaction that needs it, so it always reflects the most recent
// control-plane mutation.
type Engine struct {
	env store.Env

	msgTimeoutSecs uint64
	maxMsgsNum     uint64
	hwmDBSizeBytes uint64
	strategy       schema.Strategy

	now func() time.Time

	totalReclaimed      atomic.Int64
	totalPrunedOverflow atomic.Int64
}

// SetClock overrides the engine's time source. Exposed for tests that need
// deterministic msg_id ordering: schema.NewMsgID tie-breaks same-second
// messages with a random UUID, so a test asserting message order must
// inject a clock that advances on every call instead of relying on
// wall-clock time.Now staying within one second across calls.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// New constructs an Engine over env, reading its high-water-mark
// parameters from queue_db. Returns queue.ErrNotInitialized if any
// parameter record is missing.
func New(ctx context.Context, env store.Env) (*Engine, error) {
	e := &Engine{env: env, now: time.Now}

	err := env.View(ctx, func(tx store.Tx) error {
		qb, err := tx.Bucket(schema.QueueDB)
		if err != nil {
			return queue.ErrNotInitialized
		}

		for _, key := range schema.ParameterKeys {
			if qb.Get([]byte(key)) == nil {
				return queue.ErrNotInitialized
			}
		}

		timeout, err := schema.DecodeUint64(qb.Get([]byte(schema.MsgTimeoutSecsKey)))
		if err != nil {
			return queue.ErrConfig
		}
		maxMsgs, err := schema.DecodeUint64(qb.Get([]byte(schema.MaxMsgsNumKey)))
		if err != nil {
			return queue.ErrConfig
		}
		hwmBytes, err := schema.DecodeUint64(qb.Get([]byte(schema.HWMDBSizeBytesKey)))
		if err != nil {
			return queue.ErrConfig
		}
		strategy := schema.Strategy(qb.Get([]byte(schema.StrategyKey)))
		if strategy != schema.PruneFirst && strategy != schema.PruneLast {
			return queue.ErrUnknownStrategy
		}

		e.msgTimeoutSecs = timeout
		e.maxMsgsNum = maxMsgs
		e.hwmDBSizeBytes = hwmBytes
		e.strategy = strategy
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e, nil
}

// Put writes a single message visible to subscriberIDs, running vacuum
// first in the same transaction.
func (e *Engine) Put(ctx context.Context, payload []byte, subscriberIDs []string) error {
	return e.env.Update(ctx, func(tx store.Tx) error {
		if _, err := e.vacuumTx(tx); err != nil {
			return err
		}
		ts := uint64(e.now().Unix())
		return e.writeMessage(tx, schema.NewMsgID(ts), ts, payload, subscriberIDs)
	})
}

// PutMany writes every payload in payloads within one transaction, all
// sharing one timestamp but each with its own UUID. There is no ordering
// promise across the batch: msg_ids may be lexicographically reordered by
// UUID tie-break.
func (e *Engine) PutMany(ctx context.Context, payloads [][]byte, subscriberIDs []string) error {
	return e.env.Update(ctx, func(tx store.Tx) error {
		if _, err := e.vacuumTx(tx); err != nil {
			return err
		}
		ts := uint64(e.now().Unix())
		for _, payload := range payloads {
			if err := e.writeMessage(tx, schema.NewMsgID(ts), ts, payload, subscriberIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Engine) writeMessage(tx store.Tx, msgID []byte, ts uint64, payload []byte, subscriberIDs []string) error {
	dataB, err := tx.CreateBucketIfNotExists(schema.DataDB)
	if err != nil {
		return err
	}
	if err := dataB.Put(msgID, payload); err != nil {
		return err
	}

	metaB, err := tx.CreateBucketIfNotExists(schema.MetaDB)
	if err != nil {
		return err
	}
	if err := metaB.Put(msgID, schema.EncodeUint64(ts)); err != nil {
		return err
	}

	pendingB, err := tx.CreateBucketIfNotExists(schema.PendingDB)
	if err != nil {
		return err
	}
	if err := pendingB.Put(msgID, schema.EncodeInt(len(subscriberIDs))); err != nil {
		return err
	}

	for _, id := range subscriberIDs {
		subB, err := tx.CreateBucketIfNotExists(id)
		if err != nil {
			return err
		}
		if err := subB.Put(msgID, []byte{}); err != nil {
			return err
		}
	}

	return nil
}

// Front returns the oldest undelivered payload for subscriberID without
// removing it. Returns queue.Empty (not an error) if the subscriber has
// no pending message, including when the underlying data record has
// already been reclaimed by vacuum.
func (e *Engine) Front(ctx context.Context, subscriberID string) ([]byte, error) {
	var payload []byte
	err := e.env.View(ctx, func(tx store.Tx) error {
		subB, err := tx.Bucket(subscriberID)
		if err != nil {
			return queue.Empty
		}

		msgID, _ := subB.Cursor().First()
		if msgID == nil {
			return queue.Empty
		}

		dataB, err := tx.Bucket(schema.DataDB)
		if err != nil {
			return queue.Empty
		}
		v := dataB.Get(msgID)
		if v == nil {
			return queue.Empty
		}

		payload = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Pop removes the oldest message from subscriberID's sub-database and
// decrements its pending count. A no-op, not an error, if the
// subscriber's sub-database is empty or does not exist.
func (e *Engine) Pop(ctx context.Context, subscriberID string) error {
	return e.env.Update(ctx, func(tx store.Tx) error {
		subB, err := tx.Bucket(subscriberID)
		if err != nil {
			return nil
		}

		msgID, _ := subB.Cursor().First()
		if msgID == nil {
			return nil
		}
		msgID = append([]byte(nil), msgID...)

		if err := subB.Delete(msgID); err != nil {
			return err
		}

		pendingB, err := tx.Bucket(schema.PendingDB)
		if err != nil {
			return nil
		}
		return decrementPending(pendingB, msgID)
	})
}

func decrementPending(pendingB store.Bucket, msgID []byte) error {
	n := 0
	if v := pendingB.Get(msgID); v != nil {
		if parsed, err := schema.DecodeInt(v); err == nil {
			n = parsed
		}
	}
	if n > 0 {
		n--
	}
	return pendingB.Put(msgID, schema.EncodeInt(n))
}

// ReceiveToTop pops messages from subscriberID until only the newest
// remains, reads it via Front and then pops it as well, leaving the
// subscriber's backlog empty. Intended for subscribers that only care
// about the most recent state snapshot.
func (e *Engine) ReceiveToTop(ctx context.Context, subscriberID string) ([]byte, error) {
	for {
		n, err := e.subscriberBacklog(ctx, subscriberID)
		if err != nil {
			return nil, err
		}
		if n <= 1 {
			break
		}
		if err := e.Pop(ctx, subscriberID); err != nil {
			return nil, err
		}
	}
	payload, err := e.Front(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if err := e.Pop(ctx, subscriberID); err != nil {
		return nil, err
	}
	return payload, nil
}

func (e *Engine) subscriberBacklog(ctx context.Context, subscriberID string) (int, error) {
	n := 0
	err := e.env.View(ctx, func(tx store.Tx) error {
		subB, err := tx.Bucket(subscriberID)
		if err != nil {
			return nil
		}
		n = subB.KeyN()
		return nil
	})
	return n, err
}
