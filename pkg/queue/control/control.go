package control

import (
	"context"

	"github.com/chris-alexander-pop/persiqueue/pkg/datastructures/set"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue/engine"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue/schema"
	"github.com/chris-alexander-pop/persiqueue/pkg/store"
)

// HighWaterMark is the triple of vacuum-governing parameters written to
// queue_db by Initialize.
type HighWaterMark struct {
	MsgTimeoutSecs uint64
	MaxMsgsNum     uint64
	HWMDBSizeBytes uint64
}

// Initialize creates the fixed sub-databases and the five queue_db
// parameter records, plus one sub-database per initial subscriber.
// Calling Initialize on an already-initialized queue overwrites its
// parameter records; existing message data is left untouched.
func Initialize(ctx context.Context, env store.Env, subscriberIDs []string, hwm HighWaterMark, strategy schema.Strategy) error {
	if strategy != schema.PruneFirst && strategy != schema.PruneLast {
		return queue.ErrUnknownStrategy
	}

	return env.Update(ctx, func(tx store.Tx) error {
		for _, name := range []string{schema.DataDB, schema.MetaDB, schema.PendingDB} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		qb, err := tx.CreateBucketIfNotExists(schema.QueueDB)
		if err != nil {
			return err
		}
		if err := qb.Put([]byte(schema.MsgTimeoutSecsKey), schema.EncodeUint64(hwm.MsgTimeoutSecs)); err != nil {
			return err
		}
		if err := qb.Put([]byte(schema.MaxMsgsNumKey), schema.EncodeUint64(hwm.MaxMsgsNum)); err != nil {
			return err
		}
		if err := qb.Put([]byte(schema.HWMDBSizeBytesKey), schema.EncodeUint64(hwm.HWMDBSizeBytes)); err != nil {
			return err
		}
		if err := qb.Put([]byte(schema.StrategyKey), []byte(strategy)); err != nil {
			return err
		}
		ids := set.New[string](subscriberIDs...)
		if err := qb.Put([]byte(schema.SubscriberIDsKey), schema.EncodeSubscriberIDs(ids)); err != nil {
			return err
		}

		for _, id := range subscriberIDs {
			if _, err := tx.CreateBucketIfNotExists(id); err != nil {
				return err
			}
		}
		return nil
	})
}

// CheckQueueIsInitialized reports whether all five queue_db parameter
// records are present.
func CheckQueueIsInitialized(ctx context.Context, env store.Env) (bool, error) {
	initialized := false
	err := env.View(ctx, func(tx store.Tx) error {
		qb, err := tx.Bucket(schema.QueueDB)
		if err != nil {
			return nil
		}
		for _, key := range schema.ParameterKeys {
			if qb.Get([]byte(key)) == nil {
				return nil
			}
		}
		initialized = true
		return nil
	})
	return initialized, err
}

// AddSubscriber creates subscriberID's sub-database and appends it to
// queue_db.subscriber_ids. New subscribers see only messages published
// after this call; they do not retroactively receive already-published
// messages.
func AddSubscriber(ctx context.Context, env store.Env, subscriberID string) error {
	return env.Update(ctx, func(tx store.Tx) error {
		qb, err := tx.Bucket(schema.QueueDB)
		if err != nil {
			return queue.ErrNotInitialized
		}

		ids := schema.DecodeSubscriberIDs(qb.Get([]byte(schema.SubscriberIDsKey)))
		ids.Add(subscriberID)
		if err := qb.Put([]byte(schema.SubscriberIDsKey), schema.EncodeSubscriberIDs(ids)); err != nil {
			return err
		}

		_, err = tx.CreateBucketIfNotExists(subscriberID)
		return err
	})
}

// RemoveSubscriber drops subscriberID's sub-database, decrements
// pending_db for every msg_id it had held, and removes it from
// queue_db.subscriber_ids. A no-op if the subscriber is not registered.
func RemoveSubscriber(ctx context.Context, env store.Env, subscriberID string) error {
	return env.Update(ctx, func(tx store.Tx) error {
		qb, err := tx.Bucket(schema.QueueDB)
		if err != nil {
			return queue.ErrNotInitialized
		}

		ids := schema.DecodeSubscriberIDs(qb.Get([]byte(schema.SubscriberIDsKey)))
		if !ids.Contains(subscriberID) {
			return nil
		}

		if subB, err := tx.Bucket(subscriberID); err == nil {
			pendingB, pErr := tx.Bucket(schema.PendingDB)

			var heldKeys [][]byte
			c := subB.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				heldKeys = append(heldKeys, append([]byte(nil), k...))
			}

			if pErr == nil {
				for _, msgID := range heldKeys {
					n := 0
					if v := pendingB.Get(msgID); v != nil {
						if parsed, derr := schema.DecodeInt(v); derr == nil {
							n = parsed
						}
					}
					if n > 0 {
						n--
					}
					if err := pendingB.Put(msgID, schema.EncodeInt(n)); err != nil {
						return err
					}
				}
			}
		}

		if err := tx.DeleteBucket(subscriberID); err != nil && err != store.ErrBucketNotFound {
			return err
		}

		ids.Remove(subscriberID)
		return qb.Put([]byte(schema.SubscriberIDsKey), schema.EncodeSubscriberIDs(ids))
	})
}

// ClearAllSubscribers empties every per-subscriber sub-database and
// zeroes pending_db, then runs a full vacuum pass so the now-dangling
// messages are reclaimed immediately.
func ClearAllSubscribers(ctx context.Context, env store.Env) error {
	err := env.Update(ctx, func(tx store.Tx) error {
		qb, err := tx.Bucket(schema.QueueDB)
		if err != nil {
			return queue.ErrNotInitialized
		}
		ids := schema.DecodeSubscriberIDs(qb.Get([]byte(schema.SubscriberIDsKey))).List()

		for _, id := range ids {
			subB, err := tx.Bucket(id)
			if err != nil {
				continue
			}
			var keys [][]byte
			c := subB.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				keys = append(keys, append([]byte(nil), k...))
			}
			for _, k := range keys {
				if err := subB.Delete(k); err != nil {
					return err
				}
			}
		}

		pendingB, err := tx.Bucket(schema.PendingDB)
		if err != nil {
			return nil
		}
		var keys [][]byte
		c := pendingB.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := pendingB.Put(k, schema.EncodeInt(0)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	e, err := engine.New(ctx, env)
	if err != nil {
		return err
	}
	_, err = e.Vacuum(ctx)
	return err
}

// PruneDanglingMessages runs vacuum's dangling-reclamation step in
// isolation, without the overflow-pruning step.
func PruneDanglingMessages(ctx context.Context, env store.Env) (engine.VacuumReport, error) {
	e, err := engine.New(ctx, env)
	if err != nil {
		return engine.VacuumReport{}, err
	}
	n, err := e.ReclaimDangling(ctx)
	return engine.VacuumReport{ReclaimedDangling: n}, err
}
