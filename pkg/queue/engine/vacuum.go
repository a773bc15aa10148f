package engine

import (
	"context"

	"github.com/chris-alexander-pop/persiqueue/pkg/queue/schema"
	"github.com/chris-alexander-pop/persiqueue/pkg/store"
)

// VacuumReport summarizes one vacuum pass, so a caller (or the control
// plane's explicit prune operation) can observe how many messages were
// dropped rather than losing that information silently.
type VacuumReport struct {
	ReclaimedDangling int
	PrunedOverflow    int
}

// Vacuum runs a vacuum pass in its own write transaction: this is what
// the control plane's ClearAllSubscribers calls after emptying the
// subscriber sub-databases (its PruneDanglingMessages calls
// ReclaimDangling instead). Put and PutMany run the same pass inline, within their
// own transaction, so publishers always see an up-to-date queue before
// writing.
func (e *Engine) Vacuum(ctx context.Context) (VacuumReport, error) {
	var report VacuumReport
	err := e.env.Update(ctx, func(tx store.Tx) error {
		r, err := e.vacuumTx(tx)
		report = r
		return err
	})
	return report, err
}

// ReclaimDangling runs only the dangling-reclamation half of vacuum (the
// control plane's prune_dangling_messages operation), leaving overflow
// pruning untouched.
func (e *Engine) ReclaimDangling(ctx context.Context) (int, error) {
	n := 0
	err := e.env.Update(ctx, func(tx store.Tx) error {
		pendingB, err := tx.CreateBucketIfNotExists(schema.PendingDB)
		if err != nil {
			return err
		}
		metaB, err := tx.CreateBucketIfNotExists(schema.MetaDB)
		if err != nil {
			return err
		}
		dataB, err := tx.CreateBucketIfNotExists(schema.DataDB)
		if err != nil {
			return err
		}
		qb, err := tx.CreateBucketIfNotExists(schema.QueueDB)
		if err != nil {
			return err
		}
		subIDs := schema.DecodeSubscriberIDs(qb.Get([]byte(schema.SubscriberIDsKey))).List()

		for _, msgID := range collectDangling(pendingB, metaB, uint64(e.now().Unix()), e.msgTimeoutSecs) {
			if err := deleteMessage(tx, pendingB, metaB, dataB, subIDs, msgID); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if n > 0 {
		e.totalReclaimed.Add(int64(n))
	}
	return n, err
}

func (e *Engine) vacuumTx(tx store.Tx) (VacuumReport, error) {
	var report VacuumReport

	pendingB, err := tx.CreateBucketIfNotExists(schema.PendingDB)
	if err != nil {
		return report, err
	}
	metaB, err := tx.CreateBucketIfNotExists(schema.MetaDB)
	if err != nil {
		return report, err
	}
	dataB, err := tx.CreateBucketIfNotExists(schema.DataDB)
	if err != nil {
		return report, err
	}
	qb, err := tx.CreateBucketIfNotExists(schema.QueueDB)
	if err != nil {
		return report, err
	}
	subIDs := schema.DecodeSubscriberIDs(qb.Get([]byte(schema.SubscriberIDsKey))).List()

	dangling := collectDangling(pendingB, metaB, uint64(e.now().Unix()), e.msgTimeoutSecs)
	for _, msgID := range dangling {
		if err := deleteMessage(tx, pendingB, metaB, dataB, subIDs, msgID); err != nil {
			return report, err
		}
		report.ReclaimedDangling++
	}

	count := metaB.KeyN()
	sizeBytes := e.env.Stats().SizeBytes
	if uint64(count) >= e.maxMsgsNum || uint64(sizeBytes) >= e.hwmDBSizeBytes {
		half := (count + 1) / 2
		for _, msgID := range collectPruneKeys(metaB, e.strategy, half) {
			if err := deleteMessage(tx, pendingB, metaB, dataB, subIDs, msgID); err != nil {
				return report, err
			}
			report.PrunedOverflow++
		}
	}

	if report.ReclaimedDangling > 0 {
		e.totalReclaimed.Add(int64(report.ReclaimedDangling))
	}
	if report.PrunedOverflow > 0 {
		e.totalPrunedOverflow.Add(int64(report.PrunedOverflow))
	}

	return report, nil
}

// collectDangling walks pending_db for zero-pending messages and meta_db
// for messages older than msgTimeoutSecs. The age check must walk meta_db,
// not pending_db, for the timestamp — see the per-message age comment
// below.
func collectDangling(pendingB, metaB store.Bucket, nowSecs, msgTimeoutSecs uint64) [][]byte {
	seen := make(map[string][]byte)

	pc := pendingB.Cursor()
	for k, v := pc.First(); k != nil; k, v = pc.Next() {
		n, err := schema.DecodeInt(v)
		if err == nil && n <= 0 {
			seen[string(k)] = append([]byte(nil), k...)
		}
	}

	mc := metaB.Cursor()
	for k, v := mc.First(); k != nil; k, v = mc.Next() {
		ts, err := schema.DecodeUint64(v)
		if err != nil {
			continue
		}
		// A message is dangling by age once it has outlived
		// msgTimeoutSecs, checked against meta_db's creation timestamp.
		if nowSecs > ts && nowSecs-ts > msgTimeoutSecs {
			seen[string(k)] = append([]byte(nil), k...)
		}
	}

	out := make([][]byte, 0, len(seen))
	for _, k := range seen {
		out = append(out, k)
	}
	return out
}

// collectPruneKeys gathers the n keys of metaB that prune-half must
// delete under strategy: the lexicographically smallest n under
// prune_first (oldest), the largest n under prune_last (newest).
func collectPruneKeys(metaB store.Bucket, strategy schema.Strategy, n int) [][]byte {
	if n <= 0 {
		return nil
	}
	keys := make([][]byte, 0, n)
	c := metaB.Cursor()

	if strategy == schema.PruneLast {
		for k, _ := c.Last(); k != nil && len(keys) < n; k, _ = c.Prev() {
			keys = append(keys, append([]byte(nil), k...))
		}
		return keys
	}

	for k, _ := c.First(); k != nil && len(keys) < n; k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	return keys
}

func deleteMessage(tx store.Tx, pendingB, metaB, dataB store.Bucket, subIDs []string, msgID []byte) error {
	if err := pendingB.Delete(msgID); err != nil {
		return err
	}
	if err := metaB.Delete(msgID); err != nil {
		return err
	}
	if err := dataB.Delete(msgID); err != nil {
		return err
	}
	for _, id := range subIDs {
		subB, err := tx.Bucket(id)
		if err != nil {
			continue
		}
		if err := subB.Delete(msgID); err != nil {
			return err
		}
	}
	return nil
}
