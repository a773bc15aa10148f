package engine

import (
	"context"

	"github.com/chris-alexander-pop/persiqueue/pkg/queue/schema"
	"github.com/chris-alexander-pop/persiqueue/pkg/store"
)

// Stats reports the current message count, approximate on-disk size, and
// per-subscriber backlog, for administrative tooling and tests.
// TotalReclaimed and TotalPrunedOverflow are process-local, non-persistent
// running totals of messages vacuum has ever dropped on this Engine: they
// reset on process restart and never gate correctness, but let an operator
// notice overflow pruning is actively shedding messages instead of only
// finding out from missing data.
type Stats struct {
	MessageCount        int
	SizeBytes           int64
	Subscribers         map[string]int
	TotalReclaimed      int
	TotalPrunedOverflow int
}

// Stats reads the current queue state in one read transaction.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := e.env.View(ctx, func(tx store.Tx) error {
		metaB, err := tx.Bucket(schema.MetaDB)
		if err != nil {
			st.MessageCount = 0
		} else {
			st.MessageCount = metaB.KeyN()
		}

		qb, err := tx.Bucket(schema.QueueDB)
		if err != nil {
			return nil
		}
		subIDs := schema.DecodeSubscriberIDs(qb.Get([]byte(schema.SubscriberIDsKey))).List()

		st.Subscribers = make(map[string]int, len(subIDs))
		for _, id := range subIDs {
			subB, err := tx.Bucket(id)
			if err != nil {
				st.Subscribers[id] = 0
				continue
			}
			st.Subscribers[id] = subB.KeyN()
		}
		return nil
	})
	st.SizeBytes = e.env.Stats().SizeBytes
	st.TotalReclaimed = int(e.totalReclaimed.Load())
	st.TotalPrunedOverflow = int(e.totalPrunedOverflow.Load())
	return st, err
}
