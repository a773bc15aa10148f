package pubsub

import (
	"context"
	"sync"
	"time"

	"github.com/chris-alexander-pop/persiqueue/pkg/errors"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue/engine"
	"github.com/chris-alexander-pop/persiqueue/pkg/resilience"
)

// Subscriber exposes scoped receive-and-ack over one subscriber's
// sub-database.
type Subscriber struct {
	eng *engine.Engine
	id  string
}

// NewSubscriber creates a Subscriber over eng for the given subscriber id.
// The id must already be registered (see pkg/queue/control.AddSubscriber)
// or every Receive returns queue.Empty.
func NewSubscriber(eng *engine.Engine, subscriberID string) *Subscriber {
	return &Subscriber{eng: eng, id: subscriberID}
}

// ReceivedMessage is a guarded handle over one in-flight message: it owns
// the payload until Ack is called. See doc.go for why Ack is explicit
// rather than scope-exit-triggered.
type ReceivedMessage struct {
	eng     *engine.Engine
	id      string
	payload []byte

	mu    sync.Mutex
	acked bool
}

// Payload returns the message bytes. Valid for the handle's lifetime
// regardless of whether it has been acked.
func (m *ReceivedMessage) Payload() []byte { return m.payload }

// Ack pops the message from the subscriber's sub-database and decrements
// its pending count. Idempotent: a second Ack is a no-op.
func (m *ReceivedMessage) Ack(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acked {
		return nil
	}
	if err := m.eng.Pop(ctx, m.id); err != nil {
		return err
	}
	m.acked = true
	return nil
}

// Receive returns a guarded handle over the oldest undelivered message,
// or queue.Empty if none is pending.
func (s *Subscriber) Receive(ctx context.Context) (*ReceivedMessage, error) {
	payload, err := s.eng.Front(ctx, s.id)
	if err != nil {
		return nil, err
	}
	return &ReceivedMessage{eng: s.eng, id: s.id, payload: payload}, nil
}

// ReceiveWithTimeout polls Receive, spacing attempts across timeout so
// the total wait does not exceed it, and returns queue.Timeout if no
// message arrives before the budget is exhausted.
func (s *Subscriber) ReceiveWithTimeout(ctx context.Context, timeout time.Duration, retries int) (*ReceivedMessage, error) {
	if retries < 1 {
		retries = 1
	}
	interval := timeout / time.Duration(retries)

	cfg := resilience.RetryConfig{
		MaxAttempts:    retries,
		InitialBackoff: interval,
		MaxBackoff:     interval,
		Multiplier:     1,
		RetryIf:        func(err error) bool { return errors.Is(err, queue.Empty) },
	}

	var msg *ReceivedMessage
	err := resilience.Retry(ctx, cfg, func(ctx context.Context) error {
		m, ferr := s.Receive(ctx)
		if ferr != nil {
			return ferr
		}
		msg = m
		return nil
	})
	if err != nil {
		if errors.Is(err, queue.Empty) {
			return nil, queue.Timeout
		}
		return nil, err
	}
	return msg, nil
}

// ReceiveToTop drains this subscriber's whole backlog and returns the
// newest payload, for subscribers that only want the most recent state
// snapshot. The returned message is popped too, so it is not redelivered.
func (s *Subscriber) ReceiveToTop(ctx context.Context) ([]byte, error) {
	return s.eng.ReceiveToTop(ctx, s.id)
}
