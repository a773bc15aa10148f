package pubsub

import (
	"context"
	"sync"

	"github.com/chris-alexander-pop/persiqueue/pkg/queue/engine"
)

// Publisher is a thin façade over the Queue Engine, bound at construction
// to the fixed list of subscriber ids it fans messages out to.
type Publisher struct {
	eng           *engine.Engine
	subscriberIDs []string
	autosync      bool

	mu     sync.Mutex
	buffer [][]byte
}

// PublisherOption configures a Publisher at construction.
type PublisherOption func(*Publisher)

// WithAutosync overrides the default (true): per-call commit vs.
// caller-controlled batching via Flush.
func WithAutosync(autosync bool) PublisherOption {
	return func(p *Publisher) { p.autosync = autosync }
}

// NewPublisher creates a Publisher over eng, fanning every Send/SendMany
// out to subscriberIDs.
func NewPublisher(eng *engine.Engine, subscriberIDs []string, opts ...PublisherOption) *Publisher {
	p := &Publisher{eng: eng, subscriberIDs: subscriberIDs, autosync: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Send publishes payload. Under autosync it commits immediately;
// otherwise it buffers until the next Flush.
func (p *Publisher) Send(ctx context.Context, payload []byte) error {
	if p.autosync {
		return p.eng.Put(ctx, payload, p.subscriberIDs)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffer = append(p.buffer, payload)
	return nil
}

// SendMany publishes payloads as one batch (one shared timestamp). Under
// autosync it commits immediately; otherwise it buffers until Flush.
func (p *Publisher) SendMany(ctx context.Context, payloads [][]byte) error {
	if p.autosync {
		return p.eng.PutMany(ctx, payloads, p.subscriberIDs)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffer = append(p.buffer, payloads...)
	return nil
}

// Flush commits any payloads buffered by a non-autosync Publisher as one
// batch. A no-op if nothing is buffered.
func (p *Publisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	batch := p.buffer
	p.buffer = nil
	p.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return p.eng.PutMany(ctx, batch, p.subscriberIDs)
}
