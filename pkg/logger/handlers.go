package logger

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
)

// AsyncHandler decouples log emission from the caller's goroutine by
// buffering records on a channel and draining them on one background
// goroutine. DropOnFull controls behavior when the buffer is saturated:
// true drops the record (never blocks the caller), false applies
// backpressure.
type AsyncHandler struct {
	next      slog.Handler
	records   chan asyncRecord
	dropped   bool
	once      sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

type asyncRecord struct {
	ctx context.Context
	r   slog.Record
}

// NewAsyncHandler starts the draining goroutine and returns the handler.
func NewAsyncHandler(next slog.Handler, bufferSize int, dropOnFull bool) *AsyncHandler {
	h := &AsyncHandler{
		next:    next,
		records: make(chan asyncRecord, bufferSize),
		dropped: dropOnFull,
		done:    make(chan struct{}),
	}
	go h.drain()
	return h
}

func (h *AsyncHandler) drain() {
	defer close(h.done)
	for rec := range h.records {
		_ = h.next.Handle(rec.ctx, rec.r)
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	rec := asyncRecord{ctx: ctx, r: r.Clone()}
	if h.dropped {
		select {
		case h.records <- rec:
		default:
			// buffer full: drop rather than block the caller
		}
		return nil
	}
	h.records <- rec
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), records: h.records, dropped: h.dropped, done: h.done}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), records: h.records, dropped: h.dropped, done: h.done}
}

// redactedKeys are attribute keys whose values are replaced with "[REDACTED]"
// regardless of case.
var redactedKeys = map[string]struct{}{
	"password": {}, "secret": {}, "token": {}, "authorization": {},
	"payload": {}, "api_key": {}, "apikey": {},
}

// RedactHandler scrubs attribute values whose key looks sensitive before
// they reach the next handler. It never inspects message text, only
// structured attributes, so it is cheap relative to a full log-line scan.
type RedactHandler struct {
	next slog.Handler
}

func NewRedactHandler(next slog.Handler) *RedactHandler {
	return &RedactHandler{next: next}
}

func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func redactAttr(a slog.Attr) slog.Attr {
	if _, sensitive := redactedKeys[strings.ToLower(a.Key)]; sensitive {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RedactHandler{next: h.next.WithAttrs(attrs)}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{next: h.next.WithGroup(name)}
}

// SamplingHandler drops a fraction of records before they reach next,
// independent of level. rate is the fraction kept, in [0,1].
type SamplingHandler struct {
	next slog.Handler
	rate float64
}

func NewSamplingHandler(next slog.Handler, rate float64) *SamplingHandler {
	return &SamplingHandler{next: next, rate: rate}
}

func (h *SamplingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SamplingHandler) Handle(ctx context.Context, r slog.Record) error {
	if rand.Float64() > h.rate {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *SamplingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SamplingHandler{next: h.next.WithAttrs(attrs), rate: h.rate}
}

func (h *SamplingHandler) WithGroup(name string) slog.Handler {
	return &SamplingHandler{next: h.next.WithGroup(name), rate: h.rate}
}
