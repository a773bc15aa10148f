package store

import (
	"context"
	"fmt"
	"time"

	"github.com/chris-alexander-pop/persiqueue/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedEnv wraps an Env with tracing spans and structured logging
// around every transaction.
type InstrumentedEnv struct {
	next   Env
	name   string
	tracer trace.Tracer
}

// NewInstrumentedEnv wraps env, labeling spans and logs with name (typically
// the queue's canonical path).
func NewInstrumentedEnv(env Env, name string) *InstrumentedEnv {
	return &InstrumentedEnv{
		next:   env,
		name:   name,
		tracer: otel.Tracer("pkg/store"),
	}
}

func (e *InstrumentedEnv) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	ctx, span := e.tracer.Start(ctx, fmt.Sprintf("store.%s", op))
	span.SetAttributes(attribute.String("store.path", e.name))
	return ctx, span
}

func (e *InstrumentedEnv) View(ctx context.Context, fn func(Tx) error) error {
	ctx, span := e.startSpan(ctx, "View")
	defer span.End()

	start := time.Now()
	err := e.next.View(ctx, fn)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.L().ErrorContext(ctx, "read transaction failed", "path", e.name, "error", err, "duration", duration)
		return err
	}

	logger.L().DebugContext(ctx, "read transaction committed", "path", e.name, "duration", duration)
	return nil
}

func (e *InstrumentedEnv) Update(ctx context.Context, fn func(Tx) error) error {
	ctx, span := e.startSpan(ctx, "Update")
	defer span.End()

	start := time.Now()
	err := e.next.Update(ctx, fn)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.L().ErrorContext(ctx, "write transaction failed", "path", e.name, "error", err, "duration", duration)
		return err
	}

	logger.L().InfoContext(ctx, "write transaction committed", "path", e.name, "duration", duration)
	return nil
}

func (e *InstrumentedEnv) Stats() Stats  { return e.next.Stats() }
func (e *InstrumentedEnv) Path() string  { return e.next.Path() }
func (e *InstrumentedEnv) Close() error  { return e.next.Close() }
