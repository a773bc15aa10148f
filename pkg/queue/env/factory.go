package env

import (
	"context"
	"path/filepath"

	"github.com/chris-alexander-pop/persiqueue/pkg/concurrency"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue/engine"
	"github.com/chris-alexander-pop/persiqueue/pkg/store"
	"github.com/chris-alexander-pop/persiqueue/pkg/store/adapters/bolt"
)

// Factory is a process-wide registry of open queue environments, keyed
// by canonicalized directory path. The zero value is not usable; use
// NewFactory.
type Factory struct {
	mu      concurrency.SmartMutex
	entries map[string]*entry
}

type entry struct {
	environment *Environment
	refCount    int
}

// NewFactory creates an empty registry.
func NewFactory() *Factory {
	return &Factory{entries: make(map[string]*entry)}
}

// Open returns the Environment for path, opening it if this is the first
// request in this process, or sharing (and incrementing the reference
// count of) the existing one otherwise. Every call must be paired with
// Environment.Close.
func (f *Factory) Open(ctx context.Context, path string, opts store.Options) (*Environment, error) {
	return f.open(ctx, path, opts, false)
}

// OpenExclusive behaves like Open but fails with
// queue.ErrEnvironmentConflict if an Environment for path is already
// open in this process.
func (f *Factory) OpenExclusive(ctx context.Context, path string, opts store.Options) (*Environment, error) {
	return f.open(ctx, path, opts, true)
}

func (f *Factory) open(ctx context.Context, path string, opts store.Options, exclusive bool) (*Environment, error) {
	canonical, err := canonicalize(path)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if e, ok := f.entries[canonical]; ok {
		if exclusive {
			return nil, queue.ErrEnvironmentConflict
		}
		e.refCount++
		return e.environment, nil
	}

	boltEnv, err := bolt.Open(canonical, opts)
	if err != nil {
		return nil, err
	}

	environment := &Environment{
		factory: f,
		path:    canonical,
		store:   store.NewInstrumentedEnv(boltEnv, canonical),
	}
	f.entries[canonical] = &entry{environment: environment, refCount: 1}
	return environment, nil
}

// release is called by Environment.Close. The underlying store is closed
// only when the last reference is released.
func (f *Factory) release(e *Environment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ent, ok := f.entries[e.path]
	if !ok {
		return nil
	}

	ent.refCount--
	if ent.refCount > 0 {
		return nil
	}

	delete(f.entries, e.path)
	return e.store.Close()
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// Environment is the process-local handle to one on-disk queue: an open
// store, and a lazily-built, cached Engine over it.
type Environment struct {
	factory *Factory
	path    string
	store   store.Env

	engine *engine.Engine
}

// Store returns the underlying store handle, for the control plane's
// administrative operations.
func (e *Environment) Store() store.Env { return e.store }

// Path returns the canonicalized queue directory this Environment opened.
func (e *Environment) Path() string { return e.path }

// Engine returns the cached Queue Engine for this Environment, building
// it from the queue's current queue_db parameters on first call. Returns
// queue.ErrNotInitialized if the queue has not yet been initialized.
func (e *Environment) Engine(ctx context.Context) (*engine.Engine, error) {
	if e.engine != nil {
		return e.engine, nil
	}
	eng, err := engine.New(ctx, e.store)
	if err != nil {
		return nil, err
	}
	e.engine = eng
	return e.engine, nil
}

// Close releases this Environment's reference. The underlying store is
// only closed once every caller that opened this queue in this process
// has released it.
func (e *Environment) Close() error {
	return e.factory.release(e)
}
