/*
Package env implements the per-process Environment Factory: a registry,
keyed by canonicalized queue path, that enforces at most one open store
handle per queue per process. Opening a queue that is already open in
this process returns the existing, reference-counted
Environment by default; OpenExclusive instead fails with
queue.ErrEnvironmentConflict, for callers that must themselves guarantee
sole ownership (e.g. a long-running daemon that never expects to share).

The factory does not span forked processes or goroutine-unsafe reuse
across an exec; "per process" is enforced via normal Go package-level
state, the same guarantee a source language's module-level singleton
would give.
*/
package env
