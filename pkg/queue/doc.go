/*
Package queue collects the error taxonomy shared by every queue
sub-package (schema, engine, control, env, pubsub). Kinds mirror the
taxonomy a caller needs to branch on: configuration problems, store
failures, an uninitialized queue directory, an unrecognized pruning
strategy, a same-process double-open, plus the two typed "no result"
outcomes (Empty, Timeout) that are not errors at all.
*/
package queue
