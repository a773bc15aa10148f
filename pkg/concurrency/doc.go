/*
Package concurrency provides concurrency primitives with observability.

Features:
  - SmartMutex / SmartRWMutex: slow-lock logging in DebugMode, to flag a
    lock held longer than expected. The Environment Factory's registry
    lock is a SmartMutex.

This package never enforces correctness on its own — the store engine and
the on-disk KVS lock do that. SmartMutex/SmartRWMutex are diagnostic only.
*/
package concurrency
