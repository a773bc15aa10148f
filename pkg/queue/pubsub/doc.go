/*
Package pubsub provides the Publisher and Subscriber façades over
pkg/queue/engine: a publisher bound to a fixed subscriber-id list and an
autosync policy, and a subscriber exposing a guarded receive-and-ack
handle plus poll-based and receive-to-top variants.

# Guarded receive

The reference system ties pop to the exit of a scoped front read: pop
runs on normal scope exit, and is skipped on any exceptional exit so the
message survives for redelivery. Go has no destructor-driven scope exit,
so this is rendered as an explicit ReceivedMessage.Ack call: a message a
caller never acks remains queued, giving the same at-least-once
guarantee a dropped or panicking scope would in the source system.
*/
package pubsub
