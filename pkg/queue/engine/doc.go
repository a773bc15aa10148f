/*
Package engine implements the queue engine: the transactional protocols
for put, front, pop and vacuum that make a handful of ordered KVS
sub-databases behave as a durable, multi-subscriber FIFO.

Every write goes through one store transaction; vacuum runs inline at the
top of every publisher transaction so publishers pay its cost and
subscribers never do. Dangling-message reclamation and high-water-mark
overflow pruning are both driven from the live queue_db subscriber list
read inside the same transaction, not from a cache, so a concurrent
add_subscriber/remove_subscriber is always reflected in the very next
vacuum pass.
*/
package engine
