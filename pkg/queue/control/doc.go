/*
Package control implements the administrative operations that sit above
the queue engine: creating a queue directory's parameter records,
registering and deregistering subscribers, clearing backlogs, and
pruning dangling messages on demand. These operations write queue_db and
the per-subscriber sub-databases directly; PruneDanglingMessages and the
vacuum step of ClearAllSubscribers delegate to pkg/queue/engine so the
same reclamation logic runs whether triggered by a publisher's write or
by an operator.
*/
package control
