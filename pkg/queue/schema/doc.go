/*
Package schema defines the sub-database names, key layout and value
encodings shared by every queue directory: the four fixed sub-databases
(data, meta, pending, queue parameters) plus one per subscriber, the
lexicographically-sortable message identifier, and the ASCII encoding of
queue_db parameter records.

Naming, defaults and encodings here are the process-wide constant table
described for this queue: fixed for the process's lifetime, not tunable
at runtime.
*/
package schema
