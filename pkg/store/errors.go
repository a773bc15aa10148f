package store

import "github.com/chris-alexander-pop/persiqueue/pkg/errors"

// Sentinel errors for store operations.
var (
	// ErrBucketNotFound is returned when Tx.Bucket is called for a
	// sub-database that does not exist.
	ErrBucketNotFound = errors.NotFound("bucket not found", nil)

	// ErrTxNotWritable is returned when a write is attempted inside a
	// View transaction.
	ErrTxNotWritable = errors.Forbidden("transaction is not writable", nil)

	// ErrEnvClosed names the closed-Env condition. The bbolt adapter does
	// not return it: an operation on a closed Env surfaces as an Internal
	// error wrapping bbolt's own error.
	ErrEnvClosed = errors.InvalidArgument("environment is closed", nil)
)
