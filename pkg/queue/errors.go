package queue

import (
	stderrors "errors"

	"github.com/chris-alexander-pop/persiqueue/pkg/errors"
)

// Sentinel errors surfaced by the queue engine, control plane and
// environment factory. Empty and Timeout are control-flow sentinels, not
// AppErrors, since front/receive treat "no message" as a typed result
// rather than a failure.
var (
	// ErrConfig is returned by engine.New when a numeric queue_db
	// parameter record cannot be parsed. An absent record yields
	// ErrNotInitialized instead, and config.LoadDeployment reports
	// deployment-file problems as its own InvalidArgument errors, not
	// as ErrConfig.
	ErrConfig = errors.InvalidArgument("configuration error", nil)

	// ErrStore is the sentinel for the store-failure kind. No code path
	// returns it: the store adapter reports I/O and transaction failures
	// as its own Internal errors, which callers receive unwrapped.
	ErrStore = errors.Internal("store error", nil)

	// ErrNotInitialized is returned when a queue directory exists but
	// queue_db lacks one or more of the required parameter records.
	ErrNotInitialized = errors.NotFound("queue is not initialized", nil)

	// ErrUnknownStrategy is returned when a parsed strategy string
	// matches neither prune_first nor prune_last.
	ErrUnknownStrategy = errors.InvalidArgument("unknown pruning strategy", nil)

	// ErrEnvironmentConflict is returned when a second Environment for
	// the same queue path is requested from the same process while the
	// first is still open, and the factory was not asked to share it.
	ErrEnvironmentConflict = errors.Conflict("environment already open for this queue in this process", nil)
)

// Empty is returned by Front/Receive in place of a payload when the
// calling subscriber's sub-database holds no message. It is a typed "no
// message" result, not an AppError: callers compare with errors.Is.
var Empty = stderrors.New("no message available")

// Timeout is returned by Subscriber.ReceiveWithTimeout when the poll
// budget is exhausted without a message arriving.
var Timeout = stderrors.New("receive timed out")
