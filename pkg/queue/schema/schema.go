package schema

import "strconv"

// Fixed sub-database names. DataDB, MetaDB, PendingDB and QueueDB exist in
// every queue directory; one further sub-database exists per subscriber,
// named by the subscriber's own identifier.
const (
	DataDB    = "data_db"
	MetaDB    = "meta_db"
	PendingDB = "pending_db"
	QueueDB   = "queue_db"
)

// queue_db parameter keys. Values are ASCII decimal for numeric fields and
// a space-separated token list for SubscriberIDsKey.
const (
	MsgTimeoutSecsKey = "msg_timeout_secs"
	MaxMsgsNumKey     = "max_msgs_num"
	HWMDBSizeBytesKey = "hwm_db_size_bytes"
	StrategyKey       = "strategy"
	SubscriberIDsKey  = "subscriber_ids"
)

// ParameterKeys lists the five records CheckQueueIsInitialized requires to
// be present before a queue is considered initialized.
var ParameterKeys = []string{
	MsgTimeoutSecsKey,
	MaxMsgsNumKey,
	HWMDBSizeBytesKey,
	StrategyKey,
	SubscriberIDsKey,
}

// Strategy selects which half of an overflowing queue is pruned.
type Strategy string

const (
	PruneFirst Strategy = "prune_first"
	PruneLast  Strategy = "prune_last"
)

// Defaults applied to any parameter omitted from a deployment file.
const (
	DefaultMaxReaderNum   = 1024
	DefaultMaxDBNum       = 1024
	DefaultMaxDBSizeBytes = 32 * (1 << 30)
	DefaultMsgTimeoutSecs = 500
	DefaultMaxMsgsNum     = 65536
	DefaultHWMDBSizeBytes = 30 * (1 << 30)
	DefaultStrategy       = PruneFirst
)

// EncodeUint64 renders n as the ASCII decimal value stored in queue_db.
func EncodeUint64(n uint64) []byte {
	return []byte(strconv.FormatUint(n, 10))
}

// DecodeUint64 parses an ASCII decimal value from queue_db.
func DecodeUint64(b []byte) (uint64, error) {
	return strconv.ParseUint(string(b), 10, 64)
}

// EncodeInt renders n (a pending count) as ASCII decimal.
func EncodeInt(n int) []byte {
	return []byte(strconv.Itoa(n))
}

// DecodeInt parses an ASCII decimal pending count.
func DecodeInt(b []byte) (int, error) {
	return strconv.Atoi(string(b))
}
