package config

import (
	"encoding/json"
	"os"

	"github.com/chris-alexander-pop/persiqueue/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Defaults for queue high-water-mark parameters and KVS sizing, applied to
// any queues.<path> entry that omits them.
const (
	DefaultMaxReaderNum   = 1024
	DefaultMaxDBNum       = 1024
	DefaultMaxDBSizeBytes = 32 * (1 << 30)
	DefaultMsgTimeoutSecs = 500
	DefaultMaxMsgsNum     = 65536
	DefaultHWMDBSizeBytes = 30 * (1 << 30)
	DefaultStrategy       = "prune_first"
)

// HighWaterMark mirrors the queues.<path>.high-water-mark JSON object.
type HighWaterMark struct {
	MsgTimeoutSecs uint64 `json:"MSG_TIMEOUT_SECS"`
	MaxMsgsNum     uint64 `json:"MAX_MSGS_NUM"`
	HWMDBSizeBytes uint64 `json:"HWM_LMDB_SIZE_BYTES"`
	Strategy       string `json:"strategy" validate:"omitempty,oneof=prune_first prune_last"`
}

// QueueConfig mirrors one queues.<path> entry.
type QueueConfig struct {
	MaxReaderNum   int           `json:"max_reader_num"`
	MaxDBNum       int           `json:"max_db_num"`
	MaxDBSizeBytes int64         `json:"max_db_size_bytes"`
	Subscribers    []string      `json:"subscribers"`
	HighWaterMark  HighWaterMark `json:"high-water-mark"`
}

// PublisherConfig mirrors one pub.<id> entry.
type PublisherConfig struct {
	OutQueue    string   `json:"out_queue" validate:"required"`
	Subscribers []string `json:"subscribers"`
}

// SubscriberConfig mirrors one sub.<id> entry.
type SubscriberConfig struct {
	InQueue string `json:"in_queue" validate:"required"`
}

// DeploymentConfig is the full deployment file: named publishers and
// subscribers bound to queue paths, plus the per-queue high-water-mark and
// sizing parameters.
type DeploymentConfig struct {
	Publishers  map[string]PublisherConfig  `json:"pub" validate:"dive"`
	Subscribers map[string]SubscriberConfig `json:"sub" validate:"dive"`
	Queues      map[string]QueueConfig      `json:"queues"`
}

// LoadDeployment reads and validates a deployment JSON file, applying the
// package defaults to any omitted high-water-mark or sizing field.
func LoadDeployment(path string) (*DeploymentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidArgument("failed to read deployment config "+path, err)
	}

	var cfg DeploymentConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.InvalidArgument("failed to parse deployment config "+path, err)
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, errors.InvalidArgument("deployment config failed validation", err)
	}
	for qpath, q := range cfg.Queues {
		if err := validator.New().Struct(&q); err != nil {
			return nil, errors.InvalidArgument("queue config for "+qpath+" failed validation", err)
		}
	}

	return &cfg, nil
}

func (c *DeploymentConfig) applyDefaults() {
	for path, q := range c.Queues {
		if q.MaxReaderNum == 0 {
			q.MaxReaderNum = DefaultMaxReaderNum
		}
		if q.MaxDBNum == 0 {
			q.MaxDBNum = DefaultMaxDBNum
		}
		if q.MaxDBSizeBytes == 0 {
			q.MaxDBSizeBytes = DefaultMaxDBSizeBytes
		}
		if q.HighWaterMark.MsgTimeoutSecs == 0 {
			q.HighWaterMark.MsgTimeoutSecs = DefaultMsgTimeoutSecs
		}
		if q.HighWaterMark.MaxMsgsNum == 0 {
			q.HighWaterMark.MaxMsgsNum = DefaultMaxMsgsNum
		}
		if q.HighWaterMark.HWMDBSizeBytes == 0 {
			q.HighWaterMark.HWMDBSizeBytes = DefaultHWMDBSizeBytes
		}
		if q.HighWaterMark.Strategy == "" {
			q.HighWaterMark.Strategy = DefaultStrategy
		}
		c.Queues[path] = q
	}
}

// QueuePathFor resolves the on-disk queue path for a publisher or
// subscriber logical id, as the control plane needs when wiring façades
// from a deployment file.
func (c *DeploymentConfig) QueuePathFor(kind, id string) (string, bool) {
	switch kind {
	case "pub":
		p, ok := c.Publishers[id]
		return p.OutQueue, ok
	case "sub":
		s, ok := c.Subscribers[id]
		return s.InQueue, ok
	default:
		return "", false
	}
}
