package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chris-alexander-pop/persiqueue/pkg/config"
	"github.com/stretchr/testify/require"
)

func writeDeploymentFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "deployment.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDeploymentAppliesDefaults(t *testing.T) {
	path := writeDeploymentFile(t, `{
		"pub": {"ingest": {"out_queue": "/var/queues/orders", "subscribers": ["billing"]}},
		"sub": {"billing": {"in_queue": "/var/queues/orders"}},
		"queues": {
			"/var/queues/orders": {"subscribers": ["billing"]}
		}
	}`)

	cfg, err := config.LoadDeployment(path)
	require.NoError(t, err)

	q := cfg.Queues["/var/queues/orders"]
	require.Equal(t, config.DefaultMaxReaderNum, q.MaxReaderNum)
	require.Equal(t, config.DefaultMaxDBNum, q.MaxDBNum)
	require.EqualValues(t, config.DefaultMaxDBSizeBytes, q.MaxDBSizeBytes)
	require.EqualValues(t, config.DefaultMsgTimeoutSecs, q.HighWaterMark.MsgTimeoutSecs)
	require.EqualValues(t, config.DefaultMaxMsgsNum, q.HighWaterMark.MaxMsgsNum)
	require.EqualValues(t, config.DefaultHWMDBSizeBytes, q.HighWaterMark.HWMDBSizeBytes)
	require.Equal(t, config.DefaultStrategy, q.HighWaterMark.Strategy)
}

func TestLoadDeploymentHonorsExplicitValues(t *testing.T) {
	path := writeDeploymentFile(t, `{
		"pub": {"ingest": {"out_queue": "/q", "subscribers": ["a"]}},
		"sub": {"a": {"in_queue": "/q"}},
		"queues": {
			"/q": {
				"max_reader_num": 4,
				"subscribers": ["a"],
				"high-water-mark": {
					"MSG_TIMEOUT_SECS": 60,
					"strategy": "prune_last"
				}
			}
		}
	}`)

	cfg, err := config.LoadDeployment(path)
	require.NoError(t, err)

	q := cfg.Queues["/q"]
	require.Equal(t, 4, q.MaxReaderNum)
	require.EqualValues(t, 60, q.HighWaterMark.MsgTimeoutSecs)
	require.Equal(t, "prune_last", q.HighWaterMark.Strategy)
	require.EqualValues(t, config.DefaultMaxMsgsNum, q.HighWaterMark.MaxMsgsNum)
}

func TestLoadDeploymentRejectsUnknownStrategy(t *testing.T) {
	path := writeDeploymentFile(t, `{
		"pub": {}, "sub": {},
		"queues": {"/q": {"high-water-mark": {"strategy": "prune_middle"}}}
	}`)

	_, err := config.LoadDeployment(path)
	require.Error(t, err)
}

func TestLoadDeploymentRejectsMissingOutQueue(t *testing.T) {
	path := writeDeploymentFile(t, `{
		"pub": {"ingest": {"subscribers": ["a"]}},
		"sub": {}, "queues": {}
	}`)

	_, err := config.LoadDeployment(path)
	require.Error(t, err)
}

func TestLoadDeploymentRejectsMissingFile(t *testing.T) {
	_, err := config.LoadDeployment(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestQueuePathFor(t *testing.T) {
	path := writeDeploymentFile(t, `{
		"pub": {"ingest": {"out_queue": "/q/out", "subscribers": ["a"]}},
		"sub": {"a": {"in_queue": "/q/in"}},
		"queues": {}
	}`)

	cfg, err := config.LoadDeployment(path)
	require.NoError(t, err)

	p, ok := cfg.QueuePathFor("pub", "ingest")
	require.True(t, ok)
	require.Equal(t, "/q/out", p)

	s, ok := cfg.QueuePathFor("sub", "a")
	require.True(t, ok)
	require.Equal(t, "/q/in", s)

	_, ok = cfg.QueuePathFor("pub", "missing")
	require.False(t, ok)
}
