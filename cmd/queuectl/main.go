// Command queuectl is the deployment-file-driven administrative CLI for
// persiqueue: initialize, prune-dangling and clear-all each walk every
// queue named in a deployment config and apply one control-plane
// operation to it.
package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/chris-alexander-pop/persiqueue/pkg/config"
	"github.com/chris-alexander-pop/persiqueue/pkg/logger"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue/control"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue/env"
	"github.com/chris-alexander-pop/persiqueue/pkg/queue/schema"
	"github.com/chris-alexander-pop/persiqueue/pkg/store"
)

// cliConfig is the CLI's own process config, layered on top of the
// deployment file: env-based overrides for things that vary by
// environment (log verbosity) rather than by queue.
type cliConfig struct {
	LogLevel string `env:"LOG_LEVEL" env-default:"INFO"`
}

func main() {
	var cliCfg cliConfig
	if err := config.Load(&cliCfg); err != nil {
		fmt.Fprintf(os.Stderr, "queuectl: %v\n", err)
		os.Exit(2)
	}
	logger.Init(logger.Config{Level: cliCfg.LogLevel, Format: "TEXT", Async: false, Redact: true, SamplingRate: 1.0})

	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		usage()
		os.Exit(2)
	}

	cmd, configPath := args[0], args[1]

	deployment, err := config.LoadDeployment(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "queuectl: %v\n", err)
		os.Exit(2)
	}

	var run func(context.Context, store.Env, config.QueueConfig) error
	switch cmd {
	case "initialize":
		run = runInitialize
	case "prune-dangling":
		run = runPruneDangling
	case "clear-all":
		run = runClearAll
	default:
		usage()
		os.Exit(2)
	}

	factory := env.NewFactory()
	ctx := context.Background()
	failed := false

	for path, qcfg := range deployment.Queues {
		e, err := factory.Open(ctx, path, store.Options{
			MaxReaderNum:   qcfg.MaxReaderNum,
			MaxDBNum:       qcfg.MaxDBNum,
			MaxDBSizeBytes: qcfg.MaxDBSizeBytes,
		})
		if err != nil {
			logger.L().Error("failed to open queue", "path", path, "error", err)
			failed = true
			continue
		}

		if err := run(ctx, e.Store(), qcfg); err != nil {
			logger.L().Error("operation failed", "command", cmd, "path", path, "error", err)
			failed = true
		}

		if err := e.Close(); err != nil {
			logger.L().Error("failed to close queue", "path", path, "error", err)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func runInitialize(ctx context.Context, s store.Env, qcfg config.QueueConfig) error {
	hwm := control.HighWaterMark{
		MsgTimeoutSecs: qcfg.HighWaterMark.MsgTimeoutSecs,
		MaxMsgsNum:     qcfg.HighWaterMark.MaxMsgsNum,
		HWMDBSizeBytes: qcfg.HighWaterMark.HWMDBSizeBytes,
	}
	strategy := schema.Strategy(qcfg.HighWaterMark.Strategy)
	return control.Initialize(ctx, s, qcfg.Subscribers, hwm, strategy)
}

func runPruneDangling(ctx context.Context, s store.Env, _ config.QueueConfig) error {
	report, err := control.PruneDanglingMessages(ctx, s)
	if err != nil {
		return err
	}
	logger.L().Info("pruned dangling messages", "reclaimed", report.ReclaimedDangling)
	return nil
}

func runClearAll(ctx context.Context, s store.Env, _ config.QueueConfig) error {
	return control.ClearAllSubscribers(ctx, s)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: queuectl <initialize|prune-dangling|clear-all> <deployment.json>")
}
