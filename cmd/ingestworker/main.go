package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coderisk/ingestworker/internal/config"
	"github.com/coderisk/ingestworker/internal/logging"
	"github.com/coderisk/ingestworker/internal/orchestrator"
	"github.com/coderisk/ingestworker/internal/persist"
	"github.com/coderisk/ingestworker/internal/queue"
	"github.com/coderisk/ingestworker/internal/retry"
	"github.com/coderisk/ingestworker/internal/statusclient"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configPath string
	debug      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "ingestworker",
	Short:   "Consume ingestion jobs and build the code graph",
	Version: Version,
	RunE:    run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (optional)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug-level, human-readable logging")
	rootCmd.SetVersionTemplate("ingestworker {{.Version}} (" + GitCommit + ")\n")
}

func run(cmd *cobra.Command, args []string) error {
	logCfg := logging.DefaultConfig(debug)
	logCfg.OutputFile = ""
	if err := logging.Initialize(logCfg); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	logger := logging.With("component", "main")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to job queue", "addr", cfg.Queue.Addr)
	var consumer *queue.Consumer
	err = retry.Connect(ctx, func(ctx context.Context) error {
		c, connErr := queue.NewConsumer(ctx, cfg.Queue.Addr, cfg.Queue.Password, cfg.Queue.Key)
		if connErr != nil {
			return connErr
		}
		consumer = c
		return nil
	})
	if err != nil {
		return fmt.Errorf("connect to job queue: %w", err)
	}
	defer consumer.Close()
	logger.Info("connected to job queue")

	logger.Info("connecting to neo4j", "uri", cfg.Neo4j.URI)
	var persistor *persist.Persistor
	err = retry.Connect(ctx, func(ctx context.Context) error {
		p, connErr := persist.New(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, "", persist.DefaultConfig())
		if connErr != nil {
			return connErr
		}
		persistor = p
		return nil
	})
	if err != nil {
		return fmt.Errorf("connect to neo4j: %w", err)
	}
	defer persistor.Close(ctx)
	logger.Info("connected to neo4j")

	status := statusclient.New(cfg.StatusAPI.BaseURL)
	orch := orchestrator.New(persistor, status, cfg)

	logger.Info("worker ready, polling for jobs")
	for {
		job, err := consumer.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("shutting down")
				return nil
			}
			logger.Error("queue poll failed", "error", err)
			continue
		}

		logger.Info("processing job", "job_id", job.JobID, "repo_url", job.RepoURL)
		if err := orch.ProcessJob(ctx, job); err != nil {
			logger.Error("job processing failed", "job_id", job.JobID, "error", err)
			continue
		}
		logger.Info("job completed", "job_id", job.JobID)
	}
}
