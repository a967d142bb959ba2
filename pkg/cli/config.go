package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/adapter"
	"github.com/m-mizutani/mnemo/pkg/repository"
	"github.com/m-mizutani/mnemo/pkg/usecase/memory"
	"github.com/m-mizutani/mnemo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Repository
	project  string
	database string

	// Retention policy
	policyPath string

	// Logging
	logLevel string

	// Adapters
	geminiProject  string
	geminiLocation string
	geminiModel    string
	bucket         string
	bqDataset      string
	bqTable        string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to retention policy YAML file",
			Sources:     cli.EnvVars("MNEMO_POLICY"),
			Destination: &cfg.policyPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("MNEMO_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name for fact extraction",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// storageFlags returns flags for snapshot storage configuration
func storageFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bucket",
			Aliases:     []string{"b"},
			Usage:       "Cloud Storage bucket for memory snapshots",
			Sources:     cli.EnvVars("MNEMO_SNAPSHOT_BUCKET"),
			Destination: &cfg.bucket,
		},
	}
}

// telemetryFlags returns flags for BigQuery telemetry configuration
func telemetryFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bq-dataset",
			Usage:       "BigQuery dataset for maintenance telemetry",
			Sources:     cli.EnvVars("MNEMO_BQ_DATASET"),
			Destination: &cfg.bqDataset,
		},
		&cli.StringFlag{
			Name:        "bq-table",
			Usage:       "BigQuery table for maintenance telemetry",
			Value:       "maintenance_stats",
			Sources:     cli.EnvVars("MNEMO_BQ_TABLE"),
			Destination: &cfg.bqTable,
		},
	}
}

// loggerContext attaches a logger configured from the flags to the context
func (cfg *config) loggerContext(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (*repository.Firestore, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newService creates a memory service wired with the configured policy
// and optional BigQuery telemetry.
func (cfg *config) newService(ctx context.Context, repo repository.Repository) (*memory.Service, error) {
	var opts []memory.Option

	if cfg.policyPath != "" {
		policy, err := memory.LoadPolicy(cfg.policyPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load retention policy", goerr.V("path", cfg.policyPath))
		}
		opts = append(opts, memory.WithPolicy(policy))
	}

	if cfg.bqDataset != "" {
		telemetry, err := adapter.NewTelemetry(ctx, cfg.project, cfg.bqDataset, cfg.bqTable)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create telemetry")
		}
		opts = append(opts, memory.WithTelemetry(telemetry))
	}

	return memory.New(repo, opts...), nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	var opts []adapter.GeminiOption
	if cfg.geminiModel != "" {
		opts = append(opts, adapter.WithModel(cfg.geminiModel))
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
}

// newSnapshotStorage creates a new snapshot storage instance
func (cfg *config) newSnapshotStorage(ctx context.Context) (adapter.SnapshotStorage, error) {
	if cfg.bucket == "" {
		return nil, goerr.New("bucket is required")
	}

	storage, err := adapter.NewSnapshotStorage(ctx, cfg.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create snapshot storage")
	}
	return storage, nil
}
