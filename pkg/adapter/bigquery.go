package adapter

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
)

// MaintenanceStats is one row of retention telemetry: what a single
// cleanup or add-facts pass did to a user's memory.
type MaintenanceStats struct {
	UserID            string    `bigquery:"user_id"`
	Operation         string    `bigquery:"operation"`
	Expired           int       `bigquery:"expired"`
	Capped            int       `bigquery:"capped"`
	Trimmed           int       `bigquery:"trimmed"`
	Kept              int       `bigquery:"kept"`
	DroppedDuplicates int       `bigquery:"dropped_duplicates"`
	TokenUsage        int       `bigquery:"token_usage"`
	Timestamp         time.Time `bigquery:"timestamp"`
}

// Telemetry receives retention maintenance counters. Implementations must
// be safe to call from request handling paths; callers log and ignore
// failures.
type Telemetry interface {
	InsertStats(ctx context.Context, stats *MaintenanceStats) error
}

type bigqueryTelemetry struct {
	inserter *bigquery.Inserter
}

// NewTelemetry creates a BigQuery-backed telemetry sink writing to the
// given dataset and table.
func NewTelemetry(ctx context.Context, projectID, datasetID, tableID string) (Telemetry, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client", goerr.V("project", projectID))
	}

	return &bigqueryTelemetry{
		inserter: client.Dataset(datasetID).Table(tableID).Inserter(),
	}, nil
}

func (t *bigqueryTelemetry) InsertStats(ctx context.Context, stats *MaintenanceStats) error {
	if stats.Timestamp.IsZero() {
		stats.Timestamp = time.Now()
	}

	if err := t.inserter.Put(ctx, stats); err != nil {
		return goerr.Wrap(err, "failed to insert maintenance stats", goerr.V("user_id", stats.UserID))
	}

	return nil
}
