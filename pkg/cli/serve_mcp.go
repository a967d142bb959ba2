package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/service/mcp"
	"github.com/m-mizutani/mnemo/pkg/service/recall"
	"github.com/m-mizutani/mnemo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func serveMCPCommand() *cli.Command {
	var (
		cfg       config
		recallTTL int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "recall-ttl",
			Usage:       "TTL of stashed tool results in seconds",
			Value:       1800,
			Sources:     cli.EnvVars("MNEMO_RECALL_TTL"),
			Destination: &recallTTL,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, telemetryFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve-mcp",
		Usage: "Serve memory tools over MCP on stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			svc, err := cfg.newService(ctx, repo)
			if err != nil {
				return err
			}

			store := recall.New(recall.WithTTL(time.Duration(recallTTL) * time.Second))
			store.Start(ctx)
			defer store.Stop()

			logging.From(ctx).Info("starting MCP server", "recall_ttl_sec", recallTTL)

			if err := mcp.New(svc, store).Run(ctx); err != nil {
				return goerr.Wrap(err, "MCP server exited")
			}
			return nil
		},
	}
}
