package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
)

func cleanupCommand() *cli.Command {
	var (
		cfg      config
		userID   string
		allUsers bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to clean up",
			Sources:     cli.EnvVars("MNEMO_USER_ID"),
			Destination: &userID,
		},
		&cli.BoolFlag{
			Name:        "all",
			Aliases:     []string{"a"},
			Usage:       "Clean up all users",
			Destination: &allUsers,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, telemetryFlags(&cfg)...)

	return &cli.Command{
		Name:  "cleanup",
		Usage: "Expire, cap and trim stored memory facts",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			if userID == "" && !allUsers {
				return goerr.New("either --user-id or --all is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			svc, err := cfg.newService(ctx, repo)
			if err != nil {
				return err
			}

			userIDs := []string{userID}
			if allUsers {
				userIDs, err = repo.ListUserIDs(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to list users")
				}
			}

			for _, id := range userIDs {
				result := svc.Cleanup(ctx, id)
				if result == nil {
					fmt.Fprintf(c.Root().Writer, "%s: cleanup failed (see logs)\n", id)
					continue
				}
				printCleanupResult(c, id, result)
			}
			return nil
		},
	}
}

func printCleanupResult(c *cli.Command, userID string, r *memory.CleanupResult) {
	fmt.Fprintf(c.Root().Writer,
		"%s: kept=%d expired=%d capped=%d trimmed=%d tokens=%d\n",
		userID, r.Kept, r.Expired, r.Capped, r.Trimmed, r.TokenUsage)
}
