package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/urfave/cli/v3"
)

func forgetCommand() *cli.Command {
	var (
		cfg    config
		userID string
		factID string
		all    bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to forget facts for",
			Sources:     cli.EnvVars("MNEMO_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "fact-id",
			Aliases:     []string{"f"},
			Usage:       "Fact ID to delete",
			Destination: &factID,
		},
		&cli.BoolFlag{
			Name:        "all",
			Aliases:     []string{"a"},
			Usage:       "Delete all stored memory for the user",
			Destination: &all,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "forget",
		Usage: "Delete a stored fact, or all memory of a user",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			if factID == "" && !all {
				return goerr.New("either --fact-id or --all is required")
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

			if all {
				if err := svc.Clear(ctx, userID); err != nil {
					return goerr.Wrap(err, "failed to clear memory")
				}
				fmt.Fprintf(c.Root().Writer, "Cleared all memory for %s\n", userID)
				return nil
			}

			if err := svc.Delete(ctx, userID, model.FactID(factID)); err != nil {
				return goerr.Wrap(err, "failed to delete fact")
			}
			fmt.Fprintf(c.Root().Writer, "Deleted fact %s\n", factID)
			return nil
		},
	}
}
