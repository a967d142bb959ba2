package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func contextCommand() *cli.Command {
	var (
		cfg    config
		userID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to load context for",
			Sources:     cli.EnvVars("MNEMO_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "context",
		Usage: "Render the memory context block injected into agent prompts",
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

			text, err := svc.LoadForContext(ctx, userID)
			if err != nil {
				return goerr.Wrap(err, "failed to load context")
			}

			if text == "" {
				fmt.Fprintln(c.Root().Writer, "(no stored memory)")
				return nil
			}

			fmt.Fprintln(c.Root().Writer, text)
			return nil
		},
	}
}
