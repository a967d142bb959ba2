package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "mnemo",
		Usage: "User memory retention engine for conversational agents",
		Commands: []*cli.Command{
			showCommand(),
			contextCommand(),
			addCommand(),
			cleanupCommand(),
			forgetCommand(),
			exportCommand(),
			importCommand(),
			serveMCPCommand(),
			consoleCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
