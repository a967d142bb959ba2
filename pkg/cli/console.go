package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
)

func consoleCommand() *cli.Command {
	var (
		cfg    config
		userID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to operate on",
			Sources:     cli.EnvVars("MNEMO_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "console",
		Usage: "Interactive console for inspecting and editing user memory",
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

			rl, err := readline.New("mnemo> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Connected to memory of %s (type 'help' for commands)\n", userID)

			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					continue
				}
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read line")
				}

				if done, err := runConsoleLine(ctx, c, svc, userID, line); err != nil {
					fmt.Fprintf(c.Root().Writer, "Error: %s\n", err)
				} else if done {
					return nil
				}
			}
		},
	}
}

func runConsoleLine(ctx context.Context, c *cli.Command, svc *memory.Service, userID, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "help":
		fmt.Fprintln(c.Root().Writer, consoleHelp)

	case "facts":
		mem, err := svc.Get(ctx, userID)
		if err != nil {
			return false, err
		}
		if len(mem.Facts) == 0 {
			fmt.Fprintln(c.Root().Writer, "(no facts)")
			return false, nil
		}
		for _, f := range mem.Facts {
			fmt.Fprintf(c.Root().Writer, "[%s/%s] %s (id=%s, conf=%.2f, uses=%d)\n",
				f.Tier, f.Category, f.Content, f.ID, f.Confidence, f.UseCount)
		}

	case "context":
		text, err := svc.LoadForContext(ctx, userID)
		if err != nil {
			return false, err
		}
		if text == "" {
			text = "(no stored memory)"
		}
		fmt.Fprintln(c.Root().Writer, text)

	case "stats":
		mem, err := svc.Get(ctx, userID)
		if err != nil {
			return false, err
		}
		data, err := json.MarshalIndent(mem.Stats, "", "  ")
		if err != nil {
			return false, err
		}
		fmt.Fprintf(c.Root().Writer, "%s\n", string(data))

	case "add":
		if len(fields) < 4 {
			return false, goerr.New("usage: add <tier> <category> <content...>")
		}
		input := model.FactInput{
			Content:    strings.Join(fields[3:], " "),
			Category:   model.Category(fields[2]),
			Tier:       model.Tier(fields[1]),
			Confidence: 1.0,
		}
		if err := input.Validate(); err != nil {
			return false, err
		}
		if err := svc.AddFacts(ctx, userID, []model.FactInput{input}, nil); err != nil {
			return false, err
		}
		fmt.Fprintln(c.Root().Writer, "Added")

	case "delete":
		if len(fields) != 2 {
			return false, goerr.New("usage: delete <fact-id>")
		}
		if err := svc.Delete(ctx, userID, model.FactID(fields[1])); err != nil {
			return false, err
		}
		fmt.Fprintln(c.Root().Writer, "Deleted")

	case "cleanup":
		result := svc.Cleanup(ctx, userID)
		if result == nil {
			return false, goerr.New("cleanup failed (see logs)")
		}
		printCleanupResult(c, userID, result)

	case "clear":
		if err := svc.Clear(ctx, userID); err != nil {
			return false, err
		}
		fmt.Fprintln(c.Root().Writer, "Cleared")

	case "exit", "quit":
		return true, nil

	default:
		fmt.Fprintf(c.Root().Writer, "Unknown command: %s (type 'help')\n", fields[0])
	}

	return false, nil
}

const consoleHelp = `Commands:
  facts              List stored facts
  context            Render the prompt context block
  stats              Show memory stats
  add <tier> <category> <content...>
                     Store a fact directly
  delete <fact-id>   Delete a fact
  cleanup            Run retention cleanup
  clear              Delete all memory of the user
  exit               Leave the console`
