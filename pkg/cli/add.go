package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/usecase/extract"
	"github.com/urfave/cli/v3"
)

func addCommand() *cli.Command {
	var (
		cfg       config
		userID    string
		inputPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to store extracted facts for",
			Sources:     cli.EnvVars("MNEMO_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to conversation transcript (reads stdin if omitted)",
			Destination: &inputPath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "add",
		Usage: "Extract facts from a conversation and store them",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			conversation, err := readConversation(inputPath)
			if err != nil {
				return err
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

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " Extracting facts..."
			sp.Start()
			result, err := extract.New(gemini).Extract(ctx, conversation)
			sp.Stop()
			if err != nil {
				return goerr.Wrap(err, "failed to extract facts")
			}

			if len(result.Facts) == 0 && result.LanguagePreference == nil {
				fmt.Fprintln(c.Root().Writer, "No memorable facts found")
				return nil
			}

			if err := svc.AddFacts(ctx, userID, result.Facts, result.LanguagePreference); err != nil {
				return goerr.Wrap(err, "failed to store facts")
			}

			fmt.Fprintf(c.Root().Writer, "Stored %d fact(s)\n", len(result.Facts))
			if result.LanguagePreference != nil {
				fmt.Fprintf(c.Root().Writer, "Language preference: %s\n", *result.LanguagePreference)
			}
			return nil
		},
	}
}

func readConversation(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
	}
	return string(data), nil
}
