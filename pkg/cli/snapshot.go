package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/urfave/cli/v3"
)

func exportCommand() *cli.Command {
	var (
		cfg    config
		userID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to export",
			Sources:     cli.EnvVars("MNEMO_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export user memory to a Cloud Storage snapshot",
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

			storage, err := cfg.newSnapshotStorage(ctx)
			if err != nil {
				return err
			}

			mem, err := svc.Get(ctx, userID)
			if err != nil {
				return goerr.Wrap(err, "failed to get memory")
			}

			w, err := storage.Put(ctx, userID)
			if err != nil {
				return goerr.Wrap(err, "failed to open snapshot writer")
			}

			if err := json.NewEncoder(w).Encode(mem); err != nil {
				_ = w.Close()
				return goerr.Wrap(err, "failed to write snapshot")
			}
			if err := w.Close(); err != nil {
				return goerr.Wrap(err, "failed to finalize snapshot")
			}

			fmt.Fprintf(c.Root().Writer, "Exported %d fact(s) for %s\n", len(mem.Facts), userID)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	var (
		cfg    config
		userID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to import",
			Sources:     cli.EnvVars("MNEMO_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)

	return &cli.Command{
		Name:  "import",
		Usage: "Restore user memory from a Cloud Storage snapshot",
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

			storage, err := cfg.newSnapshotStorage(ctx)
			if err != nil {
				return err
			}

			r, err := storage.Get(ctx, userID)
			if err != nil {
				return goerr.Wrap(err, "failed to open snapshot reader")
			}
			defer r.Close()

			var mem model.UserMemory
			if err := json.NewDecoder(r).Decode(&mem); err != nil {
				return goerr.Wrap(err, "failed to decode snapshot")
			}

			if err := svc.Save(ctx, userID, mem.Facts, mem.LanguagePreference); err != nil {
				return goerr.Wrap(err, "failed to restore memory")
			}

			fmt.Fprintf(c.Root().Writer, "Imported %d fact(s) for %s\n", len(mem.Facts), userID)
			return nil
		},
	}
}
