package cli

import (
	"context"

	"github.com/unithon/tastemate/pkg/model"
	"github.com/unithon/tastemate/pkg/usecase/saved"
	"github.com/unithon/tastemate/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func savedCommand() *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "Manage foods saved by a user",
		Commands: []*cli.Command{
			savedListCommand(),
			savedDeleteCommand(),
		},
	}
}

func uidFlag(uid *model.UserID) cli.Flag {
	return &cli.StringFlag{
		Name:        "uid",
		Aliases:     []string{"u"},
		Usage:       "User ID",
		Sources:     cli.EnvVars("TASTEMATE_UID"),
		Destination: (*string)(uid),
		Required:    true,
	}
}

func savedListCommand() *cli.Command {
	var (
		cfg    config
		uid    model.UserID
		format string
	)

	flags := []cli.Flag{uidFlag(&uid), formatFlag(&format)}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List saved foods, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.From(ctx).Warn("failed to close repository", "error", err)
				}
			}()

			foods, err := saved.New(repo).List(ctx, uid)
			if err != nil {
				return err
			}
			return render(c.Root().Writer, format, foods)
		},
	}
}

func savedDeleteCommand() *cli.Command {
	var (
		cfg    config
		uid    model.UserID
		ids    []string
		format string
	)

	flags := []cli.Flag{
		uidFlag(&uid),
		&cli.StringSliceFlag{
			Name:        "id",
			Usage:       "Saved food ID to delete (repeatable)",
			Destination: &ids,
			Required:    true,
		},
		formatFlag(&format),
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "delete",
		Usage: "Delete saved foods",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.From(ctx).Warn("failed to close repository", "error", err)
				}
			}()

			foodIDs := make([]model.SavedFoodID, len(ids))
			for i, id := range ids {
				foodIDs[i] = model.SavedFoodID(id)
			}

			result, err := saved.New(repo).Delete(ctx, uid, foodIDs)
			if err != nil {
				return err
			}
			return render(c.Root().Writer, format, result)
		},
	}
}
