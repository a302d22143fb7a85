package cli

import (
	"context"

	"github.com/unithon/tastemate/pkg/model"
	"github.com/unithon/tastemate/pkg/usecase/profile"
	"github.com/unithon/tastemate/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func profileCommand() *cli.Command {
	var (
		cfg    config
		uid    model.UserID
		format string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "uid",
			Aliases:     []string{"u"},
			Usage:       "User ID to look up",
			Value:       "DUMMY_user_01",
			Sources:     cli.EnvVars("TASTEMATE_UID"),
			Destination: (*string)(&uid),
		},
		formatFlag(&format),
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "profile",
		Usage: "Show the profile document of a user (null when unavailable)",
		Flags: flags,
		Commands: []*cli.Command{
			profileUpdateCommand(),
		},
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

			var out any
			if data := profile.New(repo).Get(ctx, uid); data != nil {
				out = data
			}
			return render(c.Root().Writer, format, out)
		},
	}
}

func profileUpdateCommand() *cli.Command {
	var (
		cfg          config
		uid          model.UserID
		displayName  string
		allergies    []string
		restrictions []string
		country      string
		format       string
	)

	flags := []cli.Flag{
		uidFlag(&uid),
		&cli.StringFlag{
			Name:        "display-name",
			Usage:       "Name shown to others",
			Destination: &displayName,
		},
		&cli.StringSliceFlag{
			Name:        "allergy",
			Usage:       "Allergen code such as PEANUT (repeatable, replaces the current list)",
			Destination: &allergies,
		},
		&cli.StringSliceFlag{
			Name:        "diet",
			Usage:       "Dietary restriction such as HALAL (repeatable, replaces the current list)",
			Destination: &restrictions,
		},
		&cli.StringFlag{
			Name:        "country",
			Usage:       "Country code of the current trip; empty clears it",
			Destination: &country,
		},
		formatFlag(&format),
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "update",
		Usage: "Change the display name, allergies, diet or travel country of a user",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var update model.ProfileUpdate
			if c.IsSet("display-name") {
				update.DisplayName = &displayName
			}
			if c.IsSet("allergy") {
				update.Allergies = allergies
			}
			if c.IsSet("diet") {
				update.DietaryRestrictions = restrictions
			}
			if c.IsSet("country") {
				update.CurrentCountry = &country
			}

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.From(ctx).Warn("failed to close repository", "error", err)
				}
			}()

			data, err := profile.New(repo).Update(ctx, uid, update)
			if err != nil {
				return err
			}
			return render(c.Root().Writer, format, data)
		},
	}
}
