package cli

import (
	"context"

	"github.com/unithon/tastemate/pkg/usecase/ranking"
	"github.com/unithon/tastemate/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func rankingCommand() *cli.Command {
	var (
		cfg     config
		country string
		limit   int64
		format  string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "country",
			Aliases:     []string{"c"},
			Usage:       "Country code to rank dishes of (e.g. JP)",
			Destination: &country,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Number of dishes to show (at most 10)",
			Value:       ranking.DefaultLimit,
			Destination: &limit,
		},
		formatFlag(&format),
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "ranking",
		Usage: "Show the most searched dishes of a country",
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

			foods, err := ranking.New(repo).TopFoods(ctx, country, int(limit))
			if err != nil {
				return err
			}
			return render(c.Root().Writer, format, foods)
		},
	}
}
