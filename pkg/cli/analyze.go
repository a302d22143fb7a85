package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unithon/tastemate/pkg/model"
	"github.com/unithon/tastemate/pkg/usecase/food"
	"github.com/unithon/tastemate/pkg/usecase/saved"
	"github.com/unithon/tastemate/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func analyzeCommand() *cli.Command {
	var (
		cfg        config
		input      food.AnalyzeInput
		save       bool
		restaurant string
		archivedID string
		format     string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "uid",
			Aliases:     []string{"u"},
			Usage:       "User ID whose allergies and diet are considered",
			Sources:     cli.EnvVars("TASTEMATE_UID"),
			Destination: (*string)(&input.UserID),
		},
		&cli.StringFlag{
			Name:        "food",
			Usage:       "Dish name in its original language",
			Destination: &input.FoodName,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "source-lang",
			Aliases:     []string{"s"},
			Usage:       "Likely cuisine country code of the dish (e.g. ES)",
			Destination: &input.SourceLanguage,
		},
		&cli.StringFlag{
			Name:        "target-lang",
			Aliases:     []string{"t"},
			Usage:       "Language of the analysis (e.g. KR)",
			Value:       "EN",
			Sources:     cli.EnvVars("TASTEMATE_TARGET_LANG"),
			Destination: &input.TargetLanguage,
		},
		&cli.BoolFlag{
			Name:        "save",
			Usage:       "Save the analysis to the user's saved foods",
			Destination: &save,
		},
		&cli.StringFlag{
			Name:        "restaurant",
			Usage:       "Restaurant name stored with a saved food",
			Destination: &restaurant,
		},
		&cli.StringFlag{
			Name:        "from-archive",
			Usage:       "Rebuild the analysis of this ID from the archived model response instead of asking the model",
			Destination: &archivedID,
		},
		formatFlag(&format),
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, archiveFlags(&cfg)...)

	return &cli.Command{
		Name:  "analyze",
		Usage: "Explain a dish considering the user's dietary constraints",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if save && input.UserID == "" {
				return goerr.New("--uid is required to save")
			}
			if archivedID != "" && cfg.archiveBucket == "" {
				return goerr.New("--archive-bucket is required to read from the archive")
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

			var opts []food.Option
			storage, err := cfg.newStorage(ctx)
			if err != nil {
				return err
			}
			if storage != nil {
				defer func() {
					if err := storage.Close(); err != nil {
						logging.From(ctx).Warn("failed to close storage", "error", err)
					}
				}()
				opts = append(opts, food.WithArchive(storage))
			}

			uc := food.New(repo, cfg.newGemini(), opts...)

			var analysis *model.FoodAnalysis
			if archivedID != "" {
				analysis, err = uc.Restore(ctx, model.AnalysisID(archivedID), input.FoodName)
			} else {
				analysis, err = uc.Analyze(ctx, input)
			}
			if err != nil {
				return goerr.Wrap(err, "failed to analyze food")
			}

			if save {
				if _, err := saved.New(repo).Save(ctx, input.UserID, saved.SaveInput{
					Analysis:       analysis,
					RestaurantName: restaurant,
				}); err != nil {
					return err
				}
			}

			return render(c.Root().Writer, format, analysis)
		},
	}
}
