package cli

import (
	"context"

	"github.com/unithon/tastemate/pkg/usecase/greeting"
	"github.com/urfave/cli/v3"
)

func helloCommand() *cli.Command {
	var (
		cfg  config
		name string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "Name to introduce to Gemini",
			Sources:     cli.EnvVars("TASTEMATE_NAME"),
			Destination: &name,
			Required:    true,
		},
	}
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "hello",
		Usage: "Greet Gemini and print the reply",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc := greeting.New(cfg.newGemini(), greeting.WithOutput(c.Root().Writer))
			_, err := uc.Hello(ctx, name)
			return err
		},
	}
}
