package cli

import (
	"context"
	"io"

	"github.com/unithon/tastemate/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

type runConfig struct {
	writer    io.Writer
	errWriter io.Writer
}

// Option is a functional option for Run
type Option func(*runConfig)

// WithWriter sets where command output goes, os.Stdout by default
func WithWriter(w io.Writer) Option {
	return func(cfg *runConfig) {
		cfg.writer = w
	}
}

// WithErrWriter sets where logs go, os.Stderr by default
func WithErrWriter(w io.Writer) Option {
	return func(cfg *runConfig) {
		cfg.errWriter = w
	}
}

func Run(ctx context.Context, argv []string, opts ...Option) *Error {
	var (
		logLevel  string
		logFormat string
		rc        runConfig
	)
	for _, opt := range opts {
		opt(&rc)
	}

	cmd := &cli.Command{
		Name:      "tastemate",
		Usage:     "Gemini powered food guide for travelers",
		Writer:    rc.writer,
		ErrWriter: rc.errWriter,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Usage:       "Log level (debug, info, warn, error)",
				Value:       "info",
				Sources:     cli.EnvVars("TASTEMATE_LOG_LEVEL"),
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "Log format (console, json)",
				Value:       "console",
				Sources:     cli.EnvVars("TASTEMATE_LOG_FORMAT"),
				Destination: &logFormat,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger := logging.New(logLevel, c.Root().ErrWriter, logging.WithFormat(logFormat))
			logging.SetDefault(logger)
			return logging.With(ctx, logger), nil
		},
		Commands: []*cli.Command{
			helloCommand(),
			profileCommand(),
			analyzeCommand(),
			savedCommand(),
			rankingCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.From(ctx).Error("command failed", "error", err)
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
