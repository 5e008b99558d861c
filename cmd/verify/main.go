package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/matchboard/internal/verify"
	"github.com/okian/matchboard/pkg/logger"
	"github.com/urfave/cli/v3"
)

func run(ctx context.Context, cmd *cli.Command) error {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if cmd.Bool("verbose") {
		_ = logger.SetLevelString("debug")
	}

	rep, err := verify.Run(ctx, verify.Config{
		BaseURL: cmd.String("url"),
		Timeout: cmd.Duration("timeout"),
		Output:  cmd.String("output"),
		Format:  cmd.String("format"),
		Logger:  logger.Named("verify"),
	})

	status := "PASS"
	if !rep.Passed {
		status = "FAIL"
	}
	fmt.Printf("%s  attendees=%d matches=%d outcomes=%d violations=%d warnings=%d\n",
		status, rep.Attendees, rep.Matches, rep.Outcomes, len(rep.Violations), len(rep.Warnings))
	for _, v := range rep.Violations {
		fmt.Println("  -", v)
	}
	return err //nolint:wrapcheck // reported by main
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:   "matchboard-verify",
		Usage:  "Check a running matchboard service for dataset and funnel consistency",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Base URL of the service",
				Value:   verify.DefaultBaseURL,
				Sources: cli.EnvVars("MATCHBOARD_URL"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "HTTP request timeout",
				Value: verify.DefaultTimeout,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to this file",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format: json or yaml (default: from the output extension)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		os.Stderr.WriteString("verify: " + err.Error() + "\n")
		os.Exit(1)
	}
}
