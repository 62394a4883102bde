package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tastelens/backend/internal/bootstrap"
)

func newClassifyCmd(c *cli) *cobra.Command {
	var (
		channel string
		apply   bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Route a channel's blocks into category channels",
		Long: `classify runs the rule-based classifier over every block of a channel.
Without --apply nothing is written; the decisions are only reported.`,
		Example: `  tastectl classify --channel=inbox --dry-run
  tastectl classify --channel=inbox --apply`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireChannel(channel); err != nil {
				return err
			}
			return c.run(cmd.Context(), needs{arena: true}, func(ctx context.Context, app *bootstrap.App) error {
				report, err := app.Classification.ClassifyChannel(ctx, channel, apply && !dryRun)
				if err != nil {
					return err
				}
				renderClassification(c.out, report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "channel slug to classify")
	cmd.Flags().BoolVar(&apply, "apply", false, "connect blocks and write suggested labels")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report decisions without writing (default)")
	cmd.MarkFlagsMutuallyExclusive("apply", "dry-run")
	return cmd
}
