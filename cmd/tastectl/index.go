package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tastelens/backend/internal/bootstrap"
)

func newIndexCmd(c *cli) *cobra.Command {
	var (
		channel string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Tag every image of a channel and store it for matching",
		Example: `  # Index new items of a channel
  tastectl index --channel=ui-references

  # Re-tag everything
  tastectl index --channel=ui-references --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireChannel(channel); err != nil {
				return err
			}
			return c.run(cmd.Context(), needs{arena: true, gemini: true}, func(ctx context.Context, app *bootstrap.App) error {
				report, err := app.Indexing.IndexChannel(ctx, channel, force)
				if err != nil {
					return err
				}
				renderBatchReport(c.out, "index "+channel, report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "channel slug to index")
	cmd.Flags().BoolVar(&force, "force", false, "re-index items that are already indexed")
	return cmd
}
