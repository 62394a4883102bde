package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tastelens/backend/internal/bootstrap"
)

func newStyleGuideCmd(c *cli) *cobra.Command {
	var (
		channel      string
		antiPatterns []string
	)

	cmd := &cobra.Command{
		Use:     "styleguide",
		Short:   "Aggregate a channel's images into a style guide",
		Example: `  tastectl styleguide --channel=moodboard --anti-pattern="neon gradients"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireChannel(channel); err != nil {
				return err
			}
			return c.run(cmd.Context(), needs{arena: true, gemini: true}, func(ctx context.Context, app *bootstrap.App) error {
				guide, report, err := app.StyleGuides.BuildStyleGuide(ctx, channel, antiPatterns)
				if err != nil {
					return err
				}
				renderBatchReport(c.out, "styleguide "+channel, report)
				renderStyleGuide(c.out, guide)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "channel slug to aggregate")
	cmd.Flags().StringSliceVar(&antiPatterns, "anti-pattern", nil, "things the guide should avoid (repeatable)")
	return cmd
}
