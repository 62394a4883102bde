package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tastelens/backend/internal/bootstrap"
	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/usecase"
)

func newMatchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match IMAGE...",
		Short: "Rank indexed references against one or more images",
		Long:  `match accepts local image files or http(s) image URLs, but not a mix of both.`,
		Example: `  tastectl match screenshot.png
  tastectl match https://example.com/a.png https://example.com/b.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), needs{gemini: true}, func(ctx context.Context, app *bootstrap.App) error {
				resp, err := matchArgs(ctx, app.Matching, args)
				if err != nil {
					return err
				}
				renderMatches(c.out, resp)
				return nil
			})
		},
	}
	return cmd
}

func isURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

func matchArgs(ctx context.Context, matcher *usecase.MatchService, args []string) (*usecase.MatchResponse, error) {
	var urls, paths []string
	for _, arg := range args {
		if isURL(arg) {
			urls = append(urls, arg)
		} else {
			paths = append(paths, arg)
		}
	}
	if len(urls) > 0 && len(paths) > 0 {
		return nil, fmt.Errorf("%w: pass either files or URLs, not both", domain.ErrInvalidRequest)
	}
	if len(urls) > 0 {
		return matcher.MatchImageURLs(ctx, urls)
	}

	images, err := readImages(paths)
	if err != nil {
		return nil, err
	}
	return matcher.MatchImages(ctx, images)
}

func readImages(paths []string) ([]domain.Image, error) {
	images := make([]domain.Image, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		mimeType := http.DetectContentType(data)
		if !strings.HasPrefix(mimeType, "image/") {
			return nil, fmt.Errorf("%w: %s is not an image (%s)", domain.ErrInvalidRequest, p, mimeType)
		}
		images = append(images, domain.Image{Data: data, MIMEType: mimeType})
	}
	return images, nil
}
