package usecase

import (
	"context"
	"fmt"

	"github.com/tastelens/backend/internal/domain"
)

// extractTags asks the model to tag one image. Unparseable output comes back as an
// error wrapping domain.ErrUnparseableOutput so callers route it to the failed tally.
func extractTags(ctx context.Context, model domain.ModelClient, img *domain.Image) (domain.TagOutput, error) {
	text, err := model.Generate(ctx, domain.TagPrompt(), img)
	if err != nil {
		return domain.TagOutput{}, err
	}

	switch out := domain.ParseTagOutput(text).(type) {
	case domain.Parsed[domain.TagOutput]:
		return out.Value, nil
	case domain.Unparseable:
		return domain.TagOutput{}, out.Err
	default:
		return domain.TagOutput{}, fmt.Errorf("%w: unexpected outcome %T", domain.ErrUnparseableOutput, out)
	}
}

// extractStyle asks the model for one style observation of an image
func extractStyle(ctx context.Context, model domain.ModelClient, img *domain.Image) (domain.StyleObservation, error) {
	text, err := model.Generate(ctx, domain.StylePrompt(), img)
	if err != nil {
		return domain.StyleObservation{}, err
	}

	switch out := domain.ParseStyleOutput(text).(type) {
	case domain.Parsed[domain.StyleObservation]:
		return out.Value, nil
	case domain.Unparseable:
		return domain.StyleObservation{}, out.Err
	default:
		return domain.StyleObservation{}, fmt.Errorf("%w: unexpected outcome %T", domain.ErrUnparseableOutput, out)
	}
}
