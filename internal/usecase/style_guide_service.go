package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

// StyleGuideService extracts style observations from a channel's images and aggregates
// them into a persisted style guide
type StyleGuideService struct {
	arena       domain.ArenaClient
	model       domain.ModelClient
	store       domain.IndexRepository
	recorder    Recorder
	log         logger.Logger
	concurrency int
}

// NewStyleGuideService creates a new style guide service with dependencies
func NewStyleGuideService(
	arena domain.ArenaClient,
	model domain.ModelClient,
	store domain.IndexRepository,
	recorder Recorder,
	concurrency int,
	log logger.Logger,
) *StyleGuideService {
	if log == nil {
		log = logger.NewNop()
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &StyleGuideService{
		arena:       arena,
		model:       model,
		store:       store,
		recorder:    recorderOrNop(recorder),
		log:         log,
		concurrency: concurrency,
	}
}

// BuildStyleGuide observes every image block of a channel, aggregates the observations
// and saves the guide under the channel slug. An observation is grouped under the
// context tags its block carries in the local index, if it has been indexed.
func (s *StyleGuideService) BuildStyleGuide(ctx context.Context, channelSlug string, antiPatterns []string) (*domain.AggregatedStyleGuide, domain.BatchReport, error) {
	if channelSlug == "" {
		return nil, domain.BatchReport{}, fmt.Errorf("%w: channel is required", domain.ErrInvalidRequest)
	}

	blocks, err := s.arena.ListChannelContents(ctx, channelSlug)
	if err != nil {
		return nil, domain.BatchReport{}, fmt.Errorf("list %s: %w", channelSlug, err)
	}

	log := s.log.With(logger.String("channel", channelSlug))
	log.Info("Building style guide", logger.Int("blocks", len(blocks)))

	var mu sync.Mutex
	t := newTally(JobStyleGuide, s.recorder)
	record := func(outcome string) {
		mu.Lock()
		defer mu.Unlock()
		t.add(outcome)
	}

	// slots keep observation order equal to channel order, which decides plurality ties
	slots := make([]*domain.StyleObservation, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, block := range blocks {
		if block.ImageURL == "" {
			record(outcomeSkipped)
			continue
		}
		g.Go(func() error {
			obs, err := s.observe(gctx, channelSlug, block)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				log.Warn("Failed to observe block", logger.Int64("block", block.ID), logger.Error(err))
				record(outcomeFailed)
				return nil
			}
			slots[i] = &obs
			record(outcomeProcessed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, t.report, err
	}

	observations := make([]domain.StyleObservation, 0, len(slots))
	for _, obs := range slots {
		if obs != nil {
			observations = append(observations, *obs)
		}
	}

	guide := AggregateStyles(observations, antiPatterns)
	if err := s.store.SaveStyleGuide(ctx, channelSlug, &guide); err != nil {
		return nil, t.report, fmt.Errorf("save style guide: %w", err)
	}

	log.Info("Style guide saved",
		logger.Int("samples", guide.SampleCount),
		logger.String("confidence", string(ConfidenceFor(guide.SampleCount).Tier)),
	)
	return &guide, t.report, nil
}

// GetStyleGuide returns the last saved guide of a channel
func (s *StyleGuideService) GetStyleGuide(ctx context.Context, channelSlug string) (*domain.AggregatedStyleGuide, error) {
	return s.store.GetStyleGuide(ctx, channelSlug)
}

func (s *StyleGuideService) observe(ctx context.Context, channelSlug string, block domain.Block) (domain.StyleObservation, error) {
	img, err := s.model.FetchImage(ctx, block.ImageURL)
	if err != nil {
		return domain.StyleObservation{}, fmt.Errorf("fetch image: %w", err)
	}

	obs, err := extractStyle(ctx, s.model, img)
	if err != nil {
		return domain.StyleObservation{}, err
	}

	obs.ItemID = strconv.FormatInt(block.ID, 10)
	if c, err := s.store.GetCandidate(ctx, channelSlug, obs.ItemID); err == nil {
		obs.Contexts = c.Tags.Context
	}
	return obs, nil
}
