package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

// DefaultConcurrency bounds in-flight items per batch. Clients throttle the actual call rate.
const DefaultConcurrency = 4

// IndexingConfig holds configuration for the indexing service
type IndexingConfig struct {
	Concurrency int
}

// IndexingService tags every image block of a channel and stores it as a match candidate
type IndexingService struct {
	arena       domain.ArenaClient
	model       domain.ModelClient
	store       domain.IndexRepository
	recorder    Recorder
	log         logger.Logger
	concurrency int
	now         func() time.Time
}

// NewIndexingService creates a new indexing service with dependencies
func NewIndexingService(
	arena domain.ArenaClient,
	model domain.ModelClient,
	store domain.IndexRepository,
	recorder Recorder,
	config IndexingConfig,
	log logger.Logger,
) *IndexingService {
	if log == nil {
		log = logger.NewNop()
	}
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &IndexingService{
		arena:       arena,
		model:       model,
		store:       store,
		recorder:    recorderOrNop(recorder),
		log:         log,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// IndexChannel indexes a channel into the collection of the same name.
// Blocks without an image are skipped, as are blocks already indexed unless force is set.
// Per-item failures are logged and tallied; progress made before a failure is kept.
func (s *IndexingService) IndexChannel(ctx context.Context, channelSlug string, force bool) (domain.BatchReport, error) {
	if channelSlug == "" {
		return domain.BatchReport{}, fmt.Errorf("%w: channel is required", domain.ErrInvalidRequest)
	}

	blocks, err := s.arena.ListChannelContents(ctx, channelSlug)
	if err != nil {
		return domain.BatchReport{}, fmt.Errorf("list %s: %w", channelSlug, err)
	}

	indexed := make(map[string]bool)
	if !force {
		ids, err := s.store.ListIDs(ctx, channelSlug)
		if err != nil {
			return domain.BatchReport{}, fmt.Errorf("read index %s: %w", channelSlug, err)
		}
		for _, id := range ids {
			indexed[id] = true
		}
	}

	log := s.log.With(logger.String("channel", channelSlug))
	log.Info("Indexing channel", logger.Int("blocks", len(blocks)), logger.Bool("force", force))

	var mu sync.Mutex
	t := newTally(JobIndex, s.recorder)
	record := func(outcome string) {
		mu.Lock()
		defer mu.Unlock()
		t.add(outcome)
		done := t.report.Processed + t.report.Failed + t.report.Skipped
		log.Debug("Index progress",
			logger.Int("done", done),
			logger.Int("total", len(blocks)),
			logger.Int("processed", t.report.Processed),
			logger.Int("failed", t.report.Failed),
			logger.Int("skipped", t.report.Skipped),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, block := range blocks {
		id := strconv.FormatInt(block.ID, 10)
		if block.ImageURL == "" || indexed[id] {
			record(outcomeSkipped)
			continue
		}

		g.Go(func() error {
			if err := s.indexBlock(gctx, channelSlug, block); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				log.Warn("Failed to index block", logger.Int64("block", block.ID), logger.Error(err))
				record(outcomeFailed)
				return nil
			}
			record(outcomeProcessed)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return t.report, err
	}

	log.Info("Indexing complete",
		logger.Int("processed", t.report.Processed),
		logger.Int("failed", t.report.Failed),
		logger.Int("skipped", t.report.Skipped),
	)
	return t.report, nil
}

func (s *IndexingService) indexBlock(ctx context.Context, channelSlug string, block domain.Block) error {
	img, err := s.model.FetchImage(ctx, block.ImageURL)
	if err != nil {
		return fmt.Errorf("fetch image: %w", err)
	}

	out, err := extractTags(ctx, s.model, img)
	if err != nil {
		return err
	}

	candidate := &domain.Candidate{
		ID:          strconv.FormatInt(block.ID, 10),
		Tags:        out.Tags,
		Title:       block.Title,
		ImageURL:    block.ImageURL,
		Description: out.Description,
		Channel:     channelSlug,
		IndexedAt:   s.now().UTC(),
	}
	return s.store.SaveCandidate(ctx, channelSlug, candidate)
}
