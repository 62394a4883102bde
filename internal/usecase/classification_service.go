package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

// ClassificationServiceConfig holds configuration for the classification service
type ClassificationServiceConfig struct {
	Concurrency int
	// CanonicalChannels are user channels, besides the known categories, that count
	// as already organized
	CanonicalChannels []string
}

// BlockOutcome is the classification of one block and what happened when applying it
type BlockOutcome struct {
	Block    domain.Block                  `json:"block"`
	Decision domain.ClassificationDecision `json:"decision"`
	Applied  []domain.ChannelRef           `json:"applied,omitempty"`
	Labeled  bool                          `json:"labeled,omitempty"`
	Error    string                        `json:"error,omitempty"`
}

// ClassificationReport is the result of classifying one channel
type ClassificationReport struct {
	Channel  string             `json:"channel"`
	Applied  bool               `json:"applied"`
	Outcomes []BlockOutcome     `json:"outcomes"`
	Summary  domain.BatchReport `json:"summary"`
}

// ClassificationService runs the rule-based classifier over a channel and optionally
// applies the decisions by connecting blocks and writing suggested labels
type ClassificationService struct {
	arena      domain.ArenaClient
	metadata   domain.MetadataFetcher
	classifier *Classifier
	directory  *ChannelDirectory
	organized  OrganizedPredicate
	recorder   Recorder
	log        logger.Logger

	concurrency int
}

// NewClassificationService creates a new classification service with dependencies.
// metadata may be nil, in which case link titles are never looked up.
func NewClassificationService(
	arena domain.ArenaClient,
	metadata domain.MetadataFetcher,
	classifier *Classifier,
	directory *ChannelDirectory,
	recorder Recorder,
	config ClassificationServiceConfig,
	log logger.Logger,
) *ClassificationService {
	if log == nil {
		log = logger.NewNop()
	}
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &ClassificationService{
		arena:       arena,
		metadata:    metadata,
		classifier:  classifier,
		directory:   directory,
		organized:   CanonicalTargets(ManagedTargets(config.CanonicalChannels)),
		recorder:    recorderOrNop(recorder),
		log:         log,
		concurrency: concurrency,
	}
}

// IsOrganized reports whether a block already lives in a managed channel
func (s *ClassificationService) IsOrganized(block domain.Block) bool {
	return s.organized(block)
}

// ClassifyChannel classifies every block of a channel. With apply false it is a dry run
// that only reports decisions. Already-applied connections stay applied when a later
// block fails.
func (s *ClassificationService) ClassifyChannel(ctx context.Context, channelSlug string, apply bool) (*ClassificationReport, error) {
	if channelSlug == "" {
		return nil, fmt.Errorf("%w: channel is required", domain.ErrInvalidRequest)
	}

	blocks, err := s.arena.ListChannelContents(ctx, channelSlug)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", channelSlug, err)
	}

	log := s.log.With(logger.String("channel", channelSlug), logger.Bool("apply", apply))
	log.Info("Classifying channel", logger.Int("blocks", len(blocks)))

	outcomes := make([]BlockOutcome, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, block := range blocks {
		g.Go(func() error {
			outcomes[i] = s.classifyBlock(gctx, block, apply)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &ClassificationReport{Channel: channelSlug, Applied: apply, Outcomes: outcomes}
	t := newTally(JobClassify, s.recorder)
	for _, o := range outcomes {
		switch {
		case o.Error != "":
			t.add(outcomeFailed)
		case !o.Decision.HasDestinations() && o.Decision.SuggestedLabel == "":
			t.add(outcomeSkipped)
		default:
			t.add(outcomeProcessed)
		}
	}
	report.Summary = t.report

	log.Info("Classification complete",
		logger.Int("processed", report.Summary.Processed),
		logger.Int("failed", report.Summary.Failed),
		logger.Int("skipped", report.Summary.Skipped),
	)
	return report, nil
}

// ClassifyBlock decides where one block belongs without applying anything
func (s *ClassificationService) ClassifyBlock(ctx context.Context, block domain.Block) (domain.ClassificationDecision, error) {
	block, err := s.enrich(ctx, block)
	if err != nil {
		return domain.ClassificationDecision{}, err
	}
	return s.classifier.Classify(block, s.organized), nil
}

func (s *ClassificationService) classifyBlock(ctx context.Context, block domain.Block, apply bool) BlockOutcome {
	outcome := BlockOutcome{Block: block}

	decision, err := s.ClassifyBlock(ctx, block)
	if err != nil {
		s.log.Warn("Failed to classify block", logger.Int64("block", block.ID), logger.Error(err))
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Decision = decision

	if !apply {
		return outcome
	}

	var errs []error
	for _, dest := range decision.Destinations {
		ref, err := s.directory.Resolve(ctx, dest, true)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.arena.Connect(ctx, ref.Slug, block.ID); err != nil {
			errs = append(errs, fmt.Errorf("connect to %s: %w", ref.Slug, err))
			continue
		}
		outcome.Applied = append(outcome.Applied, ref)
	}

	if decision.SuggestedLabel != "" {
		if err := s.arena.UpdateBlockDescription(ctx, block.ID, decision.SuggestedLabel); err != nil {
			errs = append(errs, fmt.Errorf("label: %w", err))
		} else {
			outcome.Labeled = true
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.log.Warn("Failed to apply classification", logger.Int64("block", block.ID), logger.Error(err))
		outcome.Error = err.Error()
	}
	return outcome
}

// enrich fills in the block's known connections, unless already present. Links missing
// a source title or a description get them from the page. A failed page fetch is not an error.
func (s *ClassificationService) enrich(ctx context.Context, block domain.Block) (domain.Block, error) {
	if block.Connections == nil {
		conns, err := s.arena.BlockChannels(ctx, block.ID)
		if err != nil {
			return block, fmt.Errorf("connections of %d: %w", block.ID, err)
		}
		block.Connections = conns
	}

	needsTitle := block.SourceTitle() == ""
	needsDescription := strings.TrimSpace(block.Description) == ""
	if s.metadata == nil || block.SourceURL() == "" || (!needsTitle && !needsDescription) {
		return block, nil
	}

	meta, err := s.metadata.Fetch(ctx, block.SourceURL())
	if err != nil {
		s.log.Debug("Page metadata unavailable",
			logger.String("url", block.SourceURL()),
			logger.Error(err),
		)
		return block, nil
	}

	if needsTitle {
		src := *block.Source
		src.Title = meta.Title
		block.Source = &src
	}
	if needsDescription {
		block.Description = strings.TrimSpace(meta.Description)
	}
	return block, nil
}
