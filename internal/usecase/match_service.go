package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

// DefaultMultiImageLimit is the result count when a query combines several images
const DefaultMultiImageLimit = 8

// MatchServiceConfig holds configuration for the match service
type MatchServiceConfig struct {
	DefaultLimit    int
	MultiImageLimit int
	CacheTTL        time.Duration
	// Collections to match against; empty means every indexed collection
	Collections []string
}

// QueryImage is one image of a match query
type QueryImage struct {
	Tags        domain.TagSet `json:"tags"`
	Description string        `json:"description,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// MatchResponse is the ranked answer to a match query
type MatchResponse struct {
	Query   domain.TagSet        `json:"query"`
	Images  []QueryImage         `json:"images"`
	Matches []domain.MatchResult `json:"matches"`
}

// MatchService tags query images and ranks indexed candidates against them
type MatchService struct {
	model    domain.ModelClient
	store    domain.IndexRepository
	cache    domain.CacheRepository
	matcher  *MatchingService
	recorder Recorder
	log      logger.Logger

	multiImageLimit int
	cacheTTL        time.Duration
	collections     []string
}

// NewMatchService creates a new match service with dependencies
func NewMatchService(
	model domain.ModelClient,
	store domain.IndexRepository,
	cache domain.CacheRepository,
	recorder Recorder,
	config MatchServiceConfig,
	log logger.Logger,
) *MatchService {
	if log == nil {
		log = logger.NewNop()
	}
	multi := config.MultiImageLimit
	if multi <= 0 {
		multi = DefaultMultiImageLimit
	}
	ttl := config.CacheTTL
	if ttl == 0 {
		ttl = 720 * time.Hour
	}

	return &MatchService{
		model:           model,
		store:           store,
		cache:           cache,
		matcher:         NewMatchingService(MatchConfig{DefaultLimit: config.DefaultLimit}, log),
		recorder:        recorderOrNop(recorder),
		log:             log,
		multiImageLimit: multi,
		cacheTTL:        ttl,
		collections:     config.Collections,
	}
}

// MatchImage ranks candidates against a single query image
func (s *MatchService) MatchImage(ctx context.Context, image domain.Image) (*MatchResponse, error) {
	return s.MatchImages(ctx, []domain.Image{image})
}

// MatchImageURLs downloads each image and ranks candidates against all of them
func (s *MatchService) MatchImageURLs(ctx context.Context, urls []string) (*MatchResponse, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", domain.ErrInvalidRequest)
	}

	images := make([]domain.Image, len(urls))
	for i, u := range urls {
		img, err := s.model.FetchImage(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", u, err)
		}
		images[i] = *img
	}
	return s.MatchImages(ctx, images)
}

// MatchImages tags every image, unions the tags, and ranks candidates against the union.
// Images whose tagging fails are reported and left out; the query fails only when none
// could be tagged.
func (s *MatchService) MatchImages(ctx context.Context, images []domain.Image) (resp *MatchResponse, err error) {
	start := time.Now()
	defer func() { s.recorder.RecordMatch(err, time.Since(start)) }()

	if len(images) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", domain.ErrInvalidRequest)
	}

	queries := make([]QueryImage, len(images))
	errs := make([]error, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)
	for i := range images {
		g.Go(func() error {
			out, err := s.tagsFor(gctx, &images[i])
			if err != nil {
				errs[i] = err
				queries[i].Error = err.Error()
				return nil
			}
			queries[i] = QueryImage{Tags: out.Tags, Description: out.Description}
			return nil
		})
	}
	_ = g.Wait()

	var query domain.TagSet
	var tagged int
	for i, q := range queries {
		if errs[i] != nil {
			s.log.Warn("Failed to tag query image", logger.Int("image", i), logger.Error(errs[i]))
			continue
		}
		query = query.Merge(q.Tags)
		tagged++
	}
	if tagged == 0 {
		return nil, errors.Join(errs...)
	}

	candidates, err := s.loadCandidates(ctx)
	if err != nil {
		return nil, err
	}

	limit := 0
	if len(images) > 1 {
		limit = s.multiImageLimit
	}

	return &MatchResponse{
		Query:   query,
		Images:  queries,
		Matches: s.matcher.TopMatches(query, candidates, limit),
	}, nil
}

// tagsFor returns the tags of an image, consulting the cache by content hash first
func (s *MatchService) tagsFor(ctx context.Context, img *domain.Image) (domain.TagOutput, error) {
	key := imageCacheKey(img.Data)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var out domain.TagOutput
			if decodeCached(cached, &out) == nil {
				return out, nil
			}
		}
	}

	out, err := extractTags(ctx, s.model, img)
	if err != nil {
		return domain.TagOutput{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, s.cacheTTL); err != nil {
			s.log.Warn("Failed to cache image tags", logger.Error(err))
		}
	}
	return out, nil
}

func (s *MatchService) loadCandidates(ctx context.Context) ([]domain.Candidate, error) {
	collections := s.collections
	if len(collections) == 0 {
		var err error
		collections, err = s.store.ListCollections(ctx)
		if err != nil {
			return nil, fmt.Errorf("list collections: %w", err)
		}
	}

	var all []domain.Candidate
	for _, c := range collections {
		candidates, err := s.store.LoadCandidates(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", c, err)
		}
		all = append(all, candidates...)
	}
	return all, nil
}

// imageCacheKey keys extracted tags by image content.
// Format: "tags:{sha256 hex}"
func imageCacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return "tags:" + hex.EncodeToString(sum[:])
}

// decodeCached converts a cached value back into v. Caches hand back either the
// stored value or its generic JSON form, so both go through a JSON round trip.
func decodeCached(value interface{}, v interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
