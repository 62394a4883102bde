package usecase

import (
	"sort"
	"strings"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

// Tag category weights for scoring. Component matches say the most about relevance,
// vibe matches the least. Indexed data and golden outputs depend on these values.
const (
	weightComponent = 3.0
	weightContext   = 2.0
	weightStyle     = 1.5
	weightVibe      = 1.0
)

// DefaultMatchLimit is the number of results returned when no limit is given
const DefaultMatchLimit = 6

var categoryWeights = map[domain.TagCategory]float64{
	domain.TagComponent: weightComponent,
	domain.TagContext:   weightContext,
	domain.TagStyle:     weightStyle,
	domain.TagVibe:      weightVibe,
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	DefaultLimit       int
	EnableDebugLogging bool
}

// MatchingService ranks indexed candidates against a query tag set
type MatchingService struct {
	defaultLimit       int
	enableDebugLogging bool
	log                logger.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig, log logger.Logger) *MatchingService {
	limit := config.DefaultLimit
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &MatchingService{
		defaultLimit:       limit,
		enableDebugLogging: config.EnableDebugLogging,
		log:                log,
	}
}

// TopMatches scores every candidate, drops those without any overlap, sorts by
// descending score and keeps at most limit results. Equal scores keep catalog order.
// A limit of zero or less falls back to the service default.
func (s *MatchingService) TopMatches(query domain.TagSet, candidates []domain.Candidate, limit int) []domain.MatchResult {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	results := make([]domain.MatchResult, 0, len(candidates))
	for _, candidate := range candidates {
		score, matched := ScoreTags(query, candidate.Tags)

		if s.enableDebugLogging {
			s.log.Debug("scored candidate",
				logger.String("candidate", candidate.ID),
				logger.Float64("score", score))
		}

		if score <= 0 {
			continue
		}
		results = append(results, domain.MatchResult{
			Candidate: candidate,
			Score:     score,
			Matched:   domain.MatchedTags(matched),
			Note:      RelevanceNote(matched),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// ScoreTags computes the weighted overlap between a query and a candidate.
// The score is the sum over categories of weight × number of shared tags; it is not
// normalised, so a candidate carrying many tags in a heavy category can win on volume.
// Matched tags follow the candidate's own order.
func ScoreTags(query, candidate domain.TagSet) (float64, domain.TagSet) {
	var score float64
	var matched domain.TagSet

	for _, category := range domain.TagCategories {
		shared := findIntersection(query.Get(category), candidate.Get(category))
		matched.Set(category, shared)
		score += categoryWeights[category] * float64(len(shared))
	}

	return score, matched
}

// findIntersection returns the values of candidate that also appear in query,
// in candidate order and without duplicates. Never nil.
func findIntersection(query, candidate []string) []string {
	set := make(map[string]bool, len(query))
	for _, t := range query {
		set[t] = true
	}

	matched := []string{}
	seen := make(map[string]bool)
	for _, t := range candidate {
		if set[t] && !seen[t] {
			matched = append(matched, t)
			seen[t] = true
		}
	}
	return matched
}

// RelevanceNote turns a matched-tag breakdown into one readable sentence
func RelevanceNote(matched domain.TagSet) string {
	var parts []string

	if len(matched.Component) > 0 {
		parts = append(parts, "Shares "+strings.Join(matched.Component, ", ")+" components")
	}
	if len(matched.Style) > 0 {
		parts = append(parts, "similar "+strings.Join(matched.Style, ", ")+" style")
	}
	if len(matched.Context) > 0 {
		parts = append(parts, "same "+strings.Join(matched.Context, "/")+" context")
	}
	if len(matched.Vibe) > 0 {
		parts = append(parts, strings.Join(matched.Vibe, ", ")+" vibe")
	}

	if len(parts) == 0 {
		return "General relevance"
	}
	return strings.Join(parts, "; ")
}
