package usecase

import (
	"math"

	"github.com/tastelens/backend/internal/domain"
)

// Sample-size thresholds for confidence tiers and context subgroups
const (
	highConfidenceSamples   = 15
	mediumConfidenceSamples = 8
	minContextSamples       = 3
)

// Motion defaults. Motion cannot be observed in still images.
const (
	motionDuration = "200ms"
	motionEasing   = "ease-out"
	motionHover    = "lift-on-hover"
)

var confidenceNotes = map[domain.ConfidenceTier]string{
	domain.ConfidenceHigh:   "Consistent pattern across a large sample; safe to treat as a rule.",
	domain.ConfidenceMedium: "Visible tendency across a moderate sample; treat as a default, not a rule.",
	domain.ConfidenceLow:    "Too few samples to generalise; treat as a hint only.",
}

// ConfidenceFor maps a sample count to its confidence tier and note
func ConfidenceFor(samples int) domain.Confidence {
	tier := domain.ConfidenceLow
	switch {
	case samples >= highConfidenceSamples:
		tier = domain.ConfidenceHigh
	case samples >= mediumConfidenceSamples:
		tier = domain.ConfidenceMedium
	}
	return domain.Confidence{Tier: tier, Note: confidenceNotes[tier]}
}

// AggregateStyles folds independent per-image observations into one style guide.
// Each field takes its plurality value; on equal counts the value seen first in
// observation order wins. Context subgroups with fewer than three observations are left
// out. antiPatterns only influence the motion confidence and are carried through.
func AggregateStyles(observations []domain.StyleObservation, antiPatterns []string) domain.AggregatedStyleGuide {
	guide := domain.AggregatedStyleGuide{
		StyleSummary: summarize(observations),
		Confidence:   make(map[domain.StyleFamily]domain.Confidence, len(domain.StyleFamilies)),
		AntiPatterns: antiPatterns,
	}

	confidence := ConfidenceFor(len(observations))
	for _, family := range domain.StyleFamilies {
		guide.Confidence[family] = confidence
	}

	motionTier := domain.ConfidenceLow
	if len(antiPatterns) > 0 {
		motionTier = domain.ConfidenceMedium
	}
	guide.Motion = domain.MotionGuide{
		Duration:   motionDuration,
		Easing:     motionEasing,
		Hover:      motionHover,
		Confidence: domain.Confidence{Tier: motionTier, Note: confidenceNotes[motionTier]},
	}

	groups, order := groupByContext(observations)
	for _, ctx := range order {
		members := groups[ctx]
		if len(members) < minContextSamples {
			continue
		}
		if guide.Contexts == nil {
			guide.Contexts = make(map[string]domain.StyleSummary)
		}
		guide.Contexts[ctx] = summarize(members)
	}

	return guide
}

func summarize(observations []domain.StyleObservation) domain.StyleSummary {
	pick := func(field func(domain.StyleObservation) string) string {
		values := make([]string, 0, len(observations))
		for _, o := range observations {
			values = append(values, field(o))
		}
		return mostCommon(values)
	}

	return domain.StyleSummary{
		SampleCount: len(observations),
		Colors: domain.ColorGuide{
			PaletteTemperature: pick(func(o domain.StyleObservation) string { return o.PaletteTemperature }),
			ContrastLevel:      pick(func(o domain.StyleObservation) string { return o.ContrastLevel }),
			AccentUsage:        pick(func(o domain.StyleObservation) string { return o.AccentUsage }),
		},
		Typography: domain.TypographyGuide{
			FontCategory:  pick(func(o domain.StyleObservation) string { return o.FontCategory }),
			HeadingWeight: pick(func(o domain.StyleObservation) string { return o.HeadingWeight }),
			TypeScale:     pick(func(o domain.StyleObservation) string { return o.TypeScale }),
		},
		Spacing: domain.SpacingGuide{
			Density: pick(func(o domain.StyleObservation) string { return o.Density }),
		},
		Elevation: domain.ElevationGuide{
			ShadowPresence: pick(func(o domain.StyleObservation) string { return o.ShadowPresence }),
		},
		Borders: domain.BorderGuide{
			RadiusCategory: pick(func(o domain.StyleObservation) string { return o.RadiusCategory }),
			BorderUsage:    pick(func(o domain.StyleObservation) string { return o.BorderUsage }),
			RadiusPx:       meanRadius(observations),
		},
	}
}

// mostCommon returns the most frequent non-empty value, first-seen on ties
func mostCommon(values []string) string {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

// meanRadius averages the radius estimates that are present, rounded; 0 without any
func meanRadius(observations []domain.StyleObservation) int {
	var sum float64
	var n int
	for _, o := range observations {
		if o.RadiusPx == nil {
			continue
		}
		sum += *o.RadiusPx
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

func groupByContext(observations []domain.StyleObservation) (map[string][]domain.StyleObservation, []string) {
	groups := make(map[string][]domain.StyleObservation)
	var order []string
	for _, o := range observations {
		seen := make(map[string]bool)
		for _, ctx := range o.Contexts {
			if ctx == "" || seen[ctx] {
				continue
			}
			seen[ctx] = true
			if _, exists := groups[ctx]; !exists {
				order = append(order, ctx)
			}
			groups[ctx] = append(groups[ctx], o)
		}
	}
	return groups, order
}
