package usecase

import (
	"testing"

	"github.com/tastelens/backend/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		samples int
		want    domain.ConfidenceTier
	}{
		{0, domain.ConfidenceLow},
		{7, domain.ConfidenceLow},
		{8, domain.ConfidenceMedium},
		{14, domain.ConfidenceMedium},
		{15, domain.ConfidenceHigh},
		{40, domain.ConfidenceHigh},
	}
	for _, tt := range tests {
		got := ConfidenceFor(tt.samples)
		if got.Tier != tt.want {
			t.Errorf("ConfidenceFor(%d) = %s, want %s", tt.samples, got.Tier, tt.want)
		}
		if got.Note == "" {
			t.Errorf("ConfidenceFor(%d) has no note", tt.samples)
		}
	}
}

func TestAggregateStyles(t *testing.T) {
	t.Run("no observations", func(t *testing.T) {
		guide := AggregateStyles(nil, nil)

		if guide.Borders.RadiusPx != 0 {
			t.Errorf("RadiusPx = %d, want 0", guide.Borders.RadiusPx)
		}
		if guide.Colors.PaletteTemperature != "" || guide.Typography.FontCategory != "" || guide.Borders.RadiusCategory != "" {
			t.Errorf("expected no plurality values, got %+v", guide.StyleSummary)
		}
		for _, family := range domain.StyleFamilies {
			if guide.Confidence[family].Tier != domain.ConfidenceLow {
				t.Errorf("confidence[%s] = %s, want low", family, guide.Confidence[family].Tier)
			}
		}
		if guide.Motion.Confidence.Tier != domain.ConfidenceLow {
			t.Errorf("motion confidence = %s, want low", guide.Motion.Confidence.Tier)
		}
		if len(guide.Contexts) != 0 {
			t.Errorf("contexts = %v, want none", guide.Contexts)
		}
	})

	t.Run("plurality with first-seen tie-break", func(t *testing.T) {
		obs := []domain.StyleObservation{
			{ShadowPresence: "subtle", PaletteTemperature: "warm"},
			{ShadowPresence: "none", PaletteTemperature: "cool"},
			{ShadowPresence: "subtle", PaletteTemperature: "cool"},
			{ShadowPresence: "", PaletteTemperature: "warm"},
		}
		guide := AggregateStyles(obs, nil)

		if guide.Elevation.ShadowPresence != "subtle" {
			t.Errorf("ShadowPresence = %q, want subtle", guide.Elevation.ShadowPresence)
		}
		if guide.Colors.PaletteTemperature != "warm" {
			t.Errorf("PaletteTemperature = %q, want warm (first seen of a 2-2 tie)", guide.Colors.PaletteTemperature)
		}
		if guide.SampleCount != 4 {
			t.Errorf("SampleCount = %d, want 4", guide.SampleCount)
		}
	})

	t.Run("radius is the rounded mean of present estimates", func(t *testing.T) {
		obs := []domain.StyleObservation{
			{RadiusPx: floatPtr(4)},
			{RadiusPx: floatPtr(8)},
			{RadiusPx: floatPtr(7)},
			{},
		}
		if got := AggregateStyles(obs, nil).Borders.RadiusPx; got != 6 {
			t.Errorf("RadiusPx = %d, want 6", got)
		}
	})

	t.Run("fractional estimates are averaged before rounding", func(t *testing.T) {
		obs := []domain.StyleObservation{
			{RadiusPx: floatPtr(8.5)},
			{RadiusPx: floatPtr(9.5)},
			{RadiusPx: floatPtr(10.5)},
		}
		if got := AggregateStyles(obs, nil).Borders.RadiusPx; got != 10 {
			t.Errorf("RadiusPx = %d, want 10", got)
		}
	})

	t.Run("context subgroups need three observations", func(t *testing.T) {
		obs := []domain.StyleObservation{
			{Contexts: []string{"saas", "dashboard"}, Density: "compact"},
			{Contexts: []string{"saas", "dashboard"}, Density: "compact"},
			{Contexts: []string{"saas"}, Density: "airy"},
		}
		guide := AggregateStyles(obs, nil)

		saas, ok := guide.Contexts["saas"]
		if !ok {
			t.Fatal("context with 3 observations should be present")
		}
		if saas.SampleCount != 3 || saas.Spacing.Density != "compact" {
			t.Errorf("saas summary = %+v", saas)
		}
		if _, ok := guide.Contexts["dashboard"]; ok {
			t.Error("context with 2 observations must be left out")
		}
	})

	t.Run("confidence follows sample count", func(t *testing.T) {
		obs := make([]domain.StyleObservation, 9)
		guide := AggregateStyles(obs, nil)
		if guide.Confidence[domain.FamilyColors].Tier != domain.ConfidenceMedium {
			t.Errorf("confidence = %s, want medium", guide.Confidence[domain.FamilyColors].Tier)
		}
	})

	t.Run("motion defaults and anti-patterns", func(t *testing.T) {
		guide := AggregateStyles(nil, []string{"no bouncing"})
		if guide.Motion.Duration != "200ms" || guide.Motion.Easing != "ease-out" || guide.Motion.Hover != "lift-on-hover" {
			t.Errorf("motion = %+v", guide.Motion)
		}
		if guide.Motion.Confidence.Tier != domain.ConfidenceMedium {
			t.Errorf("motion confidence = %s, want medium", guide.Motion.Confidence.Tier)
		}
		if len(guide.AntiPatterns) != 1 {
			t.Errorf("anti-patterns = %v", guide.AntiPatterns)
		}
	})
}
