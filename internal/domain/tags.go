package domain

// TagCategory names one of the four fixed tag families
type TagCategory string

const (
	TagComponent TagCategory = "component"
	TagStyle     TagCategory = "style"
	TagContext   TagCategory = "context"
	TagVibe      TagCategory = "vibe"
)

// TagCategories lists the categories in their canonical order
var TagCategories = []TagCategory{TagComponent, TagStyle, TagContext, TagVibe}

// TagSet holds the tags observed on an item, one unordered set per category.
// Values outside Vocabulary are allowed; the vocabulary is only a hint to the annotator.
type TagSet struct {
	Component []string `json:"component,omitempty"`
	Style     []string `json:"style,omitempty"`
	Context   []string `json:"context,omitempty"`
	Vibe      []string `json:"vibe,omitempty"`
}

// Get returns the values stored for a category
func (t TagSet) Get(category TagCategory) []string {
	switch category {
	case TagComponent:
		return t.Component
	case TagStyle:
		return t.Style
	case TagContext:
		return t.Context
	case TagVibe:
		return t.Vibe
	}
	return nil
}

// Set replaces the values stored for a category
func (t *TagSet) Set(category TagCategory, values []string) {
	switch category {
	case TagComponent:
		t.Component = values
	case TagStyle:
		t.Style = values
	case TagContext:
		t.Context = values
	case TagVibe:
		t.Vibe = values
	}
}

// IsEmpty reports whether no category carries a value
func (t TagSet) IsEmpty() bool {
	for _, c := range TagCategories {
		if len(t.Get(c)) > 0 {
			return false
		}
	}
	return true
}

// Merge returns the union of two tag sets, keeping first-seen order
func (t TagSet) Merge(other TagSet) TagSet {
	var merged TagSet
	for _, c := range TagCategories {
		seen := make(map[string]bool)
		var values []string
		for _, v := range append(append([]string{}, t.Get(c)...), other.Get(c)...) {
			if !seen[v] {
				seen[v] = true
				values = append(values, v)
			}
		}
		merged.Set(c, values)
	}
	return merged
}

// Vocabulary is the closed list of suggested values per category, passed to the
// tag extraction model as a hint.
var Vocabulary = map[TagCategory][]string{
	TagComponent: {
		"hero", "navigation", "cta", "pricing", "card", "form", "modal", "table",
		"dashboard", "sidebar", "footer", "testimonial", "feature-grid", "onboarding",
		"empty-state", "settings", "chart", "list", "search", "checkout", "login",
		"profile", "toast", "tabs", "gallery",
	},
	TagStyle: {
		"minimal", "brutalist", "glassmorphism", "neumorphism", "flat", "skeuomorphic",
		"editorial", "illustrated", "3d", "gradient-heavy", "monochrome", "dark-mode",
		"retro", "playful", "corporate",
	},
	TagContext: {
		"saas", "fintech", "ecommerce", "developer-tools", "health", "education",
		"social", "productivity", "media", "marketing-site", "mobile-app", "portfolio",
		"ai-product", "crypto", "travel",
	},
	TagVibe: {
		"bold", "calm", "confident", "friendly", "luxurious", "technical", "warm",
		"serious", "energetic", "trustworthy", "quirky", "elegant",
	},
}
