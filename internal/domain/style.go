package domain

// StyleObservation is one image's style extraction. Empty strings mean the field
// was not observed; RadiusPx is nil when the model gave no estimate.
type StyleObservation struct {
	ItemID string `json:"itemId,omitempty"`

	// colors
	PaletteTemperature string `json:"palette_temperature,omitempty"` // warm, cool, neutral
	ContrastLevel      string `json:"contrast_level,omitempty"`      // low, medium, high
	AccentUsage        string `json:"accent_usage,omitempty"`        // none, single, multiple

	// typography
	FontCategory  string `json:"font_category,omitempty"`  // serif, sans-serif, mono, display
	HeadingWeight string `json:"heading_weight,omitempty"` // light, regular, bold, black
	TypeScale     string `json:"type_scale,omitempty"`     // tight, moderate, dramatic

	// spacing
	Density string `json:"density,omitempty"` // compact, comfortable, airy

	// elevation
	ShadowPresence string `json:"shadow_presence,omitempty"` // none, subtle, pronounced

	// borders
	RadiusCategory string   `json:"radius_category,omitempty"` // sharp, slightly-rounded, rounded, pill
	BorderUsage    string   `json:"border_usage,omitempty"`    // none, subtle, prominent
	RadiusPx       *float64 `json:"radius_px,omitempty"`

	// Contexts are the context tags of the source item, used for subgrouping
	Contexts []string `json:"contexts,omitempty"`
}

// ConfidenceTier grades how much evidence backs a style field family
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// Confidence is a tier plus its fixed explanatory note
type Confidence struct {
	Tier ConfidenceTier `json:"tier"`
	Note string         `json:"note"`
}

type ColorGuide struct {
	PaletteTemperature string `json:"palette_temperature,omitempty"`
	ContrastLevel      string `json:"contrast_level,omitempty"`
	AccentUsage        string `json:"accent_usage,omitempty"`
}

type TypographyGuide struct {
	FontCategory  string `json:"font_category,omitempty"`
	HeadingWeight string `json:"heading_weight,omitempty"`
	TypeScale     string `json:"type_scale,omitempty"`
}

type SpacingGuide struct {
	Density string `json:"density,omitempty"`
}

type ElevationGuide struct {
	ShadowPresence string `json:"shadow_presence,omitempty"`
}

type BorderGuide struct {
	RadiusCategory string `json:"radius_category,omitempty"`
	BorderUsage    string `json:"border_usage,omitempty"`
	RadiusPx       int    `json:"radius_px"`
}

// MotionGuide is never observed from images; it always carries the house defaults
type MotionGuide struct {
	Duration   string     `json:"duration"`
	Easing     string     `json:"easing"`
	Hover      string     `json:"hover"`
	Confidence Confidence `json:"confidence"`
}

// StyleSummary holds the plurality value of every field over a set of observations
type StyleSummary struct {
	SampleCount int             `json:"sample_count"`
	Colors      ColorGuide      `json:"colors"`
	Typography  TypographyGuide `json:"typography"`
	Spacing     SpacingGuide    `json:"spacing"`
	Elevation   ElevationGuide  `json:"elevation"`
	Borders     BorderGuide     `json:"borders"`
}

// StyleFamily names a top-level group of style fields
type StyleFamily string

const (
	FamilyColors     StyleFamily = "colors"
	FamilyTypography StyleFamily = "typography"
	FamilySpacing    StyleFamily = "spacing"
	FamilyElevation  StyleFamily = "elevation"
	FamilyBorders    StyleFamily = "borders"
)

// StyleFamilies lists the observed families in output order
var StyleFamilies = []StyleFamily{FamilyColors, FamilyTypography, FamilySpacing, FamilyElevation, FamilyBorders}

// AggregatedStyleGuide is the per-channel style summary built from observations
type AggregatedStyleGuide struct {
	StyleSummary
	Motion       MotionGuide                `json:"motion"`
	Confidence   map[StyleFamily]Confidence `json:"confidence"`
	Contexts     map[string]StyleSummary    `json:"contexts,omitempty"`
	AntiPatterns []string                   `json:"anti_patterns,omitempty"`
}
