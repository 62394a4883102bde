package domain

import "strings"

// Category is a destination the system manages itself
type Category string

const (
	CategoryCode       Category = "code"
	CategoryDesign     Category = "design"
	CategoryTypography Category = "typography"
	CategoryColor      Category = "color"
	CategoryWriting    Category = "writing"
	CategoryTools      Category = "tools"
	CategoryResearch   Category = "research"
)

// KnownCategories lists every managed category
var KnownCategories = []Category{
	CategoryCode, CategoryDesign, CategoryTypography, CategoryColor,
	CategoryWriting, CategoryTools, CategoryResearch,
}

// categoryTitles maps managed categories to the channel titles they live under
var categoryTitles = map[Category]string{
	CategoryCode:       "Code",
	CategoryDesign:     "Design References",
	CategoryTypography: "Typography",
	CategoryColor:      "Color",
	CategoryWriting:    "Writing",
	CategoryTools:      "Tools",
	CategoryResearch:   "Research",
}

// ParseCategory resolves a known category key, case-insensitively
func ParseCategory(key string) (Category, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, c := range KnownCategories {
		if string(c) == key {
			return c, true
		}
	}
	return "", false
}

// Destination is either a managed Category or a user-defined channel name.
// Exactly one of the two fields is set.
type Destination struct {
	Category Category `json:"category,omitempty"`
	Custom   string   `json:"custom,omitempty"`
}

// CategoryDestination wraps a managed category
func CategoryDestination(c Category) Destination {
	return Destination{Category: c}
}

// CustomDestination wraps a user-defined channel name
func CustomDestination(name string) Destination {
	return Destination{Custom: name}
}

// ParseDestination turns a key into a Destination, falling back to a custom channel
func ParseDestination(key string) Destination {
	if c, ok := ParseCategory(key); ok {
		return CategoryDestination(c)
	}
	return CustomDestination(strings.TrimSpace(key))
}

// IsCustom reports whether the destination is a user channel
func (d Destination) IsCustom() bool {
	return d.Category == ""
}

// Key is the stable identifier of the destination
func (d Destination) Key() string {
	if d.IsCustom() {
		return d.Custom
	}
	return string(d.Category)
}

// ChannelTitle is the channel title the destination is stored under
func (d Destination) ChannelTitle() string {
	if d.IsCustom() {
		return d.Custom
	}
	if title, ok := categoryTitles[d.Category]; ok {
		return title
	}
	return string(d.Category)
}

// ChannelSlug is the slug fragment used to recognise the destination channel
func (d Destination) ChannelSlug() string {
	return Slugify(d.ChannelTitle())
}

func (d Destination) String() string {
	return d.Key()
}

// Slugify lowercases a title and joins its words with dashes
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ClassificationRule routes items to a destination when a trigger matches.
// Domains are compared against the source URL's host, Keywords against text fields.
type ClassificationRule struct {
	Destination Destination `json:"destination"`
	Domains     []string    `json:"domains,omitempty"`
	Keywords    []string    `json:"keywords,omitempty"`
}

// ClassificationDecision is the classifier's verdict for one item. The caller decides
// whether to apply it.
type ClassificationDecision struct {
	BlockID        int64         `json:"blockId"`
	Destinations   []Destination `json:"destinations"`
	Justification  string        `json:"justification"`
	SuggestedLabel string        `json:"suggestedLabel,omitempty"`
}

// HasDestinations reports whether the decision routes the item anywhere
func (d ClassificationDecision) HasDestinations() bool {
	return len(d.Destinations) > 0
}
