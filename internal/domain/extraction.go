package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// jsonObjectRegex greedily captures everything from the first '{' to the last '}'
var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

// TagPrompt asks the model to tag a UI screenshot using the vocabulary as a guide
func TagPrompt() string {
	var b strings.Builder
	b.WriteString("You are tagging a UI design screenshot for a personal reference library.\n")
	b.WriteString("Pick only the tags that clearly apply; most images need 1-3 per category.\n")
	b.WriteString("Preferred values per category:\n")
	for _, category := range TagCategories {
		fmt.Fprintf(&b, "- %s: %s\n", category, strings.Join(Vocabulary[category], ", "))
	}
	b.WriteString("Also write a one-line description of what the screen shows.\n")
	b.WriteString(`Respond with JSON only: {"component":[],"style":[],"context":[],"vibe":[],"description":""}`)
	return b.String()
}

// StylePrompt asks the model for discrete visual design tokens
func StylePrompt() string {
	return strings.Join([]string{
		"You are extracting visual design tokens from a UI screenshot.",
		"Answer each field with exactly one of the allowed values, or omit it if you cannot tell.",
		"- palette_temperature: warm | cool | neutral",
		"- contrast_level: low | medium | high",
		"- accent_usage: none | single | multiple",
		"- font_category: serif | sans-serif | mono | display",
		"- heading_weight: light | regular | bold | black",
		"- type_scale: tight | moderate | dramatic",
		"- density: compact | comfortable | airy",
		"- shadow_presence: none | subtle | pronounced",
		"- radius_category: sharp | slightly-rounded | rounded | pill",
		"- border_usage: none | subtle | prominent",
		"- radius_px: estimated corner radius of buttons and cards in pixels",
		"Respond with a single JSON object using these keys.",
	}, "\n")
}

// Outcome is the result of decoding model output: either Parsed or Unparseable
type Outcome[T any] interface {
	outcome()
}

// Parsed carries a successfully decoded value
type Parsed[T any] struct {
	Value T
}

// Unparseable carries the raw text that could not be decoded and why
type Unparseable struct {
	Raw string
	Err error
}

func (Parsed[T]) outcome()  {}
func (Unparseable) outcome() {}

func (u Unparseable) Error() string {
	return u.Err.Error()
}

// TagOutput is what the tag extraction prompt asks the model to return
type TagOutput struct {
	Tags        TagSet `json:"tags"`
	Description string `json:"description,omitempty"`
}

type tagPayload struct {
	Component   []string `json:"component"`
	Style       []string `json:"style"`
	Context     []string `json:"context"`
	Vibe        []string `json:"vibe"`
	Description string   `json:"description"`
}

// ParseTagOutput decodes a tag extraction response. Tag values are lowercased,
// trimmed and de-duplicated; values outside the vocabulary are kept.
func ParseTagOutput(text string) Outcome[TagOutput] {
	var payload tagPayload
	if u, ok := decodeObject(text, &payload); !ok {
		return u
	}

	out := TagOutput{Description: strings.TrimSpace(payload.Description)}
	out.Tags.Component = normalizeTags(payload.Component)
	out.Tags.Style = normalizeTags(payload.Style)
	out.Tags.Context = normalizeTags(payload.Context)
	out.Tags.Vibe = normalizeTags(payload.Vibe)
	return Parsed[TagOutput]{Value: out}
}

// ParseStyleOutput decodes a style extraction response into an observation.
// Fractional radius estimates are kept as given.
func ParseStyleOutput(text string) Outcome[StyleObservation] {
	var obs StyleObservation
	if u, ok := decodeObject(text, &obs); !ok {
		return u
	}
	obs.Contexts = nil
	obs.ItemID = ""
	return Parsed[StyleObservation]{Value: obs}
}

func decodeObject(text string, v any) (Unparseable, bool) {
	raw := jsonObjectRegex.FindString(text)
	if raw == "" {
		return Unparseable{Raw: text, Err: fmt.Errorf("%w: no JSON object found", ErrUnparseableOutput)}, false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return Unparseable{Raw: text, Err: fmt.Errorf("%w: %v", ErrUnparseableOutput, err)}, false
	}
	return Unparseable{}, true
}

func normalizeTags(values []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
