package domain

import "time"

// Candidate is an indexed item that queries are scored against.
// Re-indexing replaces the whole record.
type Candidate struct {
	ID          string    `json:"id"`
	Tags        TagSet    `json:"tags"`
	Title       string    `json:"title,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Description string    `json:"description,omitempty"` // one-line summary from the annotator
	Channel     string    `json:"channel,omitempty"`
	IndexedAt   time.Time `json:"indexedAt"`
}

// MatchResult is a scored candidate for one query. It is never persisted.
type MatchResult struct {
	Candidate Candidate   `json:"candidate"`
	Score     float64     `json:"score"`
	Matched   MatchedTags `json:"matched"`
	Note      string      `json:"note,omitempty"`
}

// MatchedTags is the per-category overlap behind a score. Unlike TagSet every
// category is always serialized, empty ones as [].
type MatchedTags struct {
	Component []string `json:"component"`
	Style     []string `json:"style"`
	Context   []string `json:"context"`
	Vibe      []string `json:"vibe"`
}

// BatchReport tallies the outcome of a batch run
type BatchReport struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}
