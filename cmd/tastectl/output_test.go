package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/usecase"
)

func TestRenderBatchReport(t *testing.T) {
	var buf bytes.Buffer
	renderBatchReport(&buf, "index refs", domain.BatchReport{Processed: 3, Failed: 1, Skipped: 2})

	// header, footer and title casing depend on the table style
	out := strings.ToLower(buf.String())
	assert.Contains(t, out, "index refs")
	assert.Contains(t, out, "processed")
	assert.Contains(t, out, "3")
}

func TestRenderClassification(t *testing.T) {
	var buf bytes.Buffer
	renderClassification(&buf, &usecase.ClassificationReport{
		Channel: "inbox",
		Outcomes: []usecase.BlockOutcome{
			{
				Block: domain.Block{ID: 11, Title: "Stripe API docs"},
				Decision: domain.ClassificationDecision{
					BlockID:        11,
					Destinations:   []domain.Destination{domain.CategoryDestination(domain.CategoryCode)},
					Justification:  `URL matches "stripe.com" → code`,
					SuggestedLabel: "[stripe.com]",
				},
			},
			{
				Block: domain.Block{ID: 12, Title: "Broken"},
				Error: "fetch connections: boom",
			},
		},
		Summary: domain.BatchReport{Processed: 1, Failed: 1},
	})

	out := strings.ToLower(buf.String())
	assert.Contains(t, out, "(dry run)")
	assert.Contains(t, out, "stripe api docs")
	assert.Contains(t, out, "code")
	assert.Contains(t, out, "[stripe.com]")
	assert.Contains(t, out, "fetch connections: boom")
}

func TestRenderMatches(t *testing.T) {
	var buf bytes.Buffer
	renderMatches(&buf, &usecase.MatchResponse{
		Query: domain.TagSet{Component: []string{"card"}},
		Images: []usecase.QueryImage{
			{Error: "model output could not be parsed"},
		},
		Matches: []domain.MatchResult{
			{Candidate: domain.Candidate{ID: "42", Channel: "refs"}, Score: 4.5, Note: "Shares card components"},
		},
	})

	out := strings.ToLower(buf.String())
	assert.Contains(t, out, "image 1:")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "shares card components")
	assert.Contains(t, out, "component: card")
}

func TestRenderStyleGuide(t *testing.T) {
	guide := usecase.AggregateStyles([]domain.StyleObservation{
		{PaletteTemperature: "warm", FontCategory: "serif", Contexts: []string{"landing"}},
		{PaletteTemperature: "warm", FontCategory: "serif", Contexts: []string{"landing"}},
		{PaletteTemperature: "cool", FontCategory: "sans-serif", Contexts: []string{"landing"}},
	}, []string{"neon gradients"})

	var buf bytes.Buffer
	renderStyleGuide(&buf, &guide)

	out := strings.ToLower(buf.String())
	assert.Contains(t, out, "3 samples")
	assert.Contains(t, out, "warm")
	assert.Contains(t, out, "serif")
	assert.Contains(t, out, "avoid: neon gradients")
	assert.Contains(t, out, "context landing: 3 samples")
}
