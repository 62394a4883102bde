package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tastelens/backend/internal/domain"
)

func newClassificationFixture() (*MockArenaClient, *MockMetadataFetcher, *mockRecorder, *ClassificationService) {
	arena := NewMockArenaClient()
	arena.channels = []domain.Channel{{ID: 10, Title: "Code", Slug: "code-q1w2"}}
	meta := &MockMetadataFetcher{pages: map[string]domain.PageMetadata{
		"https://example.org/post": {Title: "A typeface for interfaces"},
	}}
	rec := newMockRecorder()
	svc := NewClassificationService(
		arena,
		meta,
		NewClassifier(testRules(), ClassifierConfig{}),
		NewChannelDirectory(arena, "me", nil),
		rec,
		ClassificationServiceConfig{Concurrency: 2, CanonicalChannels: []string{"Reading List"}},
		nil,
	)
	return arena, meta, rec, svc
}

func TestClassifyChannel(t *testing.T) {
	ctx := context.Background()

	blocks := []domain.Block{
		{ID: 1, Title: "Stripe billing API docs", Class: domain.BlockLink, Description: "payments reference docs",
			Source: &domain.BlockSource{URL: "https://stripe.com/docs", Title: "Stripe Docs"}},
		{ID: 2, Title: "example.org", Class: domain.BlockLink, Description: "saved from a newsletter",
			Source: &domain.BlockSource{URL: "https://example.org/post"}},
		{ID: 3, Title: "Organized essay", Class: domain.BlockText, Content: "essay", Description: "this one has a long description"},
		{ID: 4, Title: "Nothing here", Class: domain.BlockText, Description: "a long enough description"},
		{ID: 5, Title: "Broken", Class: domain.BlockLink},
	}

	t.Run("dry run reports without writing", func(t *testing.T) {
		arena, meta, rec, svc := newClassificationFixture()
		arena.contents["inbox"] = blocks
		arena.connections[3] = []domain.ChannelRef{{Title: "Reading List", Slug: "reading-list-9"}}
		arena.blockErr[5] = domain.ErrArenaAPIFailure

		report, err := svc.ClassifyChannel(ctx, "inbox", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := keys(report.Outcomes[0].Decision.Destinations); len(got) != 1 || got[0] != "code" {
			t.Errorf("block 1 destinations = %v, want [code]", got)
		}
		if got := keys(report.Outcomes[1].Decision.Destinations); len(got) != 1 || got[0] != "typography" {
			t.Errorf("block 2 destinations = %v, want [typography] from the fetched page title", got)
		}
		if report.Outcomes[2].Decision.Justification != "Already organized" {
			t.Errorf("block 3 justification = %q", report.Outcomes[2].Decision.Justification)
		}
		if report.Outcomes[4].Error == "" {
			t.Error("block 5 should carry the connections error")
		}
		if meta.called != 1 {
			t.Errorf("metadata fetched %d times, want 1", meta.called)
		}

		want := domain.BatchReport{Processed: 2, Failed: 1, Skipped: 2}
		if report.Summary != want {
			t.Errorf("summary = %+v, want %+v", report.Summary, want)
		}
		if rec.batch["classify:processed"] != 2 {
			t.Errorf("recorded = %v", rec.batch)
		}
		if len(arena.connected) != 0 || len(arena.labels) != 0 || len(arena.created) != 0 {
			t.Errorf("dry run wrote: connected=%v labels=%v created=%v", arena.connected, arena.labels, arena.created)
		}
	})

	t.Run("apply connects, creates missing channels and labels", func(t *testing.T) {
		arena, _, _, svc := newClassificationFixture()
		arena.contents["inbox"] = []domain.Block{
			blocks[0],
			{ID: 6, Title: "Inter", Class: domain.BlockLink,
				Source: &domain.BlockSource{URL: "https://fonts.google.com/specimen/Inter", Title: "Inter font", Provider: "Google Fonts"}},
		}

		report, err := svc.ClassifyChannel(ctx, "inbox", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Outcomes[0].Applied) != 1 || report.Outcomes[0].Applied[0].Slug != "code-q1w2" {
			t.Errorf("block 1 applied = %+v, want existing Code channel", report.Outcomes[0].Applied)
		}
		if len(arena.created) != 1 || arena.created[0] != "Typography" {
			t.Errorf("created = %v, want [Typography]", arena.created)
		}
		if arena.labels[6] != "[Google Fonts] Inter font" {
			t.Errorf("label = %q", arena.labels[6])
		}
		if _, labeled := arena.labels[1]; labeled {
			t.Error("block 1 has a long description and must not be relabeled")
		}
		if len(arena.connected) != 2 {
			t.Errorf("connected = %v", arena.connected)
		}
	})

	t.Run("apply failure is tallied, earlier work kept", func(t *testing.T) {
		arena, _, _, svc := newClassificationFixture()
		arena.contents["inbox"] = []domain.Block{blocks[0]}
		arena.connectErr = domain.ErrArenaAPIFailure

		report, err := svc.ClassifyChannel(ctx, "inbox", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Summary.Failed != 1 {
			t.Errorf("summary = %+v", report.Summary)
		}
	})

	t.Run("page description fills an empty block description", func(t *testing.T) {
		arena, meta, _, svc := newClassificationFixture()
		meta.pages["https://example.org/notes"] = domain.PageMetadata{
			Title:       "Unused page title",
			Description: "A new typeface for small screens",
		}
		arena.contents["inbox"] = []domain.Block{
			{ID: 7, Title: "Weekly notes", Class: domain.BlockLink,
				Source: &domain.BlockSource{URL: "https://example.org/notes", Title: "Weekly notes"}},
		}

		report, err := svc.ClassifyChannel(ctx, "inbox", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		decision := report.Outcomes[0].Decision
		if got := keys(decision.Destinations); len(got) != 1 || got[0] != "typography" {
			t.Errorf("destinations = %v, want [typography] from the page description", got)
		}
		if !strings.Contains(decision.Justification, "Description contains") {
			t.Errorf("justification = %q", decision.Justification)
		}
		if decision.SuggestedLabel != "" {
			t.Errorf("label = %q, want none once a description is known", decision.SuggestedLabel)
		}
		if meta.called != 1 {
			t.Errorf("metadata fetched %d times, want 1", meta.called)
		}
	})

	t.Run("requires a channel", func(t *testing.T) {
		_, _, _, svc := newClassificationFixture()
		if _, err := svc.ClassifyChannel(ctx, "", false); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})
}

func TestChannelDirectory(t *testing.T) {
	ctx := context.Background()
	arena := NewMockArenaClient()
	arena.channels = []domain.Channel{
		{ID: 1, Title: "design references", Slug: "design-references-x"},
		{ID: 2, Title: "Old Tools", Slug: "tools"},
	}
	dir := NewChannelDirectory(arena, "me", nil)

	ref, err := dir.Resolve(ctx, domain.CategoryDestination(domain.CategoryDesign), false)
	if err != nil || ref.ID != 1 {
		t.Errorf("design = %+v, %v; want channel 1 by title", ref, err)
	}

	ref, err = dir.Resolve(ctx, domain.CategoryDestination(domain.CategoryTools), false)
	if err != nil || ref.ID != 2 {
		t.Errorf("tools = %+v, %v; want channel 2 by slug", ref, err)
	}

	if _, err := dir.Resolve(ctx, domain.CustomDestination("Moodboard"), false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	created, err := dir.Resolve(ctx, domain.CustomDestination("Moodboard"), true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	again, _ := dir.Resolve(ctx, domain.CustomDestination("moodboard"), true)
	if again.ID != created.ID || len(arena.created) != 1 {
		t.Errorf("second resolve created another channel: %v", arena.created)
	}

	if _, err := dir.Resolve(ctx, domain.Destination{}, true); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}
