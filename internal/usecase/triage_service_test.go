package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tastelens/backend/internal/domain"
)

func newTriageFixture() (*MockArenaClient, *mockRecorder, *TriageService) {
	arena, _, rec, classification := newClassificationFixture()
	arena.contents["inbox"] = []domain.Block{
		{ID: 1, Title: "Stripe SDK", Class: domain.BlockLink, Source: &domain.BlockSource{URL: "https://stripe.com"}},
		{ID: 2, Title: "Already filed", Class: domain.BlockImage},
		{ID: 3, Title: "Untitled", Class: domain.BlockImage},
	}
	arena.connections[2] = []domain.ChannelRef{{Title: "Code", Slug: "code-q1w2"}}

	svc := NewTriageService(arena, NewChannelDirectory(arena, "me", nil), classification, NewSessionStore(), rec, nil)
	return arena, rec, svc
}

func TestTriageService(t *testing.T) {
	ctx := context.Background()

	t.Run("start queues only unorganized blocks with a suggestion", func(t *testing.T) {
		_, _, svc := newTriageFixture()
		view, err := svc.StartSession(ctx, "inbox")
		if err != nil {
			t.Fatalf("StartSession: %v", err)
		}
		if view.Total != 2 || view.State != StatePresenting || view.Current.ID != 1 {
			t.Fatalf("view = %+v", view.SessionSnapshot)
		}
		if view.Suggestion == nil || keys(view.Suggestion.Destinations)[0] != "code" {
			t.Errorf("suggestion = %+v", view.Suggestion)
		}
	})

	t.Run("classify, skip and undo", func(t *testing.T) {
		arena, rec, svc := newTriageFixture()
		view, _ := svc.StartSession(ctx, "inbox")
		id := view.ID

		view, err := svc.Classify(ctx, id, []string{"code", "Moodboard"})
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if view.Current.ID != 3 || !view.CanUndo {
			t.Errorf("after classify: %+v", view.SessionSnapshot)
		}
		if !reflect.DeepEqual(arena.connected, []string{"code-q1w2/1", "moodboard-abc/1"}) {
			t.Errorf("connected = %v", arena.connected)
		}

		view, err = svc.Skip(ctx, id)
		if err != nil || view.State != StateDone {
			t.Fatalf("Skip: %+v %v", view, err)
		}

		if _, err := svc.Undo(ctx, id); err != nil {
			t.Fatalf("undo skip: %v", err)
		}
		if len(arena.disconnected) != 0 {
			t.Errorf("undoing a skip disconnected %v", arena.disconnected)
		}

		view, err = svc.Undo(ctx, id)
		if err != nil {
			t.Fatalf("undo classify: %v", err)
		}
		if view.Current.ID != 1 {
			t.Errorf("current = %d, want 1", view.Current.ID)
		}
		if !reflect.DeepEqual(arena.disconnected, []string{"code-q1w2/1", "moodboard-abc/1"}) {
			t.Errorf("disconnected = %v", arena.disconnected)
		}

		if _, err := svc.Undo(ctx, id); !errors.Is(err, domain.ErrNothingToUndo) {
			t.Errorf("error = %v, want ErrNothingToUndo", err)
		}
		wantActions := []string{ActionClassify, ActionSkip, ActionUndo, ActionUndo}
		if !reflect.DeepEqual(rec.triage, wantActions) {
			t.Errorf("recorded = %v, want %v", rec.triage, wantActions)
		}
	})

	t.Run("failed connect does not advance", func(t *testing.T) {
		arena, _, svc := newTriageFixture()
		view, _ := svc.StartSession(ctx, "inbox")
		arena.connectErr = domain.ErrArenaAPIFailure

		if _, err := svc.Classify(ctx, view.ID, []string{"code"}); !errors.Is(err, domain.ErrArenaAPIFailure) {
			t.Fatalf("error = %v, want ErrArenaAPIFailure", err)
		}
		cur, _ := svc.Current(ctx, view.ID)
		if cur.Current.ID != 1 {
			t.Errorf("current = %d, want 1", cur.Current.ID)
		}
	})

	t.Run("validation and unknown sessions", func(t *testing.T) {
		_, _, svc := newTriageFixture()
		if _, err := svc.StartSession(ctx, " "); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("StartSession: %v", err)
		}
		if _, err := svc.Classify(ctx, "x", nil); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("Classify without destinations: %v", err)
		}
		if _, err := svc.Skip(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("Skip: %v", err)
		}
		if err := svc.RemoveConnection(ctx, "", 1); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("RemoveConnection: %v", err)
		}
	})

	t.Run("remove connection", func(t *testing.T) {
		arena, rec, svc := newTriageFixture()
		if err := svc.RemoveConnection(ctx, "code-q1w2", 9); err != nil {
			t.Fatalf("RemoveConnection: %v", err)
		}
		if !reflect.DeepEqual(arena.disconnected, []string{"code-q1w2/9"}) || rec.triage[0] != ActionDelete {
			t.Errorf("disconnected = %v recorded = %v", arena.disconnected, rec.triage)
		}
	})
}
