package storage

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastelens/backend/internal/domain"
)

func newTestStore() (*JSONStore, afero.Fs) {
	fs := afero.NewMemMapFs()
	return NewJSONStoreFs(fs), fs
}

func TestJSONStore_SaveAndLoadCandidates(t *testing.T) {
	store, fs := newTestStore()
	ctx := context.Background()

	first := &domain.Candidate{ID: "101", Title: "Pricing", Tags: domain.TagSet{Component: []string{"pricing"}}, IndexedAt: time.Unix(0, 0).UTC()}
	second := &domain.Candidate{ID: "102", Title: "Hero", Tags: domain.TagSet{Component: []string{"hero"}}, IndexedAt: time.Unix(0, 0).UTC()}

	require.NoError(t, store.SaveCandidate(ctx, "ui-refs", first))
	require.NoError(t, store.SaveCandidate(ctx, "ui-refs", second))

	ids, err := store.ListIDs(ctx, "ui-refs")
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102"}, ids)

	exists, _ := afero.Exists(fs, "/ui-refs/items/101.json")
	assert.True(t, exists)

	all, err := store.LoadCandidates(ctx, "ui-refs")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, *first, all[0])
	assert.Equal(t, *second, all[1])
}

func TestJSONStore_ReindexReplacesItemWithoutDuplicatingID(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.SaveCandidate(ctx, "c", &domain.Candidate{ID: "1", Title: "old", Tags: domain.TagSet{Vibe: []string{"calm"}}}))
	require.NoError(t, store.SaveCandidate(ctx, "c", &domain.Candidate{ID: "1", Title: "new"}))

	ids, err := store.ListIDs(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)

	got, err := store.GetCandidate(ctx, "c", "1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.True(t, got.Tags.IsEmpty())
}

func TestJSONStore_Missing(t *testing.T) {
	store, fs := newTestStore()
	ctx := context.Background()

	ids, err := store.ListIDs(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = store.GetCandidate(ctx, "nothing", "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.GetStyleGuide(ctx, "nothing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// an id listed in the index whose file is gone is skipped
	require.NoError(t, store.SaveCandidate(ctx, "c", &domain.Candidate{ID: "1"}))
	require.NoError(t, store.SaveCandidate(ctx, "c", &domain.Candidate{ID: "2"}))
	require.NoError(t, fs.Remove("/c/items/1.json"))

	all, err := store.LoadCandidates(ctx, "c")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2", all[0].ID)
}

func TestJSONStore_RejectsUnsafeNames(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	for _, name := range []string{"", "..", "a/b", `a\b`} {
		err := store.SaveCandidate(ctx, name, &domain.Candidate{ID: "1"})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest, "collection %q", name)

		err = store.SaveCandidate(ctx, "ok", &domain.Candidate{ID: name})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest, "id %q", name)
	}
	assert.ErrorIs(t, store.SaveCandidate(ctx, "ok", nil), domain.ErrInvalidRequest)
}

func TestJSONStore_StyleGuides(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	guide := &domain.AggregatedStyleGuide{
		StyleSummary: domain.StyleSummary{SampleCount: 9, Borders: domain.BorderGuide{RadiusCategory: "rounded", RadiusPx: 8}},
		Confidence:   map[domain.StyleFamily]domain.Confidence{domain.FamilyBorders: {Tier: domain.ConfidenceMedium, Note: "n"}},
	}
	require.NoError(t, store.SaveStyleGuide(ctx, "ui-refs", guide))

	got, err := store.GetStyleGuide(ctx, "ui-refs")
	require.NoError(t, err)
	assert.Equal(t, guide, got)
}

func TestJSONStore_ListCollections(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	cols, err := store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, cols)

	require.NoError(t, store.SaveCandidate(ctx, "zeta", &domain.Candidate{ID: "1"}))
	require.NoError(t, store.SaveCandidate(ctx, "alpha", &domain.Candidate{ID: "1"}))
	require.NoError(t, store.SaveStyleGuide(ctx, "alpha", &domain.AggregatedStyleGuide{}))

	cols, err = store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, cols)
}
