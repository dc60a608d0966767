package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivelab/papertrail/internal/core/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(t.TempDir(), 2)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func seedIndex(t *testing.T, idx *Index) {
	t.Helper()
	ctx := context.Background()

	shard := domain.ShardInfo{
		Path:       "press-office/2021.json",
		SourceSlug: "press-office",
		SourceName: "Press Office",
		Year:       "2021",
		DocCount:   2,
	}
	docs := []domain.IndexDocument{
		{
			ID:               "aaa-budget-report",
			Title:            "Budget Report",
			ReleaseDate:      "2021-03-01",
			SourceName:       "Press Office",
			Content:          "The annual budget allocates funds for infrastructure projects across the region.",
			Tags:             []string{"finance"},
			DocumentCategory: "report",
		},
		{
			ID:          "bbb-hearing-transcript",
			Title:       "Hearing Transcript",
			ReleaseDate: "2021-06-15",
			SourceName:  "Press Office",
			Content:     "Transcript of the committee hearing on procurement oversight.",
			PersonNames: []string{"Jane Doe"},
		},
	}
	require.NoError(t, idx.IndexShard(ctx, shard, docs))

	other := domain.ShardInfo{
		Path:       "court-records/2019.json",
		SourceSlug: "court-records",
		SourceName: "Court Records",
		Year:       "2019",
		DocCount:   1,
	}
	require.NoError(t, idx.IndexShard(ctx, other, []domain.IndexDocument{
		{
			ID:          "ccc-budget-motion",
			Title:       "Motion on Budget",
			ReleaseDate: "2019-01-20",
			SourceName:  "Court Records",
			Content:     "Motion concerning the budget filed with the court.",
		},
	}))
}

func TestSearchRanksTitleMatchesFirst(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	results, err := idx.Search(context.Background(), "budget", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// both have "budget" in title and content; they outrank nothing here,
	// but title matches must surface the title field
	assert.Equal(t, "title", results[0].MatchedField)
	assert.Contains(t, results[0].Snippet, "budget")
}

func TestSearchFilters(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)
	ctx := context.Background()

	bySource, err := idx.Search(ctx, "budget", domain.SearchOptions{SourceSlugs: []string{"court-records"}})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "ccc-budget-motion", bySource[0].DocumentID)

	byYear, err := idx.Search(ctx, "budget", domain.SearchOptions{Years: []string{"2021"}})
	require.NoError(t, err)
	require.Len(t, byYear, 1)
	assert.Equal(t, "aaa-budget-report", byYear[0].DocumentID)

	byCategory, err := idx.Search(ctx, "budget", domain.SearchOptions{Category: "report"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "aaa-budget-report", byCategory[0].DocumentID)
}

func TestSearchAllTokensMustMatch(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	results, err := idx.Search(context.Background(), "budget infrastructure", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "aaa-budget-report", results[0].DocumentID)
}

func TestSearchPeopleField(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	results, err := idx.Search(context.Background(), "jane", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bbb-hearing-transcript", results[0].DocumentID)
	assert.Equal(t, "people", results[0].MatchedField)
}

func TestSearchFuzzy(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)
	ctx := context.Background()

	// one substitution away from "budget"
	strict, err := idx.Search(ctx, "budgat", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, strict)

	fuzzy, err := idx.Search(ctx, "budgat", domain.SearchOptions{Fuzzy: true})
	require.NoError(t, err)
	assert.NotEmpty(t, fuzzy)
}

func TestSearchEmptyQuery(t *testing.T) {
	idx := newTestIndex(t)
	_, err := idx.Search(context.Background(), "  ", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResetClearsIndex(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)
	ctx := context.Background()

	require.NoError(t, idx.Reset(ctx))

	results, err := idx.Search(ctx, "budget", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReindexShardReplacesDocuments(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	shard := domain.ShardInfo{Path: "s/2020.json", SourceSlug: "s", SourceName: "S", Year: "2020", DocCount: 1}
	require.NoError(t, idx.IndexShard(ctx, shard, []domain.IndexDocument{
		{ID: "doc-1", Title: "Old Title", Content: "alpha beta"},
	}))
	require.NoError(t, idx.IndexShard(ctx, shard, []domain.IndexDocument{
		{ID: "doc-1", Title: "New Title", Content: "gamma delta"},
	}))

	stale, err := idx.Search(ctx, "alpha", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, stale)

	fresh, err := idx.Search(ctx, "gamma", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "New Title", fresh[0].Title)
}

func TestWithinEditDistanceOne(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"budget", "budget", true},
		{"budget", "budgat", true},
		{"budget", "budge", true},
		{"budget", "budgets", true},
		{"budget", "gadget", false},
		{"budget", "bud", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, withinEditDistanceOne(tc.a, tc.b), "%s vs %s", tc.a, tc.b)
	}
}
