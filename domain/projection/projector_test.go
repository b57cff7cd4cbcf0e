package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperindex/domain/keywords"
	"paperindex/domain/paper"
	"paperindex/pkg/errors"
)

func samplePaper() paper.Paper {
	return paper.Paper{
		ID:         "0001",
		Title:      "Cache-Aware Lock Scheduling",
		Authors:    []string{"Ada Lovelace", "Alan Turing"},
		Categories: []string{"cs.LG", "cs.AI"},
		Abstract:   "Cache cache lock lock cache. Scheduling of lock-free queues.",
		Published:  "2024-01-02",
	}
}

func countKinds(views []ViewRecord) map[ViewKind]int {
	counts := map[ViewKind]int{}
	for _, v := range views {
		counts[v.Kind]++
	}
	return counts
}

func TestProject_ViewCount(t *testing.T) {
	extractor := keywords.NewDefaultExtractor()
	projector := NewProjector(extractor, 10)

	papers := []paper.Paper{
		samplePaper(),
		{ID: "0002", Authors: []string{"A"}, Categories: []string{"math.CO"}},
		{ID: "0003", Categories: []string{"cs.DB", "cs.DB"}, Abstract: "the of and"},
		{ID: "0004", Abstract: "only keywords survive here"},
	}
	for _, p := range papers {
		views, err := projector.Project(p)
		require.NoError(t, err)

		kws := extractor.Extract(p.Abstract, 10)
		assert.Len(t, views, len(p.Categories)+len(p.Authors)+len(kws), p.ID)

		counts := countKinds(views)
		assert.Equal(t, len(p.Categories), counts[ViewCategory])
		assert.Equal(t, len(p.Authors), counts[ViewAuthor])
		assert.Equal(t, len(kws), counts[ViewKeyword])
	}
}

func TestProject_CategoryViews(t *testing.T) {
	views, err := NewProjector(keywords.NewDefaultExtractor(), 10).Project(samplePaper())
	require.NoError(t, err)

	var categoryViews []ViewRecord
	for _, v := range views {
		if v.Kind == ViewCategory {
			categoryViews = append(categoryViews, v)
		}
	}
	require.Len(t, categoryViews, 2)

	assert.Equal(t, "CATEGORY#cs.LG", categoryViews[0].PK)
	assert.Equal(t, "CATEGORY#cs.AI", categoryViews[1].PK)
	for _, v := range categoryViews {
		assert.Equal(t, "2024-01-02#0001", v.SK)
		assert.Equal(t, "ARXIV_ID#0001", v.GSI2PK)
		assert.Equal(t, samplePaper().Abstract, v.Abstract)
		assert.Equal(t, samplePaper().Authors, v.Authors)
		assert.Equal(t, []string{"cache", "lock", "scheduling", "lock-free", "queues"}, v.Keywords)
		assert.Empty(t, v.GSI1PK)
		assert.Empty(t, v.GSI3PK)
	}
}

func TestProject_AuthorAndKeywordViews(t *testing.T) {
	views, err := NewProjector(keywords.NewDefaultExtractor(), 2).Project(samplePaper())
	require.NoError(t, err)
	require.Len(t, views, 6)

	author := views[2]
	assert.Equal(t, ViewAuthor, author.Kind)
	assert.Equal(t, "AUTHOR#Ada Lovelace", author.PK)
	assert.Equal(t, author.PK, author.GSI1PK)
	assert.Equal(t, "2024-01-02#0001", author.SK)
	assert.Equal(t, author.SK, author.GSI1SK)
	assert.Empty(t, author.Abstract)
	assert.Empty(t, author.Keywords)
	assert.Empty(t, author.Authors)

	kw := views[4]
	assert.Equal(t, ViewKeyword, kw.Kind)
	assert.Equal(t, "KEYWORD#cache", kw.PK)
	assert.Equal(t, "KW#0001#cache", kw.SK)
	assert.Equal(t, "KEYWORD#cache", kw.GSI3PK)
	assert.Equal(t, "2024-01-02#0001", kw.GSI3SK)
	assert.Equal(t, "cache", kw.Token)
	assert.Equal(t, "KEYWORD#lock", views[5].PK)

	for _, v := range views {
		assert.Equal(t, "0001", v.ArxivID)
		assert.Equal(t, "Cache-Aware Lock Scheduling", v.Title)
		assert.Equal(t, []string{"cs.LG", "cs.AI"}, v.Categories)
		assert.Equal(t, "2024-01-02", v.Published)
	}
}

func TestProject_Deterministic(t *testing.T) {
	projector := NewProjector(keywords.NewDefaultExtractor(), 10)
	first, err := projector.Project(samplePaper())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := projector.Project(samplePaper())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestProject_ViewsDoNotAliasInput(t *testing.T) {
	p := samplePaper()
	views, err := NewProjector(nil, 10).Project(p)
	require.NoError(t, err)

	p.Categories[0] = "mutated"
	views[0].Categories[1] = "mutated"
	assert.Equal(t, "cs.LG", views[1].Categories[0])
	assert.Equal(t, "cs.AI", views[1].Categories[1])
}

func TestProject_RejectsBadIDs(t *testing.T) {
	projector := NewProjector(nil, 10)

	_, err := projector.Project(paper.Paper{Categories: []string{"cs.LG"}})
	assert.True(t, errors.IsMissingRequiredField(err))

	_, err = projector.Project(paper.Paper{ID: "\xff\xfe"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidField))

	_, err = projector.Project(paper.Paper{ID: "\U0010FFFFx"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidField))
}
