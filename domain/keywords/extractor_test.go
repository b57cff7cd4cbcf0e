package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FrequencyThenFirstAppearance(t *testing.T) {
	e := NewDefaultExtractor()

	assert.Equal(t, []string{"cache", "lock"}, e.Extract("cache cache lock lock cache", 2))
	assert.Equal(t, []string{"lock", "cache"}, e.Extract("lock cache lock cache", 2))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, e.Extract("zeta alpha mid", 3))
}

func TestExtract_Tokenization(t *testing.T) {
	e := NewExtractor(nil)

	got := e.Extract("GPT-4 outperforms 3D models; x2 Self-Attention, self-attention!", 10)
	assert.Equal(t, []string{"self-attention", "gpt-4", "outperforms", "d", "models", "x2"}, got)
}

func TestExtract_DropsStopwords(t *testing.T) {
	e := NewDefaultExtractor()

	got := e.Extract("We propose a novel method based on the graph. The graph is sparse.", 10)
	assert.Equal(t, []string{"graph", "novel", "sparse"}, got)

	stop := DefaultCatalog()[DefaultStopwordSet]
	for _, kw := range e.Extract(strings.Repeat("the paper shows using data ", 3), 10) {
		assert.False(t, stop.Contains(kw), kw)
	}
}

func TestExtract_Bounds(t *testing.T) {
	e := NewDefaultExtractor()
	text := "one two three four five six seven eight nine ten eleven twelve"

	assert.Len(t, e.Extract(text, 10), 10)
	assert.Len(t, e.Extract(text, 3), 3)
	assert.Empty(t, e.Extract(text, 0))
	assert.Empty(t, e.Extract("", 10))
	assert.Empty(t, e.Extract("the a an of 123 ---", 10))
	assert.NotNil(t, e.Extract("", 10))
}

func TestExtract_Deterministic(t *testing.T) {
	e := NewDefaultExtractor()
	text := "sparse attention scales; attention kernels and sparse kernels scale"

	first := e.Extract(text, 10)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, e.Extract(text, 10))
	}
}

func TestLoadCatalog_MergesOverDefaults(t *testing.T) {
	doc := `
de: [der, Die, das]
en-academic: [graph]
`
	catalog, err := LoadCatalog(strings.NewReader(doc))
	require.NoError(t, err)

	de, err := catalog.Lookup("de")
	require.NoError(t, err)
	assert.Equal(t, []string{"das", "der", "die"}, de.Words())

	en, err := catalog.Lookup(DefaultStopwordSet)
	require.NoError(t, err)
	assert.Equal(t, []string{"graph"}, en.Words())

	_, err = catalog.Lookup("fr")
	assert.Error(t, err)
}

func TestLoadCatalog_EmptyDocument(t *testing.T) {
	catalog, err := LoadCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Contains(t, catalog, DefaultStopwordSet)
}
