// Package keywords derives a bounded, ranked keyword set from free text.
package keywords

import (
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches a letter followed by letters, digits or hyphens.
var tokenPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9-]*`)

// Extractor ranks the tokens of a text by frequency. It holds no mutable
// state and is safe for concurrent use.
type Extractor struct {
	stopwords StopwordSet
}

// NewExtractor creates an extractor that discards the given stopwords.
func NewExtractor(stopwords StopwordSet) *Extractor {
	if stopwords == nil {
		stopwords = StopwordSet{}
	}
	return &Extractor{stopwords: stopwords}
}

// NewDefaultExtractor creates an extractor using the built-in academic stopword set.
func NewDefaultExtractor() *Extractor {
	return NewExtractor(DefaultCatalog()[DefaultStopwordSet])
}

type tokenCount struct {
	token string
	count int
}

// Extract returns at most topK lowercase keywords of text, most frequent
// first. Equal counts keep the order in which tokens first appear.
func (e *Extractor) Extract(text string, topK int) []string {
	if topK <= 0 {
		return []string{}
	}

	var counts []tokenCount
	index := make(map[string]int)
	for _, raw := range tokenPattern.FindAllString(text, -1) {
		token := strings.ToLower(raw)
		if e.stopwords.Contains(token) {
			continue
		}
		if i, seen := index[token]; seen {
			counts[i].count++
			continue
		}
		index[token] = len(counts)
		counts = append(counts, tokenCount{token: token, count: 1})
	}

	// counts is in first-appearance order; a stable sort keeps that order among ties.
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})

	if len(counts) > topK {
		counts = counts[:topK]
	}
	keywords := make([]string, len(counts))
	for i, c := range counts {
		keywords[i] = c.token
	}
	return keywords
}
