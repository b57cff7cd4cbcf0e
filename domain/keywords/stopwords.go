package keywords

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultStopwordSet names the stopword set used when none is configured.
const DefaultStopwordSet = "en-academic"

// StopwordSet is a set of lowercase tokens excluded from keyword extraction.
type StopwordSet map[string]struct{}

// NewStopwordSet builds a set from words, lowercasing each one.
func NewStopwordSet(words ...string) StopwordSet {
	set := make(StopwordSet, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// Contains reports whether token is a stopword. Token must already be lowercase.
func (s StopwordSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Words returns the set's members in sorted order.
func (s StopwordSet) Words() []string {
	words := make([]string, 0, len(s))
	for w := range s {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Catalog maps a language or domain name to its stopword set.
type Catalog map[string]StopwordSet

// DefaultCatalog returns the built-in stopword sets.
func DefaultCatalog() Catalog {
	return Catalog{
		DefaultStopwordSet: NewStopwordSet(
			"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
			"of", "with", "by", "from", "up", "about", "into", "through", "during",
			"is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
			"do", "does", "did", "will", "would", "could", "should", "may", "might",
			"can", "this", "that", "these", "those", "we", "our", "use", "using",
			"based", "approach", "method", "paper", "propose", "proposed", "show",
		),
	}
}

// Lookup returns the named set.
func (c Catalog) Lookup(name string) (StopwordSet, error) {
	set, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("unknown stopword set %q", name)
	}
	return set, nil
}

// LoadCatalog reads a YAML document mapping set names to word lists and
// merges it over the built-in sets. A set named in the document replaces the
// built-in set of the same name.
//
//	en-academic: [the, a, an, ...]
//	de: [der, die, das]
func LoadCatalog(r io.Reader) (Catalog, error) {
	var raw map[string][]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode stopword catalog: %w", err)
	}

	catalog := DefaultCatalog()
	for name, words := range raw {
		catalog[name] = NewStopwordSet(words...)
	}
	return catalog, nil
}
