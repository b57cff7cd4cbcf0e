package projection

import (
	"unicode/utf8"

	"paperindex/domain/keys"
	"paperindex/domain/keywords"
	"paperindex/domain/paper"
	"paperindex/pkg/errors"
)

// Projector turns one paper into its category, author and keyword views.
// It holds no mutable state and is safe for concurrent use.
type Projector struct {
	extractor *keywords.Extractor
	topK      int
}

// NewProjector creates a projector that extracts at most topK keywords per abstract.
func NewProjector(extractor *keywords.Extractor, topK int) *Projector {
	if extractor == nil {
		extractor = keywords.NewDefaultExtractor()
	}
	return &Projector{extractor: extractor, topK: topK}
}

// Project returns len(categories) + len(authors) + len(keywords) views, in
// that order. Duplicate categories or authors produce duplicate views.
func (p *Projector) Project(src paper.Paper) ([]ViewRecord, error) {
	if src.ID == "" {
		return nil, errors.NewMissingRequiredFieldError("arxiv_id")
	}
	if !utf8.ValidString(src.ID) {
		return nil, errors.NewInvalidFieldError("arxiv_id", "is not valid UTF-8")
	}
	if r, _ := utf8.DecodeRuneInString(src.ID); string(r) == keys.RangeSentinel {
		return nil, errors.NewInvalidFieldError("arxiv_id", "must not begin with the range sentinel")
	}

	kws := p.extractor.Extract(src.Abstract, p.topK)
	recency := keys.SortKey(src.Published, src.ID)
	idKey := keys.ArxivID(src.ID).String()

	views := make([]ViewRecord, 0, len(src.Categories)+len(src.Authors)+len(kws))

	for _, category := range src.Categories {
		views = append(views, ViewRecord{
			Kind:       ViewCategory,
			PK:         keys.Category(category).String(),
			SK:         recency,
			GSI2PK:     idKey,
			ArxivID:    src.ID,
			Title:      src.Title,
			Authors:    cloneStrings(src.Authors),
			Abstract:   src.Abstract,
			Categories: cloneStrings(src.Categories),
			Keywords:   cloneStrings(kws),
			Published:  src.Published,
		})
	}

	for _, author := range src.Authors {
		authorKey := keys.Author(author).String()
		views = append(views, ViewRecord{
			Kind:       ViewAuthor,
			PK:         authorKey,
			SK:         recency,
			GSI1PK:     authorKey,
			GSI1SK:     recency,
			ArxivID:    src.ID,
			Title:      src.Title,
			Categories: cloneStrings(src.Categories),
			Published:  src.Published,
		})
	}

	for _, kw := range kws {
		kwKey := keys.Keyword(kw).String()
		views = append(views, ViewRecord{
			Kind:       ViewKeyword,
			PK:         kwKey,
			SK:         keys.KeywordSortKey(src.ID, kw),
			GSI3PK:     kwKey,
			GSI3SK:     recency,
			ArxivID:    src.ID,
			Title:      src.Title,
			Categories: cloneStrings(src.Categories),
			Published:  src.Published,
			Token:      kw,
		})
	}

	return views, nil
}

// cloneStrings copies s so that views never alias each other or the input.
func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
