package queries

import (
	"strings"

	"paperindex/application/ports"
	"paperindex/domain/keys"
	"paperindex/domain/projection"
)

// PapersByKeywordQuery lists the newest papers whose abstract yielded a keyword.
// Matching is case-insensitive.
type PapersByKeywordQuery struct {
	Keyword string `json:"keyword" validate:"required"`
	Limit   int    `json:"limit"`
}

func (q PapersByKeywordQuery) Type() string { return TypePapersByKeyword }

// Validate validates the PapersByKeywordQuery
func (q PapersByKeywordQuery) Validate(limits Limits) error {
	if err := validateFields(q); err != nil {
		return err
	}
	return validateLimit(q.Limit, limits)
}

func (q PapersByKeywordQuery) Parameters(limits Limits) map[string]interface{} {
	return map[string]interface{}{
		"keyword": q.Keyword,
		"limit":   effectiveLimit(q.Limit, limits),
	}
}

func (q PapersByKeywordQuery) input(limits Limits) ports.QueryInput {
	return ports.QueryInput{
		Index:        keys.IndexKeyword,
		PartitionKey: keys.Keyword(strings.ToLower(q.Keyword)),
		ScanForward:  false,
		Limit:        effectiveLimit(q.Limit, limits),
	}
}

func (q PapersByKeywordQuery) shape(records []projection.ViewRecord) []PaperSummary {
	return summarize(records)
}
