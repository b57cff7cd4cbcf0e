package queries

import (
	"paperindex/application/ports"
	"paperindex/domain/keys"
	"paperindex/domain/projection"
)

// PaperByIDQuery fetches one paper with its abstract and keywords.
type PaperByIDQuery struct {
	ArxivID string `json:"arxiv_id" validate:"required"`
}

func (q PaperByIDQuery) Type() string { return TypePaperByID }

// Validate validates the PaperByIDQuery
func (q PaperByIDQuery) Validate(Limits) error {
	return validateFields(q)
}

func (q PaperByIDQuery) Parameters(Limits) map[string]interface{} {
	return map[string]interface{}{"arxiv_id": q.ArxivID}
}

func (q PaperByIDQuery) input(Limits) ports.QueryInput {
	return ports.QueryInput{
		Index:        keys.IndexPaperID,
		PartitionKey: keys.ArxivID(q.ArxivID),
		ScanForward:  true,
	}
}

// shape keeps the first record of each paper id. Every category view of a
// paper carries the id key, so one paper can match several times.
func (q PaperByIDQuery) shape(records []projection.ViewRecord) []PaperSummary {
	seen := make(map[string]struct{}, 1)
	papers := make([]PaperSummary, 0, 1)
	for _, r := range records {
		if _, dup := seen[r.ArxivID]; dup {
			continue
		}
		seen[r.ArxivID] = struct{}{}
		papers = append(papers, PaperSummary{
			ArxivID:    r.ArxivID,
			Title:      r.Title,
			Authors:    r.Authors,
			Categories: r.Categories,
			Published:  r.Published,
			Abstract:   r.Abstract,
			Keywords:   r.Keywords,
		})
	}
	return papers
}
