package queries

import (
	"paperindex/application/ports"
	"paperindex/domain/keys"
	"paperindex/domain/projection"
)

// PapersByAuthorQuery lists every paper of an author, oldest first.
type PapersByAuthorQuery struct {
	Author string `json:"author" validate:"required"`
}

func (q PapersByAuthorQuery) Type() string { return TypePapersByAuthor }

// Validate validates the PapersByAuthorQuery
func (q PapersByAuthorQuery) Validate(Limits) error {
	return validateFields(q)
}

func (q PapersByAuthorQuery) Parameters(Limits) map[string]interface{} {
	return map[string]interface{}{"author": q.Author}
}

func (q PapersByAuthorQuery) input(Limits) ports.QueryInput {
	return ports.QueryInput{
		Index:        keys.IndexAuthor,
		PartitionKey: keys.Author(q.Author),
		ScanForward:  true,
	}
}

func (q PapersByAuthorQuery) shape(records []projection.ViewRecord) []PaperSummary {
	return summarize(records)
}
