package queries

import (
	"paperindex/application/ports"
	"paperindex/domain/keys"
	"paperindex/domain/projection"
	"paperindex/pkg/errors"
)

// PapersInDateRangeQuery lists a category's papers published from Start
// through End inclusive, oldest first.
type PapersInDateRangeQuery struct {
	Category string `json:"category" validate:"required"`
	Start    string `json:"start" validate:"required,datetime=2006-01-02"`
	End      string `json:"end" validate:"required,datetime=2006-01-02"`
}

func (q PapersInDateRangeQuery) Type() string { return TypePapersInDateRange }

// Validate validates the PapersInDateRangeQuery
func (q PapersInDateRangeQuery) Validate(Limits) error {
	if err := validateFields(q); err != nil {
		return err
	}
	// Fixed-width dates compare chronologically as strings.
	if q.Start > q.End {
		return errors.NewInvalidQueryParameterError("start", "must not be after end")
	}
	return nil
}

func (q PapersInDateRangeQuery) Parameters(Limits) map[string]interface{} {
	return map[string]interface{}{
		"category": q.Category,
		"start":    q.Start,
		"end":      q.End,
	}
}

func (q PapersInDateRangeQuery) input(Limits) ports.QueryInput {
	return ports.QueryInput{
		Index:         keys.IndexPrimary,
		PartitionKey:  keys.Category(q.Category),
		SortCondition: keys.DateRange(q.Start, q.End),
		ScanForward:   true,
	}
}

func (q PapersInDateRangeQuery) shape(records []projection.ViewRecord) []PaperSummary {
	return summarize(records)
}
