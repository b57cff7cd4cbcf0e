// Package queries serves the fixed read access patterns. Every query is
// answered by a single index scan; nothing is joined or filtered client-side.
package queries

import (
	"fmt"

	"paperindex/application/ports"
	"paperindex/domain/projection"
	"paperindex/pkg/errors"
	"paperindex/pkg/utils"
)

// Query type names, as reported in results.
const (
	TypeRecentInCategory  = "recent_in_category"
	TypePapersByAuthor    = "papers_by_author"
	TypePaperByID         = "paper_by_id"
	TypePapersInDateRange = "papers_in_date_range"
	TypePapersByKeyword   = "papers_by_keyword"
)

// Limits bounds caller-supplied result limits.
type Limits struct {
	Default int
	Max     int
}

// Query is one of the supported access patterns.
type Query interface {
	Type() string
	Validate(limits Limits) error
	Parameters(limits Limits) map[string]interface{}

	input(limits Limits) ports.QueryInput
	shape(records []projection.ViewRecord) []PaperSummary
}

// validateFields runs the struct's validation tags and reports the first
// failure as an invalid query parameter.
func validateFields(q interface{}) error {
	if problems := utils.FieldProblems(q); len(problems) > 0 {
		return errors.NewInvalidQueryParameterError(problems[0].Field, problems[0].Reason)
	}
	return nil
}

// validateLimit accepts zero, meaning the default, or 1..max.
func validateLimit(limit int, limits Limits) error {
	if limit < 0 || limit > limits.Max {
		return errors.NewInvalidQueryParameterError("limit", fmt.Sprintf("must be between 1 and %d", limits.Max))
	}
	return nil
}

func effectiveLimit(limit int, limits Limits) int {
	if limit == 0 {
		return limits.Default
	}
	return limit
}
