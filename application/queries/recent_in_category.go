package queries

import (
	"paperindex/application/ports"
	"paperindex/domain/keys"
	"paperindex/domain/projection"
)

// RecentInCategoryQuery lists the newest papers of a category.
type RecentInCategoryQuery struct {
	Category string `json:"category" validate:"required"`
	Limit    int    `json:"limit"`
}

func (q RecentInCategoryQuery) Type() string { return TypeRecentInCategory }

// Validate validates the RecentInCategoryQuery
func (q RecentInCategoryQuery) Validate(limits Limits) error {
	if err := validateFields(q); err != nil {
		return err
	}
	return validateLimit(q.Limit, limits)
}

func (q RecentInCategoryQuery) Parameters(limits Limits) map[string]interface{} {
	return map[string]interface{}{
		"category": q.Category,
		"limit":    effectiveLimit(q.Limit, limits),
	}
}

func (q RecentInCategoryQuery) input(limits Limits) ports.QueryInput {
	return ports.QueryInput{
		Index:        keys.IndexPrimary,
		PartitionKey: keys.Category(q.Category),
		ScanForward:  false,
		Limit:        effectiveLimit(q.Limit, limits),
	}
}

func (q RecentInCategoryQuery) shape(records []projection.ViewRecord) []PaperSummary {
	return summarize(records)
}
