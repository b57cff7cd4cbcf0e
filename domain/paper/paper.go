// Package paper defines the canonical paper record consumed by the indexer.
package paper

import (
	"encoding/json"
	"time"
)

// DateLayout is the fixed-width publication date format that keeps sort keys chronological.
const DateLayout = "2006-01-02"

// Paper is the canonical, immutable input record.
type Paper struct {
	ID         string   `json:"arxiv_id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Categories []string `json:"categories"`
	Abstract   string   `json:"abstract"`
	Published  string   `json:"published"`
}

// UnmarshalJSON accepts "id" as an alias for "arxiv_id".
func (p *Paper) UnmarshalJSON(data []byte) error {
	type plain Paper
	var aux struct {
		plain
		AliasID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Paper(aux.plain)
	if p.ID == "" {
		p.ID = aux.AliasID
	}
	return nil
}

// ValidDate reports whether s is a calendar date in DateLayout.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// QualityIssues lists problems that still allow the paper to be indexed but
// leave some access pattern without an entry for it.
func (p Paper) QualityIssues() []string {
	var issues []string
	if len(p.Categories) == 0 {
		issues = append(issues, "no categories")
	}
	if len(p.Authors) == 0 {
		issues = append(issues, "no authors")
	}
	if !ValidDate(p.Published) {
		issues = append(issues, "published date is not "+DateLayout)
	}
	return issues
}
