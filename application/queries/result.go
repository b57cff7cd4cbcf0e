package queries

import "paperindex/domain/projection"

// PaperSummary is the display projection returned by every query. Views that
// do not carry a field leave it empty.
type PaperSummary struct {
	ArxivID    string   `json:"arxiv_id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors,omitempty"`
	Categories []string `json:"categories"`
	Published  string   `json:"published"`
	Abstract   string   `json:"abstract,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// Result is the shaped outcome of a query. An empty Papers slice is a normal
// outcome.
type Result struct {
	QueryType  string                 `json:"query_type"`
	Parameters map[string]interface{} `json:"parameters"`
	Papers     []PaperSummary         `json:"papers"`
	Count      int                    `json:"count"`
}

// Map flattens the result into the query parameters plus "papers" and "count",
// ready for serialization by a transport.
func (r *Result) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.Parameters)+2)
	for k, v := range r.Parameters {
		m[k] = v
	}
	m["papers"] = r.Papers
	m["count"] = r.Count
	return m
}

// First returns the first paper, if any.
func (r *Result) First() (PaperSummary, bool) {
	if len(r.Papers) == 0 {
		return PaperSummary{}, false
	}
	return r.Papers[0], true
}

func summarize(records []projection.ViewRecord) []PaperSummary {
	papers := make([]PaperSummary, 0, len(records))
	for _, r := range records {
		papers = append(papers, PaperSummary{
			ArxivID:    r.ArxivID,
			Title:      r.Title,
			Authors:    r.Authors,
			Categories: r.Categories,
			Published:  r.Published,
		})
	}
	return papers
}
