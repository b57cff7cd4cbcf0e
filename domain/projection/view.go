// Package projection expands canonical papers into the denormalized view
// records that back every read access pattern.
package projection

import "paperindex/domain/keys"

// ViewKind tags which access pattern a view record serves. The values are
// stored in the record's type attribute.
type ViewKind string

const (
	ViewCategory ViewKind = "CATEGORY"
	ViewAuthor   ViewKind = "AUTHOR"
	ViewKeyword  ViewKind = "KW"
)

// ViewRecord is one store-resident projection of a paper. Key fields that do
// not apply to a view kind are left empty and omitted from the stored item.
type ViewRecord struct {
	Kind ViewKind `json:"type" dynamodbav:"type"`

	PK     string `json:"PK" dynamodbav:"PK"`
	SK     string `json:"SK" dynamodbav:"SK"`
	GSI1PK string `json:"GSI1PK,omitempty" dynamodbav:"GSI1PK,omitempty"`
	GSI1SK string `json:"GSI1SK,omitempty" dynamodbav:"GSI1SK,omitempty"`
	GSI2PK string `json:"GSI2PK,omitempty" dynamodbav:"GSI2PK,omitempty"`
	GSI3PK string `json:"GSI3PK,omitempty" dynamodbav:"GSI3PK,omitempty"`
	GSI3SK string `json:"GSI3SK,omitempty" dynamodbav:"GSI3SK,omitempty"`

	ArxivID    string   `json:"arxiv_id" dynamodbav:"arxiv_id"`
	Title      string   `json:"title" dynamodbav:"title"`
	Authors    []string `json:"authors,omitempty" dynamodbav:"authors,omitempty"`
	Abstract   string   `json:"abstract,omitempty" dynamodbav:"abstract,omitempty"`
	Categories []string `json:"categories" dynamodbav:"categories"`
	Keywords   []string `json:"keywords,omitempty" dynamodbav:"keywords,omitempty"`
	Published  string   `json:"published" dynamodbav:"published"`
	Token      string   `json:"token,omitempty" dynamodbav:"token,omitempty"`
}

// PrimaryKey returns the record's table key as a single comparable value.
func (v ViewRecord) PrimaryKey() PrimaryKey {
	return PrimaryKey{PK: v.PK, SK: v.SK}
}

// PrimaryKey identifies a record in the table.
type PrimaryKey struct {
	PK string
	SK string
}

// KeyAttribute returns the value of the named key attribute, or "" when the
// record does not carry it.
func (v ViewRecord) KeyAttribute(name string) string {
	switch name {
	case keys.AttrPK:
		return v.PK
	case keys.AttrSK:
		return v.SK
	case keys.AttrGSI1PK:
		return v.GSI1PK
	case keys.AttrGSI1SK:
		return v.GSI1SK
	case keys.AttrGSI2PK:
		return v.GSI2PK
	case keys.AttrGSI3PK:
		return v.GSI3PK
	case keys.AttrGSI3SK:
		return v.GSI3SK
	default:
		return ""
	}
}
