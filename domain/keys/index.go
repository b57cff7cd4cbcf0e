package keys

// Index identifies which key pair of a view record a lookup runs against.
type Index int

const (
	// IndexPrimary is the table's own PK/SK pair.
	IndexPrimary Index = iota
	// IndexAuthor is the author secondary index (GSI1).
	IndexAuthor
	// IndexPaperID is the by-id secondary index (GSI2, partition only).
	IndexPaperID
	// IndexKeyword is the keyword recency secondary index (GSI3).
	IndexKeyword
)

// Record attribute names of every key component.
const (
	AttrPK     = "PK"
	AttrSK     = "SK"
	AttrGSI1PK = "GSI1PK"
	AttrGSI1SK = "GSI1SK"
	AttrGSI2PK = "GSI2PK"
	AttrGSI3PK = "GSI3PK"
	AttrGSI3SK = "GSI3SK"
)

// String returns a short name for logs and metrics.
func (i Index) String() string {
	switch i {
	case IndexPrimary:
		return "primary"
	case IndexAuthor:
		return "author"
	case IndexPaperID:
		return "paper_id"
	case IndexKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// PartitionAttribute names the attribute holding the index's partition key.
func (i Index) PartitionAttribute() string {
	switch i {
	case IndexAuthor:
		return AttrGSI1PK
	case IndexPaperID:
		return AttrGSI2PK
	case IndexKeyword:
		return AttrGSI3PK
	default:
		return AttrPK
	}
}

// SortAttribute names the attribute holding the index's sort key, or "" when
// the index has none.
func (i Index) SortAttribute() string {
	switch i {
	case IndexAuthor:
		return AttrGSI1SK
	case IndexPaperID:
		return ""
	case IndexKeyword:
		return AttrGSI3SK
	default:
		return AttrSK
	}
}

// SortCondition restricts the sort key of a lookup.
type SortCondition struct {
	Low  string
	High string
}

// Between matches sort keys in the closed range [low, high].
func Between(low, high string) *SortCondition {
	return &SortCondition{Low: low, High: high}
}

// DateRange matches every recency sort key dated from start through end inclusive.
func DateRange(start, end string) *SortCondition {
	return Between(RangeLowerBound(start), RangeUpperBound(end))
}

// Matches reports whether sk satisfies the condition. A nil condition matches everything.
func (c *SortCondition) Matches(sk string) bool {
	if c == nil {
		return true
	}
	return c.Low <= sk && sk <= c.High
}
