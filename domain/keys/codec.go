// Package keys builds and parses the composite key strings shared by every
// index view. All formatting of partition keys, sort keys and range bounds
// lives here.
package keys

import (
	"fmt"
	"strings"
)

// Separator joins the components of every composite key.
const Separator = "#"

// RangeSentinel is appended to an upper date bound so that the bound sorts
// after every "date#id" sort key carrying that date. It is the largest
// Unicode code point; ids are valid UTF-8 that never begin with it, so under
// byte-wise comparison "date#id" < "date#" + RangeSentinel for every valid id.
const RangeSentinel = "\U0010FFFF"

// keywordSortPrefix prefixes the primary sort key of keyword views.
const keywordSortPrefix = "KW"

// Kind tags the entity a partition key groups by.
type Kind int

const (
	KindCategory Kind = iota + 1
	KindAuthor
	KindKeyword
	KindArxivID
)

var kindPrefixes = map[Kind]string{
	KindCategory: "CATEGORY",
	KindAuthor:   "AUTHOR",
	KindKeyword:  "KEYWORD",
	KindArxivID:  "ARXIV_ID",
}

// String returns the key prefix for the kind.
func (k Kind) String() string {
	if p, ok := kindPrefixes[k]; ok {
		return p
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// PartitionKey is a tagged partition key value. The zero value is invalid.
type PartitionKey struct {
	kind  Kind
	value string
}

// Category returns the partition key grouping papers by category.
func Category(category string) PartitionKey {
	return PartitionKey{kind: KindCategory, value: category}
}

// Author returns the partition key grouping papers by author.
func Author(name string) PartitionKey {
	return PartitionKey{kind: KindAuthor, value: name}
}

// Keyword returns the partition key grouping papers by keyword. The value is
// used verbatim; callers lowercase keywords before building the key.
func Keyword(keyword string) PartitionKey {
	return PartitionKey{kind: KindKeyword, value: keyword}
}

// ArxivID returns the partition key addressing a single paper.
func ArxivID(id string) PartitionKey {
	return PartitionKey{kind: KindArxivID, value: id}
}

// Kind returns the key's tag.
func (p PartitionKey) Kind() Kind { return p.kind }

// Value returns the untagged value.
func (p PartitionKey) Value() string { return p.value }

// IsZero reports whether the key was never built.
func (p PartitionKey) IsZero() bool { return p.kind == 0 }

// String formats the key as "{KIND}#{value}".
func (p PartitionKey) String() string {
	return p.kind.String() + Separator + p.value
}

// ParsePartitionKey splits a formatted partition key into its tag and value.
func ParsePartitionKey(s string) (PartitionKey, error) {
	prefix, value, ok := strings.Cut(s, Separator)
	if !ok {
		return PartitionKey{}, fmt.Errorf("partition key %q has no separator", s)
	}
	for kind, p := range kindPrefixes {
		if p == prefix {
			return PartitionKey{kind: kind, value: value}, nil
		}
	}
	return PartitionKey{}, fmt.Errorf("partition key %q has unknown kind %q", s, prefix)
}

// SortKey formats the recency sort key "{published}#{id}". Published must be
// a fixed-width date so that lexicographic order equals chronological order.
func SortKey(published, id string) string {
	return published + Separator + id
}

// ParseSortKey splits a recency sort key at its first separator.
func ParseSortKey(sk string) (published, id string, err error) {
	published, id, ok := strings.Cut(sk, Separator)
	if !ok {
		return "", "", fmt.Errorf("sort key %q has no separator", sk)
	}
	return published, id, nil
}

// KeywordSortKey formats the primary sort key of a keyword view, "KW#{id}#{keyword}".
func KeywordSortKey(id, keyword string) string {
	return keywordSortPrefix + Separator + id + Separator + keyword
}

// RangeLowerBound returns the smallest sort key carrying date.
func RangeLowerBound(date string) string {
	return date + Separator
}

// RangeUpperBound returns a bound greater than every sort key carrying date.
func RangeUpperBound(date string) string {
	return date + Separator + RangeSentinel
}
