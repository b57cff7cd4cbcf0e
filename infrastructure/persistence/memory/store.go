// Package memory provides an in-process view store with the same upsert and
// query semantics as the DynamoDB adapter.
package memory

import (
	"context"
	"sort"
	"sync"

	"paperindex/application/ports"
	"paperindex/domain/config"
	"paperindex/domain/keys"
	"paperindex/domain/projection"
	"paperindex/pkg/errors"
)

// Store keeps view records keyed by primary key. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[projection.PrimaryKey]projection.ViewRecord
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: make(map[projection.PrimaryKey]projection.ViewRecord)}
}

// PutBatch upserts every record. It never reports unprocessed records.
func (s *Store) PutBatch(ctx context.Context, records []projection.ViewRecord) ([]projection.ViewRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewStoreUnavailableError("put batch", err)
	}
	if len(records) > config.MaxStoreBatchSize {
		return nil, errors.NewInternalError("batch exceeds maximum size")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.PrimaryKey()] = r
	}
	return nil, nil
}

// Query scans one index partition, ordered by the index sort key. Records with
// equal sort keys, and every record of an index without a sort key, are
// ordered by primary key.
func (s *Store) Query(ctx context.Context, in ports.QueryInput) ([]projection.ViewRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewStoreUnavailableError("query", err)
	}
	if in.PartitionKey.IsZero() {
		return nil, errors.NewInternalError("query requires a partition key")
	}

	pkAttr := in.Index.PartitionAttribute()
	skAttr := in.Index.SortAttribute()
	pk := in.PartitionKey.String()

	s.mu.RLock()
	var matched []projection.ViewRecord
	for _, r := range s.records {
		if r.KeyAttribute(pkAttr) != pk {
			continue
		}
		if skAttr != "" && !in.SortCondition.Matches(r.KeyAttribute(skAttr)) {
			continue
		}
		matched = append(matched, r)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if skAttr != "" {
			if sa, sb := a.KeyAttribute(skAttr), b.KeyAttribute(skAttr); sa != sb {
				return (sa < sb) == in.ScanForward
			}
		}
		if a.PK != b.PK {
			return a.PK < b.PK
		}
		return a.SK < b.SK
	})

	if in.Limit > 0 && len(matched) > in.Limit {
		matched = matched[:in.Limit]
	}
	if matched == nil {
		matched = []projection.ViewRecord{}
	}
	return matched, nil
}

// Breakdown counts records per index.
func (s *Store) Breakdown(ctx context.Context) (*ports.StorageBreakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	breakdown := &ports.StorageBreakdown{
		TableName:  "memory",
		TableItems: int64(len(s.records)),
		Indexes:    make(map[string]int64),
	}
	for _, r := range s.records {
		for _, idx := range []keys.Index{keys.IndexAuthor, keys.IndexPaperID, keys.IndexKeyword} {
			if r.KeyAttribute(idx.PartitionAttribute()) != "" {
				breakdown.Indexes[idx.String()]++
			}
		}
	}
	return breakdown, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
