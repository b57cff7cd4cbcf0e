package ports

import (
	"context"

	"paperindex/domain/keys"
	"paperindex/domain/projection"
)

// ViewStore is the key-value boundary every view record is written to and
// read from. It is a port in hexagonal architecture; the DynamoDB adapter and
// the in-memory store both implement it.
type ViewStore interface {
	// PutBatch upserts records by primary key. Records the store accepted the
	// call for but did not write are returned so the caller can resubmit only
	// those. A non-nil error means no record of the call may be assumed written.
	PutBatch(ctx context.Context, records []projection.ViewRecord) ([]projection.ViewRecord, error)

	// Query runs one partition-key lookup against a single index.
	Query(ctx context.Context, in QueryInput) ([]projection.ViewRecord, error)
}

// QueryInput describes a single index scan.
type QueryInput struct {
	Index         keys.Index
	PartitionKey  keys.PartitionKey
	SortCondition *keys.SortCondition
	// ScanForward orders results by ascending sort key when true.
	ScanForward bool
	// Limit caps the number of records returned; zero means no cap.
	Limit int
}

// StorageInspector reports how many records each index holds.
type StorageInspector interface {
	Breakdown(ctx context.Context) (*StorageBreakdown, error)
}

// StorageBreakdown counts the records of the table and of every secondary
// index. Counts from a live store may lag recent writes.
type StorageBreakdown struct {
	TableName  string           `json:"table_name"`
	TableItems int64            `json:"table_items"`
	TableBytes int64            `json:"table_bytes,omitempty"`
	Indexes    map[string]int64 `json:"indexes"`
}
