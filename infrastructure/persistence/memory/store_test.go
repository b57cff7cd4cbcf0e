package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperindex/application/ports"
	"paperindex/domain/keys"
	"paperindex/domain/projection"
	"paperindex/pkg/errors"
)

func categoryView(category, published, id string) projection.ViewRecord {
	return projection.ViewRecord{
		Kind:      projection.ViewCategory,
		PK:        keys.Category(category).String(),
		SK:        keys.SortKey(published, id),
		GSI2PK:    keys.ArxivID(id).String(),
		ArxivID:   id,
		Published: published,
	}
}

func TestStore_UpsertByPrimaryKey(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	v := categoryView("cs.LG", "2024-01-01", "0001")
	_, err := store.PutBatch(ctx, []projection.ViewRecord{v, v})
	require.NoError(t, err)

	v.Title = "updated"
	failed, err := store.PutBatch(ctx, []projection.ViewRecord{v})
	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Equal(t, 1, store.Len())

	got, err := store.Query(ctx, ports.QueryInput{Index: keys.IndexPrimary, PartitionKey: keys.Category("cs.LG")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "updated", got[0].Title)
}

func TestStore_QueryOrderingAndRange(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_, err := store.PutBatch(ctx, []projection.ViewRecord{
		categoryView("cs.LG", "2024-01-01", "a"),
		categoryView("cs.LG", "2024-01-03", "b"),
		categoryView("cs.LG", "2024-01-02", "c"),
		categoryView("cs.AI", "2024-01-02", "d"),
	})
	require.NoError(t, err)

	desc, err := store.Query(ctx, ports.QueryInput{Index: keys.IndexPrimary, PartitionKey: keys.Category("cs.LG"), Limit: 2})
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, "b", desc[0].ArxivID)
	assert.Equal(t, "c", desc[1].ArxivID)

	asc, err := store.Query(ctx, ports.QueryInput{
		Index:         keys.IndexPrimary,
		PartitionKey:  keys.Category("cs.LG"),
		SortCondition: keys.DateRange("2024-01-02", "2024-01-03"),
		ScanForward:   true,
	})
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, "c", asc[0].ArxivID)
	assert.Equal(t, "b", asc[1].ArxivID)

	none, err := store.Query(ctx, ports.QueryInput{Index: keys.IndexPrimary, PartitionKey: keys.Category("math.CO")})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStore_SecondaryIndexWithoutSortKey(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_, err := store.PutBatch(ctx, []projection.ViewRecord{
		categoryView("cs.LG", "2024-01-01", "0001"),
		categoryView("cs.AI", "2024-01-01", "0001"),
	})
	require.NoError(t, err)

	got, err := store.Query(ctx, ports.QueryInput{Index: keys.IndexPaperID, PartitionKey: keys.ArxivID("0001")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "CATEGORY#cs.AI", got[0].PK)

	breakdown, err := store.Breakdown(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), breakdown.TableItems)
	assert.Equal(t, int64(2), breakdown.Indexes["paper_id"])
	assert.Zero(t, breakdown.Indexes["author"])
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Query(ctx, ports.QueryInput{PartitionKey: keys.Category("cs.LG")})
	assert.True(t, errors.IsStoreUnavailable(err))
}
