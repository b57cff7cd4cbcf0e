package dynamodb

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paperindex/application/ports"
	"paperindex/domain/keys"
	"paperindex/domain/keywords"
	"paperindex/domain/paper"
	"paperindex/domain/projection"
	"paperindex/pkg/errors"
)

// fakeAPI records requests and replays canned responses.
type fakeAPI struct {
	batchInputs  []*dynamodb.BatchWriteItemInput
	unprocessed  func(requests []types.WriteRequest) []types.WriteRequest
	batchErr     error
	queryInputs  []*dynamodb.QueryInput
	pages        [][]projection.ViewRecord
	queryErr     error
	createErr    error
	createCalled bool
	describe     *types.TableDescription
}

func (f *fakeAPI) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.batchInputs = append(f.batchInputs, in)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := &dynamodb.BatchWriteItemOutput{}
	if f.unprocessed != nil {
		for table, reqs := range in.RequestItems {
			if left := f.unprocessed(reqs); len(left) > 0 {
				out.UnprocessedItems = map[string][]types.WriteRequest{table: left}
			}
		}
	}
	return out, nil
}

func (f *fakeAPI) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryInputs = append(f.queryInputs, in)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	page := len(f.queryInputs) - 1
	if page >= len(f.pages) {
		return &dynamodb.QueryOutput{}, nil
	}
	items := make([]map[string]types.AttributeValue, 0, len(f.pages[page]))
	for _, r := range f.pages[page] {
		item, err := attributevalue.MarshalMap(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	out := &dynamodb.QueryOutput{Items: items}
	if page < len(f.pages)-1 {
		out.LastEvaluatedKey = map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: "next"}}
	}
	return out, nil
}

func (f *fakeAPI) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{Table: f.describe}, nil
}

func (f *fakeAPI) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.createCalled = true
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &dynamodb.CreateTableOutput{}, nil
}

func newTestStore(api *fakeAPI) *ViewStore {
	return NewViewStore(api, "arxiv-papers", DefaultIndexNames(), zap.NewNop())
}

func projectSample(t *testing.T, p paper.Paper) []projection.ViewRecord {
	t.Helper()
	views, err := projection.NewProjector(keywords.NewDefaultExtractor(), 10).Project(p)
	require.NoError(t, err)
	return views
}

func TestPutBatch_CollapsesDuplicateKeys(t *testing.T) {
	api := &fakeAPI{}
	views := projectSample(t, paper.Paper{
		ID: "0001", Authors: []string{"Ann", "Ann"}, Categories: []string{"cs.LG", "cs.LG"}, Published: "2024-01-01",
	})
	require.Len(t, views, 4)

	failed, err := newTestStore(api).PutBatch(context.Background(), views)
	require.NoError(t, err)
	assert.Empty(t, failed)

	require.Len(t, api.batchInputs, 1)
	requests := api.batchInputs[0].RequestItems["arxiv-papers"]
	assert.Len(t, requests, 2)

	var stored projection.ViewRecord
	require.NoError(t, attributevalue.UnmarshalMap(requests[0].PutRequest.Item, &stored))
	assert.Equal(t, views[0].PrimaryKey(), stored.PrimaryKey())
	assert.Equal(t, views[0].GSI2PK, stored.GSI2PK)
	assert.Equal(t, []string{"Ann", "Ann"}, stored.Authors)
	assert.NotContains(t, requests[0].PutRequest.Item, "GSI1PK")
	assert.Equal(t, &types.AttributeValueMemberS{Value: "CATEGORY"}, requests[0].PutRequest.Item["type"])
}

func TestPutBatch_ReturnsUnprocessedRecords(t *testing.T) {
	api := &fakeAPI{
		unprocessed: func(reqs []types.WriteRequest) []types.WriteRequest { return reqs[len(reqs)-1:] },
	}
	views := projectSample(t, paper.Paper{
		ID: "0001", Authors: []string{"Ann"}, Categories: []string{"cs.LG"}, Published: "2024-01-01",
	})

	failed, err := newTestStore(api).PutBatch(context.Background(), views)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, views[1], failed[0])
}

func TestPutBatch_UnprocessedDuplicateReportsEveryView(t *testing.T) {
	api := &fakeAPI{
		unprocessed: func(reqs []types.WriteRequest) []types.WriteRequest { return reqs },
	}
	views := projectSample(t, paper.Paper{
		ID: "0001", Categories: []string{"cs.LG", "cs.LG"}, Published: "2024-01-01",
	})
	require.Len(t, views, 2)

	failed, err := newTestStore(api).PutBatch(context.Background(), views)
	require.NoError(t, err)
	assert.Len(t, api.batchInputs[0].RequestItems["arxiv-papers"], 1)
	assert.Equal(t, views, failed)
}

func TestPutBatch_ClassifiesErrors(t *testing.T) {
	throttled := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}
	_, err := newTestStore(&fakeAPI{batchErr: throttled}).PutBatch(context.Background(), []projection.ViewRecord{{PK: "a", SK: "b"}})
	assert.True(t, errors.IsStoreUnavailable(err))

	invalid := &smithy.GenericAPIError{Code: "ValidationException", Message: "bad item"}
	_, err = newTestStore(&fakeAPI{batchErr: invalid}).PutBatch(context.Background(), []projection.ViewRecord{{PK: "a", SK: "b"}})
	assert.False(t, errors.IsRetryable(err))
	assert.Equal(t, "ValidationException", errors.GetAppError(err).Code)
}

func TestQuery_DateRangeBuildsBetween(t *testing.T) {
	api := &fakeAPI{}
	_, err := newTestStore(api).Query(context.Background(), ports.QueryInput{
		Index:         keys.IndexPrimary,
		PartitionKey:  keys.Category("cs.LG"),
		SortCondition: keys.DateRange("2024-01-01", "2024-01-02"),
		ScanForward:   true,
	})
	require.NoError(t, err)

	require.Len(t, api.queryInputs, 1)
	in := api.queryInputs[0]
	assert.Nil(t, in.IndexName)
	assert.Nil(t, in.Limit)
	assert.True(t, aws.ToBool(in.ScanIndexForward))
	assert.Contains(t, aws.ToString(in.KeyConditionExpression), "BETWEEN")

	var values []string
	for _, v := range in.ExpressionAttributeValues {
		values = append(values, v.(*types.AttributeValueMemberS).Value)
	}
	assert.ElementsMatch(t, []string{"CATEGORY#cs.LG", "2024-01-01#", "2024-01-02#\U0010FFFF"}, values)

	var names []string
	for _, n := range in.ExpressionAttributeNames {
		names = append(names, n)
	}
	assert.ElementsMatch(t, []string{"PK", "SK"}, names)
}

func TestQuery_SecondaryIndexAndLimitAcrossPages(t *testing.T) {
	page1 := projectSample(t, paper.Paper{ID: "1", Abstract: "graph", Published: "2024-01-03"})
	page2 := append(
		projectSample(t, paper.Paper{ID: "2", Abstract: "graph", Published: "2024-01-02"}),
		projectSample(t, paper.Paper{ID: "3", Abstract: "graph", Published: "2024-01-01"})...,
	)
	api := &fakeAPI{pages: [][]projection.ViewRecord{page1, page2}}

	got, err := newTestStore(api).Query(context.Background(), ports.QueryInput{
		Index:        keys.IndexKeyword,
		PartitionKey: keys.Keyword("graph"),
		Limit:        2,
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ArxivID)
	assert.Equal(t, "2", got[1].ArxivID)
	assert.Equal(t, "graph", got[1].Token)
	require.Len(t, api.queryInputs, 2)
	assert.Equal(t, "KeywordIndex", aws.ToString(api.queryInputs[0].IndexName))
	assert.Equal(t, int32(2), aws.ToInt32(api.queryInputs[0].Limit))
	assert.False(t, aws.ToBool(api.queryInputs[0].ScanIndexForward))
}

func TestQuery_PaperIDIndexIgnoresSortCondition(t *testing.T) {
	api := &fakeAPI{}
	_, err := newTestStore(api).Query(context.Background(), ports.QueryInput{
		Index:         keys.IndexPaperID,
		PartitionKey:  keys.ArxivID("0001"),
		SortCondition: keys.DateRange("2024-01-01", "2024-01-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "PaperIdIndex", aws.ToString(api.queryInputs[0].IndexName))
	assert.NotContains(t, aws.ToString(api.queryInputs[0].KeyConditionExpression), "BETWEEN")
}

func TestQuery_TimeoutIsTransient(t *testing.T) {
	api := &fakeAPI{queryErr: context.DeadlineExceeded}
	records, err := newTestStore(api).Query(context.Background(), ports.QueryInput{PartitionKey: keys.Category("cs.LG")})
	assert.Nil(t, records)
	assert.True(t, errors.IsStoreUnavailable(err))
}

func TestClassifyError(t *testing.T) {
	assert.Nil(t, classifyError("op", nil))
	assert.True(t, errors.IsStoreUnavailable(classifyError("op", &smithy.GenericAPIError{Code: "ThrottlingException"})))
	assert.True(t, errors.IsStoreUnavailable(classifyError("op", context.Canceled)))
	assert.False(t, errors.IsRetryable(classifyError("op", &smithy.GenericAPIError{Code: "ResourceNotFoundException"})))
	assert.False(t, errors.IsRetryable(classifyError("op", stderrors.New("boom"))))
}

func TestCreateTableInput(t *testing.T) {
	in := newTestStore(&fakeAPI{}).CreateTableInput()

	assert.Equal(t, "arxiv-papers", aws.ToString(in.TableName))
	assert.Equal(t, types.BillingModePayPerRequest, in.BillingMode)
	assert.Len(t, in.AttributeDefinitions, 7)
	require.Len(t, in.GlobalSecondaryIndexes, 3)

	author := in.GlobalSecondaryIndexes[0]
	assert.Equal(t, "AuthorIndex", aws.ToString(author.IndexName))
	assert.Equal(t, types.ProjectionTypeInclude, author.Projection.ProjectionType)
	assert.Equal(t, []string{"arxiv_id", "title", "categories", "published"}, author.Projection.NonKeyAttributes)

	paperID := in.GlobalSecondaryIndexes[1]
	assert.Equal(t, "PaperIdIndex", aws.ToString(paperID.IndexName))
	assert.Len(t, paperID.KeySchema, 1)
	assert.Equal(t, "GSI2PK", aws.ToString(paperID.KeySchema[0].AttributeName))

	keyword := in.GlobalSecondaryIndexes[2]
	assert.Equal(t, "KeywordIndex", aws.ToString(keyword.IndexName))
	assert.Equal(t, "GSI3SK", aws.ToString(keyword.KeySchema[1].AttributeName))
}

func TestEnsureTable_ExistingTable(t *testing.T) {
	api := &fakeAPI{
		createErr: &smithy.GenericAPIError{Code: "ResourceInUseException"},
		describe:  &types.TableDescription{TableStatus: types.TableStatusActive},
	}
	created, err := newTestStore(api).EnsureTable(context.Background(), time.Second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, api.createCalled)
}

func TestBreakdown(t *testing.T) {
	api := &fakeAPI{describe: &types.TableDescription{
		ItemCount:      aws.Int64(42),
		TableSizeBytes: aws.Int64(4096),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndexDescription{
			{IndexName: aws.String("AuthorIndex"), ItemCount: aws.Int64(10)},
			{IndexName: aws.String("KeywordIndex"), ItemCount: aws.Int64(20)},
		},
	}}

	breakdown, err := newTestStore(api).Breakdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), breakdown.TableItems)
	assert.Equal(t, int64(4096), breakdown.TableBytes)
	assert.Equal(t, int64(20), breakdown.Indexes["KeywordIndex"])
	assert.Equal(t, "arxiv-papers", breakdown.TableName)
}
