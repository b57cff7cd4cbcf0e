package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"paperindex/application/ports"
	"paperindex/domain/config"
	"paperindex/domain/keys"
	"paperindex/domain/projection"
	"paperindex/pkg/errors"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	dynamodb.QueryAPIClient
	dynamodb.DescribeTableAPIClient
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// IndexNames names the table's secondary indexes.
type IndexNames struct {
	Author  string
	PaperID string
	Keyword string
}

// DefaultIndexNames returns the index names the table is provisioned with by default.
func DefaultIndexNames() IndexNames {
	return IndexNames{Author: "AuthorIndex", PaperID: "PaperIdIndex", Keyword: "KeywordIndex"}
}

// Name returns the DynamoDB index name for idx, or "" for the table itself.
func (n IndexNames) Name(idx keys.Index) string {
	switch idx {
	case keys.IndexAuthor:
		return n.Author
	case keys.IndexPaperID:
		return n.PaperID
	case keys.IndexKeyword:
		return n.Keyword
	default:
		return ""
	}
}

// ViewStore implements ports.ViewStore on a single DynamoDB table
type ViewStore struct {
	client    API
	tableName string
	indexes   IndexNames
	logger    *zap.Logger
}

// NewViewStore creates a new ViewStore
func NewViewStore(client API, tableName string, indexes IndexNames, logger *zap.Logger) *ViewStore {
	return &ViewStore{
		client:    client,
		tableName: tableName,
		indexes:   indexes,
		logger:    logger,
	}
}

// TableName returns the backing table's name.
func (s *ViewStore) TableName() string { return s.tableName }

// PutBatch writes records with one BatchWriteItem call. BatchWriteItem
// rejects two requests for the same key, so duplicates collapse to the last
// occurrence; they are identical views of one paper. An unprocessed key
// reports every record that collapsed into it.
func (s *ViewStore) PutBatch(ctx context.Context, records []projection.ViewRecord) ([]projection.ViewRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	byKey := make(map[projection.PrimaryKey][]projection.ViewRecord, len(records))
	order := make([]projection.PrimaryKey, 0, len(records))
	for _, r := range records {
		key := r.PrimaryKey()
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], r)
	}
	if len(order) > config.MaxStoreBatchSize {
		return nil, errors.NewInternalError(fmt.Sprintf("batch of %d records exceeds the limit of %d", len(order), config.MaxStoreBatchSize))
	}

	requests := make([]types.WriteRequest, 0, len(order))
	for _, key := range order {
		group := byKey[key]
		item, err := attributevalue.MarshalMap(group[len(group)-1])
		if err != nil {
			return nil, errors.NewInternalError("failed to marshal view record").WithCause(err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	output, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.tableName: requests},
	})
	if err != nil {
		return nil, classifyError("put batch", err)
	}

	unprocessed := output.UnprocessedItems[s.tableName]
	if len(unprocessed) == 0 {
		return nil, nil
	}

	failed := make([]projection.ViewRecord, 0, len(unprocessed))
	for _, req := range unprocessed {
		if req.PutRequest == nil {
			continue
		}
		key := projection.PrimaryKey{
			PK: stringAttribute(req.PutRequest.Item, keys.AttrPK),
			SK: stringAttribute(req.PutRequest.Item, keys.AttrSK),
		}
		failed = append(failed, byKey[key]...)
	}

	s.logger.Debug("Batch write left unprocessed items",
		zap.Int("requested", len(requests)),
		zap.Int("unprocessed", len(failed)),
	)
	return failed, nil
}

// Query runs a key-condition query, following pagination until the limit is
// reached or the partition is exhausted.
func (s *ViewStore) Query(ctx context.Context, in ports.QueryInput) ([]projection.ViewRecord, error) {
	if in.PartitionKey.IsZero() {
		return nil, errors.NewInternalError("query requires a partition key")
	}

	keyCond := expression.Key(in.Index.PartitionAttribute()).Equal(expression.Value(in.PartitionKey.String()))
	if sortAttr := in.Index.SortAttribute(); sortAttr != "" && in.SortCondition != nil {
		keyCond = keyCond.And(expression.Key(sortAttr).Between(
			expression.Value(in.SortCondition.Low),
			expression.Value(in.SortCondition.High),
		))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, errors.NewInternalError("failed to build key condition").WithCause(err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(in.ScanForward),
	}
	if name := s.indexes.Name(in.Index); name != "" {
		input.IndexName = aws.String(name)
	}
	if in.Limit > 0 {
		input.Limit = aws.Int32(int32(in.Limit))
	}

	records := make([]projection.ViewRecord, 0)
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyError("query", err)
		}

		var batch []projection.ViewRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, errors.NewInternalError("failed to unmarshal view records").WithCause(err)
		}
		records = append(records, batch...)

		if in.Limit > 0 && len(records) >= in.Limit {
			records = records[:in.Limit]
			break
		}
	}

	s.logger.Debug("Query completed",
		zap.String("index", in.Index.String()),
		zap.String("partitionKey", in.PartitionKey.String()),
		zap.Int("count", len(records)),
	)
	return records, nil
}

func stringAttribute(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
