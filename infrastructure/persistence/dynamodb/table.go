package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"paperindex/application/ports"
	"paperindex/domain/keys"
	"paperindex/pkg/errors"
)

// authorIndexProjection lists the non-key attributes the author index carries.
var authorIndexProjection = []string{"arxiv_id", "title", "categories", "published"}

// CreateTableInput describes the single table and its three secondary indexes.
func (s *ViewStore) CreateTableInput() *dynamodb.CreateTableInput {
	stringAttr := func(name string) types.AttributeDefinition {
		return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS}
	}
	keyElem := func(name string, kt types.KeyType) types.KeySchemaElement {
		return types.KeySchemaElement{AttributeName: aws.String(name), KeyType: kt}
	}

	return &dynamodb.CreateTableInput{
		TableName:   aws.String(s.tableName),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			stringAttr(keys.AttrPK),
			stringAttr(keys.AttrSK),
			stringAttr(keys.AttrGSI1PK),
			stringAttr(keys.AttrGSI1SK),
			stringAttr(keys.AttrGSI2PK),
			stringAttr(keys.AttrGSI3PK),
			stringAttr(keys.AttrGSI3SK),
		},
		KeySchema: []types.KeySchemaElement{
			keyElem(keys.AttrPK, types.KeyTypeHash),
			keyElem(keys.AttrSK, types.KeyTypeRange),
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(s.indexes.Author),
				KeySchema: []types.KeySchemaElement{
					keyElem(keys.AttrGSI1PK, types.KeyTypeHash),
					keyElem(keys.AttrGSI1SK, types.KeyTypeRange),
				},
				Projection: &types.Projection{
					ProjectionType:   types.ProjectionTypeInclude,
					NonKeyAttributes: authorIndexProjection,
				},
			},
			{
				IndexName: aws.String(s.indexes.PaperID),
				KeySchema: []types.KeySchemaElement{
					keyElem(keys.AttrGSI2PK, types.KeyTypeHash),
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
			{
				IndexName: aws.String(s.indexes.Keyword),
				KeySchema: []types.KeySchemaElement{
					keyElem(keys.AttrGSI3PK, types.KeyTypeHash),
					keyElem(keys.AttrGSI3SK, types.KeyTypeRange),
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
	}
}

// EnsureTable creates the table unless it already exists and waits up to
// maxWait for it to become active. It reports whether the table was created.
func (s *ViewStore) EnsureTable(ctx context.Context, maxWait time.Duration) (bool, error) {
	created := true
	_, err := s.client.CreateTable(ctx, s.CreateTableInput())
	if err != nil {
		if !isErrorCode(err, "ResourceInUseException") {
			return false, classifyError("create table", err)
		}
		created = false
		s.logger.Info("Table already exists", zap.String("table", s.tableName))
	} else {
		s.logger.Info("Creating table",
			zap.String("table", s.tableName),
			zap.Strings("indexes", []string{s.indexes.Author, s.indexes.PaperID, s.indexes.Keyword}),
		)
	}

	waiter := dynamodb.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tableName)}, maxWait); err != nil {
		return created, errors.NewStoreUnavailableError("wait for table", err)
	}
	return created, nil
}

// Breakdown reports item counts of the table and each secondary index.
// DynamoDB refreshes these counts roughly every six hours.
func (s *ViewStore) Breakdown(ctx context.Context) (*ports.StorageBreakdown, error) {
	out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tableName)})
	if err != nil {
		return nil, classifyError("describe table", err)
	}

	table := out.Table
	breakdown := &ports.StorageBreakdown{
		TableName:  s.tableName,
		TableItems: aws.ToInt64(table.ItemCount),
		TableBytes: aws.ToInt64(table.TableSizeBytes),
		Indexes:    make(map[string]int64, len(table.GlobalSecondaryIndexes)),
	}
	for _, gsi := range table.GlobalSecondaryIndexes {
		breakdown.Indexes[aws.ToString(gsi.IndexName)] = aws.ToInt64(gsi.ItemCount)
	}
	return breakdown, nil
}
