package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lost-found-api/internal/config"
	"github.com/rs/zerolog/log"
)

// Secondary indexes, keyed by the equality attribute they serve.
var (
	itemIndexes = []index{
		{name: "status-date-index", hash: "status", sort: "date"},
		{name: "category-date-index", hash: "category", sort: "date"},
		{name: "posted_by-date-index", hash: "posted_by", sort: "date"},
	}
	matchIndexes = []index{
		{name: "lost_item_id-index", hash: "lost_item_id"},
		{name: "found_item_id-index", hash: "found_item_id"},
	}
	notificationIndexes = []index{
		{name: "user_id-created_at-index", hash: "user_id", sort: "created_at"},
	}
)

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist.
// Tables that already exist are skipped.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	createTable(ctx, client, tableInput(tables.Items, "item_id", itemIndexes))
	createTable(ctx, client, tableInput(tables.Matches, "match_id", matchIndexes))
	createTable(ctx, client, tableInput(tables.Notifications, "notification_id", notificationIndexes))
	createTable(ctx, client, tableInput(tables.Users, "user_id", nil))
}

// tableInput declares a pay-per-request table with a string hash key and the given GSIs.
func tableInput(table, hashKey string, indexes []index) *dynamodb.CreateTableInput {
	attrs := []string{hashKey}
	seen := map[string]bool{hashKey: true}
	gsis := make([]types.GlobalSecondaryIndex, 0, len(indexes))
	for _, ix := range indexes {
		for _, a := range []string{ix.hash, ix.sort} {
			if a != "" && !seen[a] {
				seen[a] = true
				attrs = append(attrs, a)
			}
		}
		gsis = append(gsis, gsi(ix.name, ix.hash, ix.sort))
	}

	defs := make([]types.AttributeDefinition, 0, len(attrs))
	for _, a := range attrs {
		defs = append(defs, types.AttributeDefinition{AttributeName: aws.String(a), AttributeType: types.ScalarAttributeTypeS})
	}

	in := &dynamodb.CreateTableInput{
		TableName:            aws.String(table),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: defs,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
		},
	}
	if len(gsis) > 0 {
		in.GlobalSecondaryIndexes = gsis
	}
	return in
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			log.Warn().Err(err).Str("table", *input.TableName).Msg("could not create table")
		}
		return
	}
	log.Info().Str("table", *input.TableName).Msg("created table")
}
