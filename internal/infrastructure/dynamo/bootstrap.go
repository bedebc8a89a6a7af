package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/documentor-api/internal/config"
)

type tableCreator interface {
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Bootstrap creates every table if it does not exist yet. Safe to call on
// each startup.
func Bootstrap(ctx context.Context, client tableCreator, tables config.DynamoTables) {
	for _, t := range bootstrapTables(tables) {
		createTable(ctx, client, hashKeyTable(t.name, t.pk))
	}
}

type tableDef struct {
	name string
	pk   string
}

func bootstrapTables(tables config.DynamoTables) []tableDef {
	return []tableDef{
		{tables.Users, "user_id"},
		{tables.UserEmails, "email"},
		{tables.Apps, "app_id"},
		{tables.Packages, "package_id"},
		{tables.APIDocs, "api_doc_id"},
		{tables.Transactions, "transaction_id"},
		{tables.Subscriptions, "subscription_id"},
		{tables.Histories, "history_id"},
		{tables.Logs, "log_id"},
	}
}

func hashKeyTable(name, pk string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(pk), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(pk), KeyType: types.KeyTypeHash},
		},
	}
}

func createTable(ctx context.Context, client tableCreator, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", *input.TableName, "err", err)
		}
	} else {
		slog.Info("created table", "table", *input.TableName)
	}
}
