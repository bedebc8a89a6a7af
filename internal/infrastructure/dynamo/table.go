package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/documentor-api/internal/domain"
)

// API is the subset of *dynamodb.Client the repositories use.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// table holds the CRUD and listing logic shared by every single-key entity.
type table[T any] struct {
	api         API
	name        string
	entity      string
	pk          string
	search      []string
	defaultSort string
	// touch stamps updated_at on every update.
	touch bool
}

func (t table[T]) create(ctx context.Context, item *T) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", t.entity, err)
	}
	_, err = t.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(t.name),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": t.pk},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("%s already exists: %w", t.entity, domain.ErrConflict)
	}
	return err
}

func (t table[T]) get(ctx context.Context, id string) (*T, error) {
	out, err := t.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key:       strKey(t.pk, id),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%s %s: %w", t.entity, id, domain.ErrNotFound)
	}
	var v T
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", t.entity, err)
	}
	return &v, nil
}

// update applies a partial SET to an existing item and returns the result.
func (t table[T]) update(ctx context.Context, id string, updates map[string]interface{}) (*T, error) {
	if t.touch {
		updates[fieldUpdatedAt] = time.Now().UTC()
	}
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	ue.Names["#pk"] = t.pk
	out, err := t.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       strKey(t.pk, id),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return nil, fmt.Errorf("%s %s: %w", t.entity, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := attributevalue.UnmarshalMap(out.Attributes, &v); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", t.entity, err)
	}
	return &v, nil
}

func (t table[T]) delete(ctx context.Context, id string) error {
	_, err := t.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(t.name),
		Key:                      strKey(t.pk, id),
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": t.pk},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("%s %s: %w", t.entity, id, domain.ErrNotFound)
	}
	return err
}

// scan reads every item matching filters, following pagination.
func (t table[T]) scan(ctx context.Context, filters map[string]any) ([]map[string]types.AttributeValue, error) {
	input, err := t.scanInput(filters)
	if err != nil {
		return nil, err
	}
	var items []map[string]types.AttributeValue
	p := dynamodb.NewScanPaginator(t.api, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		items = append(items, out.Items...)
	}
	return items, nil
}

func (t table[T]) scanInput(filters map[string]any) (*dynamodb.ScanInput, error) {
	fe, err := buildFilterExpr(filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	input := &dynamodb.ScanInput{TableName: aws.String(t.name)}
	if fe.Expr != "" {
		input.FilterExpression = aws.String(fe.Expr)
		input.ExpressionAttributeNames = fe.Names
		input.ExpressionAttributeValues = fe.Values
	}
	return input, nil
}

// list applies filters in DynamoDB, then search, sort and pagination in
// memory. It returns the requested page and the total match count.
func (t table[T]) list(ctx context.Context, q domain.ListQuery) ([]T, int, error) {
	q = q.Normalize(t.defaultSort)
	items, err := t.scan(ctx, q.Filters)
	if err != nil {
		return nil, 0, err
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		matched := items[:0]
		for _, it := range items {
			if matchesSearch(it, t.search, term) {
				matched = append(matched, it)
			}
		}
		items = matched
	}
	sortItems(items, q.Sort)
	total := len(items)

	out := make([]T, 0, q.Limit)
	if err := attributevalue.UnmarshalListOfMaps(page(items, q.Page, q.Limit), &out); err != nil {
		return nil, 0, fmt.Errorf("unmarshal %s list: %w", t.entity, err)
	}
	return out, total, nil
}

func (t table[T]) count(ctx context.Context, filters map[string]any) (int, error) {
	input, err := t.scanInput(filters)
	if err != nil {
		return 0, err
	}
	input.Select = types.SelectCount
	total := 0
	p := dynamodb.NewScanPaginator(t.api, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", t.name, err)
		}
		total += int(out.Count)
	}
	return total, nil
}

// findOne returns the first item whose attr equals value.
func (t table[T]) findOne(ctx context.Context, attr string, value any) (*T, error) {
	items, err := t.scan(ctx, map[string]any{attr: value})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s with %s: %w", t.entity, attr, domain.ErrNotFound)
	}
	var v T
	if err := attributevalue.UnmarshalMap(items[0], &v); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", t.entity, err)
	}
	return &v, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
