package dynamo

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type avMap = map[string]types.AttributeValue

// fakeDynamo is an in-memory API covering the expression shapes the repos
// emit: equality filters, SET updates and attribute_(not_)exists conditions.
type fakeDynamo struct {
	mu     sync.Mutex
	keys   map[string]string // table -> hash key attribute
	tables map[string]map[string]avMap
}

func newFakeDynamo(keys map[string]string) *fakeDynamo {
	f := &fakeDynamo{keys: keys, tables: map[string]map[string]avMap{}}
	for t := range keys {
		f.tables[t] = map[string]avMap{}
	}
	return f
}

func (f *fakeDynamo) keyOf(table string, item avMap) string {
	return item[f.keys[table]].(*types.AttributeValueMemberS).Value
}

func resolveName(tok string, names map[string]string) string {
	if strings.HasPrefix(tok, "#") {
		return names[tok]
	}
	return tok
}

func checkCondition(cond *string, existing avMap, names map[string]string, values avMap) bool {
	if cond == nil {
		return true
	}
	c := strings.TrimSpace(*cond)
	switch {
	case strings.HasPrefix(c, "attribute_not_exists("):
		attr := resolveName(strings.TrimSuffix(strings.TrimPrefix(c, "attribute_not_exists("), ")"), names)
		_, ok := existing[attr]
		return !ok
	case strings.HasPrefix(c, "attribute_exists("):
		attr := resolveName(strings.TrimSuffix(strings.TrimPrefix(c, "attribute_exists("), ")"), names)
		_, ok := existing[attr]
		return ok
	default:
		parts := strings.SplitN(c, " = ", 2)
		return reflect.DeepEqual(existing[resolveName(parts[0], names)], values[parts[1]])
	}
}

func applySet(item avMap, expr string, names map[string]string, values avMap) {
	for _, assign := range strings.Split(strings.TrimPrefix(expr, "SET "), ", ") {
		parts := strings.SplitN(assign, " = ", 2)
		item[resolveName(parts[0], names)] = values[parts[1]]
	}
}

func matchesFilter(item avMap, expr *string, names map[string]string, values avMap) bool {
	if expr == nil {
		return true
	}
	for _, cond := range strings.Split(*expr, " AND ") {
		parts := strings.SplitN(cond, " = ", 2)
		if !reflect.DeepEqual(item[resolveName(parts[0], names)], values[parts[1]]) {
			return false
		}
	}
	return true
}

func copyItem(in avMap) avMap {
	out := make(avMap, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func condFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := aws.ToString(in.TableName)
	item, ok := f.tables[t][f.keyOf(t, in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := aws.ToString(in.TableName)
	k := f.keyOf(t, in.Item)
	if !checkCondition(in.ConditionExpression, f.tables[t][k], in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
		return nil, condFailed()
	}
	f.tables[t][k] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := aws.ToString(in.TableName)
	k := f.keyOf(t, in.Key)
	existing := f.tables[t][k]
	if !checkCondition(in.ConditionExpression, existing, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
		return nil, condFailed()
	}
	item := copyItem(existing)
	for kk, v := range in.Key {
		item[kk] = v
	}
	applySet(item, aws.ToString(in.UpdateExpression), in.ExpressionAttributeNames, in.ExpressionAttributeValues)
	f.tables[t][k] = item
	return &dynamodb.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := aws.ToString(in.TableName)
	k := f.keyOf(t, in.Key)
	if !checkCondition(in.ConditionExpression, f.tables[t][k], in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
		return nil, condFailed()
	}
	delete(f.tables[t], k)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []avMap
	for _, item := range f.tables[aws.ToString(in.TableName)] {
		if matchesFilter(item, in.FilterExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
			items = append(items, copyItem(item))
		}
	}
	out := &dynamodb.ScanOutput{Count: int32(len(items)), ScannedCount: int32(len(items))}
	if in.Select != types.SelectCount {
		out.Items = items
	}
	return out, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, ti := range in.TransactItems {
		ok := true
		switch {
		case ti.Put != nil:
			t := aws.ToString(ti.Put.TableName)
			ok = checkCondition(ti.Put.ConditionExpression, f.tables[t][f.keyOf(t, ti.Put.Item)], ti.Put.ExpressionAttributeNames, ti.Put.ExpressionAttributeValues)
		case ti.Update != nil:
			t := aws.ToString(ti.Update.TableName)
			ok = checkCondition(ti.Update.ConditionExpression, f.tables[t][f.keyOf(t, ti.Update.Key)], ti.Update.ExpressionAttributeNames, ti.Update.ExpressionAttributeValues)
		case ti.Delete != nil:
			t := aws.ToString(ti.Delete.TableName)
			ok = checkCondition(ti.Delete.ConditionExpression, f.tables[t][f.keyOf(t, ti.Delete.Key)], ti.Delete.ExpressionAttributeNames, ti.Delete.ExpressionAttributeValues)
		}
		code := "None"
		if !ok {
			code = "ConditionalCheckFailed"
			failed = true
		}
		reasons[i] = types.CancellationReason{Code: aws.String(code)}
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String(fmt.Sprintf("Transaction cancelled, %d reasons", len(reasons))),
			CancellationReasons: reasons,
		}
	}

	for _, ti := range in.TransactItems {
		switch {
		case ti.Put != nil:
			t := aws.ToString(ti.Put.TableName)
			f.tables[t][f.keyOf(t, ti.Put.Item)] = copyItem(ti.Put.Item)
		case ti.Update != nil:
			t := aws.ToString(ti.Update.TableName)
			k := f.keyOf(t, ti.Update.Key)
			item := copyItem(f.tables[t][k])
			applySet(item, aws.ToString(ti.Update.UpdateExpression), ti.Update.ExpressionAttributeNames, ti.Update.ExpressionAttributeValues)
			f.tables[t][k] = item
		case ti.Delete != nil:
			t := aws.ToString(ti.Delete.TableName)
			delete(f.tables[t], f.keyOf(t, ti.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}
