package dynamo

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// updateExpr is a SET expression with its placeholder maps.
type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts field->value into a SET expression. Fields are
// emitted in sorted order so the expression is deterministic.
func buildUpdateExpr(updates map[string]interface{}) (updateExpr, error) {
	if len(updates) == 0 {
		return updateExpr{}, errors.New("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ue := updateExpr{
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	parts := make([]string, 0, len(keys))
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return updateExpr{}, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		parts = append(parts, nameKey+" = "+valueKey)
	}
	ue.Expr = "SET " + strings.Join(parts, ", ")
	return ue, nil
}

// filterExpr is an AND of equality conditions, or empty when there are none.
type filterExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

func buildFilterExpr(filters map[string]any) (filterExpr, error) {
	if len(filters) == 0 {
		return filterExpr{}, nil
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fe := filterExpr{
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	parts := make([]string, 0, len(keys))
	for i, k := range keys {
		nameKey := fmt.Sprintf("#q%d", i)
		valueKey := fmt.Sprintf(":q%d", i)
		av, err := attributevalue.Marshal(filters[k])
		if err != nil {
			return filterExpr{}, fmt.Errorf("marshal filter %s: %w", k, err)
		}
		fe.Names[nameKey] = k
		fe.Values[valueKey] = av
		parts = append(parts, nameKey+" = "+valueKey)
	}
	fe.Expr = strings.Join(parts, " AND ")
	return fe, nil
}

// matchesSearch reports whether any of fields contains term, ignoring case.
func matchesSearch(item map[string]types.AttributeValue, fields []string, term string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if s, ok := item[f].(*types.AttributeValueMemberS); ok {
			if strings.Contains(strings.ToLower(s.Value), term) {
				return true
			}
		}
	}
	return false
}

// sortItems orders items by the field named in spec ("field" or "-field").
// Items missing the field sort last regardless of direction.
func sortItems(items []map[string]types.AttributeValue, spec string) {
	field := strings.TrimPrefix(spec, "-")
	desc := strings.HasPrefix(spec, "-")
	sort.SliceStable(items, func(i, j int) bool {
		a, aok := items[i][field]
		b, bok := items[j][field]
		if !aok || !bok {
			return aok && !bok
		}
		c := compareAV(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareAV(a, b types.AttributeValue) int {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		if !ok {
			return 0
		}
		ta, errA := time.Parse(time.RFC3339Nano, av.Value)
		tb, errB := time.Parse(time.RFC3339Nano, bv.Value)
		if errA == nil && errB == nil {
			return ta.Compare(tb)
		}
		return strings.Compare(av.Value, bv.Value)
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		if !ok {
			return 0
		}
		fa, _ := strconv.ParseFloat(av.Value, 64)
		fb, _ := strconv.ParseFloat(bv.Value, 64)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		if !ok || av.Value == bv.Value {
			return 0
		}
		if !av.Value {
			return -1
		}
		return 1
	}
	return 0
}

// page returns the slice of items for a 1-based page of size limit.
func page[T any](items []T, pageNum, limit int) []T {
	start := (pageNum - 1) * limit
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
