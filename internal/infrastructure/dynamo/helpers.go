package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lost-found-api/internal/domain"
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

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// Fields are emitted in sorted order so the expression is deterministic.
func buildUpdateExpr(updates map[string]interface{}) (updateExpr, error) {
	if len(updates) == 0 {
		return updateExpr{}, fmt.Errorf("no fields to update")
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
	sets := make([]string, 0, len(keys))
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return updateExpr{}, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		sets = append(sets, nameKey+" = "+valueKey)
	}
	ue.Expr = "SET " + strings.Join(sets, ", ")
	return ue, nil
}

// index describes a GSI by its key attributes.
type index struct {
	name string
	hash string
	sort string
}

// statement is a domain.Query compiled into Query (index set) or Scan (index empty) parameters.
type statement struct {
	index   string
	keyCond string
	filter  string
	names   map[string]string
	values  map[string]types.AttributeValue
}

// compile turns q into a statement. The first equality predicate whose field is
// the hash key of one of indexes becomes the key condition; every other predicate
// is evaluated as a filter.
func compile(q domain.Query, indexes []index) (statement, error) {
	st := statement{
		names:  map[string]string{},
		values: map[string]types.AttributeValue{},
	}
	keyPred := -1
	for i, p := range q.Predicates {
		if p.Op != domain.OpEq {
			continue
		}
		for _, ix := range indexes {
			if ix.hash == p.Field {
				keyPred, st.index = i, ix.name
				break
			}
		}
		if keyPred >= 0 {
			break
		}
	}

	var filters []string
	for i, p := range q.Predicates {
		switch p.Op {
		case domain.OpEq, domain.OpGte, domain.OpLte:
		default:
			return statement{}, fmt.Errorf("unsupported operator %q on %s", p.Op, p.Field)
		}
		av, err := attributevalue.Marshal(p.Value)
		if err != nil {
			return statement{}, fmt.Errorf("marshal predicate %s: %w", p.Field, err)
		}
		name, value := fmt.Sprintf("#p%d", i), fmt.Sprintf(":p%d", i)
		st.names[name] = p.Field
		st.values[value] = av
		cond := fmt.Sprintf("%s %s %s", name, p.Op, value)
		if i == keyPred {
			st.keyCond = cond
			continue
		}
		filters = append(filters, cond)
	}
	st.filter = strings.Join(filters, " AND ")
	return st, nil
}

// collect runs st against table and returns every matching item across pages.
func collect(ctx context.Context, client API, table string, st statement) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	if st.index != "" {
		p := dynamodb.NewQueryPaginator(client, st.queryInput(table, ""))
		for p.HasMorePages() {
			out, err := p.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			items = append(items, out.Items...)
		}
		return items, nil
	}
	p := dynamodb.NewScanPaginator(client, st.scanInput(table, ""))
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
	}
	return items, nil
}

// count runs st with Select COUNT and sums the page counts.
func count(ctx context.Context, client API, table string, st statement) (int, error) {
	total := 0
	if st.index != "" {
		p := dynamodb.NewQueryPaginator(client, st.queryInput(table, types.SelectCount))
		for p.HasMorePages() {
			out, err := p.NextPage(ctx)
			if err != nil {
				return 0, err
			}
			total += int(out.Count)
		}
		return total, nil
	}
	p := dynamodb.NewScanPaginator(client, st.scanInput(table, types.SelectCount))
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
	}
	return total, nil
}

func (st statement) queryInput(table string, sel types.Select) *dynamodb.QueryInput {
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(st.index),
		KeyConditionExpression:    aws.String(st.keyCond),
		ExpressionAttributeNames:  st.names,
		ExpressionAttributeValues: st.values,
		Select:                    sel,
	}
	if st.filter != "" {
		in.FilterExpression = aws.String(st.filter)
	}
	return in
}

func (st statement) scanInput(table string, sel types.Select) *dynamodb.ScanInput {
	in := &dynamodb.ScanInput{
		TableName: aws.String(table),
		Select:    sel,
	}
	if st.filter != "" {
		in.FilterExpression = aws.String(st.filter)
		in.ExpressionAttributeNames = st.names
		in.ExpressionAttributeValues = st.values
	}
	return in
}

// getItem loads a single item by key into out. A missing item yields domain.ErrNotFound.
func getItem(ctx context.Context, client API, table string, key map[string]types.AttributeValue, what string, out interface{}) error {
	res, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	if err != nil {
		return err
	}
	if res.Item == nil {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return attributevalue.UnmarshalMap(res.Item, out)
}

// putNew writes doc only if no item with the same hash key exists.
func putNew(ctx context.Context, client API, table, hashKey string, doc interface{}) error {
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return err
	}
	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#k)"),
		ExpressionAttributeNames: map[string]string{"#k": hashKey},
	})
	return err
}

// updateExisting applies updates to the item at key. A missing item yields domain.ErrNotFound
// instead of the upsert DynamoDB would otherwise perform.
func updateExisting(ctx context.Context, client API, table, hashKey, id, what string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#k"] = hashKey
	_, err = client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       strKey(hashKey, id),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return err
}

// sortByTime orders docs by the timestamp returned from at.
func sortByTime[T any](docs []T, at func(T) time.Time, desc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		if desc {
			return at(docs[i]).After(at(docs[j]))
		}
		return at(docs[i]).Before(at(docs[j]))
	})
}
