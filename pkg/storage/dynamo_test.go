package storage

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narasux/vidvote/pkg/model"
	"github.com/narasux/vidvote/pkg/vote"
)

// fakeDynamo 记录请求并返回预置数据，不解析表达式
type fakeDynamo struct {
	sync.Mutex

	items       map[string]map[string]types.AttributeValue
	scanPages   [][]map[string]types.AttributeValue
	transacts   []*dynamodb.TransactWriteItemsInput
	updates     []*dynamodb.UpdateItemInput
	created     []string
	transactErr error
	updateErr   error
	createErr   error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func itemKey(table string, key map[string]types.AttributeValue) string {
	k := table
	for _, name := range []string{"id", "ip", "vid"} {
		if v, ok := key[name].(*types.AttributeValueMemberS); ok {
			k += "/" + v.Value
		}
	}
	return k
}

func (f *fakeDynamo) put(t *testing.T, table string, key map[string]types.AttributeValue, v any) {
	item, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	f.items[itemKey(table, key)] = item
}

func (f *fakeDynamo) GetItem(
	_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options),
) (*dynamodb.GetItemOutput, error) {
	f.Lock()
	defer f.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[itemKey(*params.TableName, params.Key)]}, nil
}

func (f *fakeDynamo) UpdateItem(
	_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options),
) (*dynamodb.UpdateItemOutput, error) {
	f.Lock()
	defer f.Unlock()
	f.updates = append(f.updates, params)
	return &dynamodb.UpdateItemOutput{}, f.updateErr
}

func (f *fakeDynamo) TransactWriteItems(
	_ context.Context, params *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options),
) (*dynamodb.TransactWriteItemsOutput, error) {
	f.Lock()
	defer f.Unlock()
	f.transacts = append(f.transacts, params)
	return &dynamodb.TransactWriteItemsOutput{}, f.transactErr
}

func (f *fakeDynamo) Scan(
	_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options),
) (*dynamodb.ScanOutput, error) {
	page := 0
	if v, ok := params.ExclusiveStartKey["id"].(*types.AttributeValueMemberS); ok {
		page, _ = strconv.Atoi(v.Value)
	}
	out := &dynamodb.ScanOutput{Items: f.scanPages[page]}
	if page+1 < len(f.scanPages) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: strconv.Itoa(page + 1)},
		}
	}
	return out, nil
}

func (f *fakeDynamo) CreateTable(
	_ context.Context, params *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options),
) (*dynamodb.CreateTableOutput, error) {
	f.created = append(f.created, *params.TableName)
	return &dynamodb.CreateTableOutput{}, f.createErr
}

func (f *fakeDynamo) DescribeTable(
	_ context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options),
) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   params.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func TestDynamoStoreCast(t *testing.T) {
	fake := newFakeDynamo()
	store := NewDynamoStore(fake, "votes", "user_votes")
	fake.put(t, "votes", tallyKey("v1"), model.ItemTally{ID: "v1", Likes: 1})

	status, tr, err := store.ApplyBallot(context.Background(), "1.1.1.1", "v1", vote.Like)
	require.NoError(t, err)
	assert.Equal(t, vote.Cast, tr.Outcome)
	assert.Equal(t, int64(1), status.Likes)
	assert.Equal(t, vote.Like, *status.My)

	require.Len(t, fake.transacts, 1)
	items := fake.transacts[0].TransactItems
	require.Len(t, items, 2)

	put := items[0].Put
	require.NotNil(t, put)
	assert.Equal(t, "user_votes", *put.TableName)
	assert.Contains(t, *put.ConditionExpression, "attribute_not_exists")
	assert.Contains(t, lo.Values(put.ExpressionAttributeNames), "ip")
	assert.Nil(t, put.ExpressionAttributeValues)

	var ballot model.Ballot
	require.NoError(t, attributevalue.UnmarshalMap(put.Item, &ballot))
	assert.Equal(t, model.Ballot{IP: "1.1.1.1", ItemID: "v1", Type: "like"}, ballot)

	tally := items[1].Update
	require.NotNil(t, tally)
	assert.Equal(t, "votes", *tally.TableName)
	assert.Contains(t, *tally.UpdateExpression, "if_not_exists")
	assert.ElementsMatch(t, []string{"likes", "dislikes"}, lo.Values(tally.ExpressionAttributeNames))

	// 首次投票没有扣减
	assert.Empty(t, fake.updates)
}

func TestDynamoStoreSwitch(t *testing.T) {
	fake := newFakeDynamo()
	store := NewDynamoStore(fake, "votes", "user_votes")
	fake.put(t, "user_votes", ballotKey("1.1.1.1", "v1"), model.Ballot{IP: "1.1.1.1", ItemID: "v1", Type: "like"})

	status, tr, err := store.ApplyBallot(context.Background(), "1.1.1.1", "v1", vote.Dislike)
	require.NoError(t, err)
	assert.Equal(t, vote.Switch, tr.Outcome)
	assert.Equal(t, vote.Dislike, *status.My)

	update := fake.transacts[0].TransactItems[0].Update
	require.NotNil(t, update)
	assert.Equal(t, "user_votes", *update.TableName)
	assert.NotNil(t, update.ConditionExpression)
	assert.Contains(t, lo.Values(update.ExpressionAttributeNames), "type")
	assert.Contains(t, update.ExpressionAttributeValues, ":0")

	// 原选项计数扣减，带 "> 0" 条件
	require.Len(t, fake.updates, 1)
	dec := fake.updates[0]
	assert.Equal(t, "votes", *dec.TableName)
	assert.Contains(t, *dec.ConditionExpression, ">")
	assert.Equal(t, []string{"likes"}, lo.Values(dec.ExpressionAttributeNames))
}

func TestDynamoStoreCancel(t *testing.T) {
	fake := newFakeDynamo()
	store := NewDynamoStore(fake, "votes", "user_votes")
	fake.put(t, "user_votes", ballotKey("1.1.1.1", "v1"), model.Ballot{IP: "1.1.1.1", ItemID: "v1", Type: "dislike"})

	// 计数已为 0 时扣减的条件检查失败，不视为错误
	fake.updateErr = &types.ConditionalCheckFailedException{Message: aws.String("dislikes is 0")}

	status, tr, err := store.ApplyBallot(context.Background(), "1.1.1.1", "v1", vote.Dislike)
	require.NoError(t, err)
	assert.Equal(t, vote.Cancel, tr.Outcome)
	assert.Nil(t, status.My)
	assert.Equal(t, int64(0), status.Dislikes)

	del := fake.transacts[0].TransactItems[0].Delete
	require.NotNil(t, del)
	assert.Equal(t, ballotKey("1.1.1.1", "v1"), del.Key)
	assert.NotNil(t, del.ConditionExpression)
}

func TestDynamoStoreErrors(t *testing.T) {
	ctx := context.Background()

	fake := newFakeDynamo()
	fake.transactErr = &types.TransactionCanceledException{Message: aws.String("ConditionalCheckFailed")}
	store := NewDynamoStore(fake, "votes", "user_votes")
	_, _, err := store.ApplyBallot(ctx, "1.1.1.1", "v1", vote.Like)
	assert.ErrorIs(t, err, ErrBallotConflict)

	fake = newFakeDynamo()
	fake.put(t, "user_votes", ballotKey("1.1.1.1", "v1"), model.Ballot{IP: "1.1.1.1", ItemID: "v1", Type: "like"})
	fake.updateErr = errors.New("throttled")
	store = NewDynamoStore(fake, "votes", "user_votes")
	_, _, err = store.ApplyBallot(ctx, "1.1.1.1", "v1", vote.Like)
	assert.EqualError(t, errors.Cause(err), "throttled")
}

func TestDynamoStoreGetStatus(t *testing.T) {
	fake := newFakeDynamo()
	store := NewDynamoStore(fake, "votes", "user_votes")

	status, err := store.GetStatus(context.Background(), "1.1.1.1", "v1")
	require.NoError(t, err)
	assert.Equal(t, vote.Status{}, status)

	fake.put(t, "votes", tallyKey("v1"), model.ItemTally{ID: "v1", Likes: 4, Dislikes: 2})
	fake.put(t, "user_votes", ballotKey("1.1.1.1", "v1"), model.Ballot{IP: "1.1.1.1", ItemID: "v1", Type: "dislike"})

	status, err = store.GetStatus(context.Background(), "1.1.1.1", "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), status.Likes)
	assert.Equal(t, int64(2), status.Dislikes)
	assert.Equal(t, vote.Dislike, *status.My)
}

func TestDynamoStoreListByMinDislikes(t *testing.T) {
	fake := newFakeDynamo()
	store := NewDynamoStore(fake, "votes", "user_votes")

	marshal := func(tally model.ItemTally) map[string]types.AttributeValue {
		item, err := attributevalue.MarshalMap(tally)
		require.NoError(t, err)
		return item
	}
	fake.scanPages = [][]map[string]types.AttributeValue{
		{marshal(model.ItemTally{ID: "c", Dislikes: 12}), marshal(model.ItemTally{ID: "b", Dislikes: 30})},
		{marshal(model.ItemTally{ID: "a", Dislikes: 12, Likes: 5})},
	}

	tallies, err := store.ListByMinDislikes(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, lo.Map(tallies, func(t model.ItemTally, _ int) string {
		return t.ID
	}))
	assert.Equal(t, int64(5), tallies[1].Likes)
}

func TestDynamoStoreEnsureTables(t *testing.T) {
	fake := newFakeDynamo()
	store := NewDynamoStore(fake, "votes", "user_votes")

	require.NoError(t, store.EnsureTables(context.Background()))
	assert.Equal(t, []string{"votes", "user_votes"}, fake.created)

	fake.createErr = &types.ResourceInUseException{Message: aws.String("exists")}
	assert.NoError(t, store.EnsureTables(context.Background()))

	fake.createErr = errors.New("access denied")
	assert.Error(t, store.EnsureTables(context.Background()))
}
