package storage

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"

	"github.com/narasux/vidvote/pkg/logging"
	"github.com/narasux/vidvote/pkg/model"
	"github.com/narasux/vidvote/pkg/vote"
)

// 建表后等待表可用的最长时间
const tableCreationTimeout = 2 * time.Minute

// ErrBallotConflict 同一身份对同一条目的并发投票，事务条件检查未通过
var ErrBallotConflict = errors.New("concurrent ballot conflict")

// DynamoAPI DynamoStore 用到的 DynamoDB 接口，*dynamodb.Client 即满足
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	dynamodb.DescribeTableAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoStore 基于 DynamoDB 的投票存储
//
// 投票记录的写入与计数增加在同一个事务内完成，投票记录带条件写入，
// 并发修改同一条投票记录时事务整体失败；计数扣减单独以 "> 0" 为条件执行，保证计数不为负
type DynamoStore struct {
	client      DynamoAPI
	tallyTable  string
	ballotTable string
}

var _ vote.Store = (*DynamoStore)(nil)

// NewDynamoStore ...
func NewDynamoStore(client DynamoAPI, tallyTable, ballotTable string) *DynamoStore {
	return &DynamoStore{client: client, tallyTable: tallyTable, ballotTable: ballotTable}
}

// EnsureTables 表不存在则创建，并等待表可用
func (s *DynamoStore) EnsureTables(ctx context.Context) error {
	tables := []*dynamodb.CreateTableInput{
		{
			TableName: aws.String(s.tallyTable),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(s.ballotTable),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("ip"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("vid"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("ip"), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String("vid"), KeyType: types.KeyTypeRange},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
	}

	for _, input := range tables {
		_, err := s.client.CreateTable(ctx, input)
		if err != nil {
			var inUse *types.ResourceInUseException
			if !errors.As(err, &inUse) {
				return errors.Wrapf(err, "create table %s", *input.TableName)
			}
			logging.GetSystemLogger().Infof("dynamodb: table %s already exists", *input.TableName)
		}

		waiter := dynamodb.NewTableExistsWaiter(s.client)
		describe := &dynamodb.DescribeTableInput{TableName: input.TableName}
		if err = waiter.Wait(ctx, describe, tableCreationTimeout); err != nil {
			return errors.Wrapf(err, "wait for table %s", *input.TableName)
		}
	}
	return nil
}

// GetStatus 条目不存在时计数为 0
func (s *DynamoStore) GetStatus(ctx context.Context, identity, itemID string) (vote.Status, error) {
	tally, err := s.getTally(ctx, itemID)
	if err != nil {
		return vote.Status{}, err
	}
	my, err := s.getChoice(ctx, identity, itemID)
	if err != nil {
		return vote.Status{}, err
	}
	return vote.Status{Likes: tally.Likes, Dislikes: tally.Dislikes, My: my}, nil
}

// ApplyBallot ...
func (s *DynamoStore) ApplyBallot(
	ctx context.Context, identity, itemID string, choice vote.Choice,
) (vote.Status, vote.Transition, error) {
	existing, err := s.getChoice(ctx, identity, itemID)
	if err != nil {
		return vote.Status{}, vote.Transition{}, err
	}
	t := vote.Plan(existing, choice)

	ballotWrite, err := s.ballotWrite(identity, itemID, t)
	if err != nil {
		return vote.Status{}, vote.Transition{}, err
	}
	tallyWrite, err := s.tallyIncrement(itemID, t)
	if err != nil {
		return vote.Status{}, vote.Transition{}, err
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{ballotWrite, tallyWrite},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			return vote.Status{}, vote.Transition{}, errors.Wrapf(ErrBallotConflict, "%s", aws.ToString(canceled.Message))
		}
		return vote.Status{}, vote.Transition{}, errors.Wrap(err, "transact ballot")
	}

	for _, c := range t.Decrements() {
		if err = s.decrement(ctx, itemID, c); err != nil {
			return vote.Status{}, vote.Transition{}, err
		}
	}

	tally, err := s.getTally(ctx, itemID)
	if err != nil {
		return vote.Status{}, vote.Transition{}, err
	}
	return vote.Status{Likes: tally.Likes, Dislikes: tally.Dislikes, My: t.After}, t, nil
}

// ListByMinDislikes 全表扫描后排序：踩数倒序，踩数相同时按条目 ID 升序
func (s *DynamoStore) ListByMinDislikes(ctx context.Context, minDislikes int64) ([]model.ItemTally, error) {
	filter := expression.Name("dislikes").GreaterThanEqual(expression.Value(minDislikes))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, errors.Wrap(err, "build filter")
	}

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.tallyTable),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	tallies := []model.ItemTally{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "scan tallies")
		}
		var items []model.ItemTally
		if err = attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, errors.Wrap(err, "unmarshal tallies")
		}
		tallies = append(tallies, items...)
	}

	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].Dislikes != tallies[j].Dislikes {
			return tallies[i].Dislikes > tallies[j].Dislikes
		}
		return tallies[i].ID < tallies[j].ID
	})
	return tallies, nil
}

func (s *DynamoStore) getTally(ctx context.Context, itemID string) (model.ItemTally, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tallyTable),
		Key:            tallyKey(itemID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return model.ItemTally{}, errors.Wrap(err, "get tally")
	}

	tally := model.ItemTally{ID: itemID}
	if len(out.Item) == 0 {
		return tally, nil
	}
	if err = attributevalue.UnmarshalMap(out.Item, &tally); err != nil {
		return model.ItemTally{}, errors.Wrap(err, "unmarshal tally")
	}
	return tally, nil
}

func (s *DynamoStore) getChoice(ctx context.Context, identity, itemID string) (*vote.Choice, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.ballotTable),
		Key:            ballotKey(identity, itemID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "get ballot")
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var ballot model.Ballot
	if err = attributevalue.UnmarshalMap(out.Item, &ballot); err != nil {
		return nil, errors.Wrap(err, "unmarshal ballot")
	}
	choice := vote.Choice(ballot.Type)
	return &choice, nil
}

// 投票记录的条件写入：新建要求记录不存在，撤销与切换要求记录仍是读取时的选项
func (s *DynamoStore) ballotWrite(identity, itemID string, t vote.Transition) (types.TransactWriteItem, error) {
	switch t.Outcome {
	case vote.Cast:
		item, err := attributevalue.MarshalMap(model.Ballot{IP: identity, ItemID: itemID, Type: string(*t.After)})
		if err != nil {
			return types.TransactWriteItem{}, errors.Wrap(err, "marshal ballot")
		}
		expr, err := expression.NewBuilder().
			WithCondition(expression.AttributeNotExists(expression.Name("ip"))).
			Build()
		if err != nil {
			return types.TransactWriteItem{}, errors.Wrap(err, "build ballot condition")
		}
		return types.TransactWriteItem{Put: &types.Put{
			TableName:                 aws.String(s.ballotTable),
			Item:                      item,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: nonEmpty(expr.Values()),
		}}, nil

	case vote.Cancel:
		expr, err := expression.NewBuilder().WithCondition(sameChoice(*t.Before)).Build()
		if err != nil {
			return types.TransactWriteItem{}, errors.Wrap(err, "build ballot condition")
		}
		return types.TransactWriteItem{Delete: &types.Delete{
			TableName:                 aws.String(s.ballotTable),
			Key:                       ballotKey(identity, itemID),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		}}, nil

	default:
		expr, err := expression.NewBuilder().
			WithCondition(sameChoice(*t.Before)).
			WithUpdate(expression.Set(expression.Name("type"), expression.Value(string(*t.After)))).
			Build()
		if err != nil {
			return types.TransactWriteItem{}, errors.Wrap(err, "build ballot update")
		}
		return types.TransactWriteItem{Update: &types.Update{
			TableName:                 aws.String(s.ballotTable),
			Key:                       ballotKey(identity, itemID),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		}}, nil
	}
}

// 计数增加，同时保证计票记录存在且两个计数字段都有值（否则踩数过滤会漏掉该条目）
func (s *DynamoStore) tallyIncrement(itemID string, t vote.Transition) (types.TransactWriteItem, error) {
	update := expression.UpdateBuilder{}
	for _, c := range []vote.Choice{vote.Like, vote.Dislike} {
		var inc int64
		for _, ic := range t.Increments() {
			if ic == c {
				inc = 1
			}
		}
		name := expression.Name(c.Column())
		update = update.Set(name, expression.Plus(expression.IfNotExists(name, expression.Value(0)), expression.Value(inc)))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return types.TransactWriteItem{}, errors.Wrap(err, "build tally update")
	}
	return types.TransactWriteItem{Update: &types.Update{
		TableName:                 aws.String(s.tallyTable),
		Key:                       tallyKey(itemID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}}, nil
}

// 计数减一，计数已为 0 时条件检查失败，视为成功（计数不为负）
func (s *DynamoStore) decrement(ctx context.Context, itemID string, c vote.Choice) error {
	name := expression.Name(c.Column())
	expr, err := expression.NewBuilder().
		WithCondition(name.GreaterThan(expression.Value(0))).
		WithUpdate(expression.Set(name, expression.Minus(name, expression.Value(1)))).
		Build()
	if err != nil {
		return errors.Wrap(err, "build tally decrement")
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tallyTable),
		Key:                       tallyKey(itemID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var failed *types.ConditionalCheckFailedException
		if errors.As(err, &failed) {
			return nil
		}
		return errors.Wrapf(err, "decrement %s", c.Column())
	}
	return nil
}

func sameChoice(c vote.Choice) expression.ConditionBuilder {
	return expression.Name("type").Equal(expression.Value(string(c)))
}

func tallyKey(itemID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: itemID},
	}
}

func ballotKey(identity, itemID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"ip":  &types.AttributeValueMemberS{Value: identity},
		"vid": &types.AttributeValueMemberS{Value: itemID},
	}
}

// DynamoDB 不接受空的 ExpressionAttributeValues
func nonEmpty(values map[string]types.AttributeValue) map[string]types.AttributeValue {
	if len(values) == 0 {
		return nil
	}
	return values
}
