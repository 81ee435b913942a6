package storage

import (
	"context"
	"log"
	"sync"

	"github.com/narasux/vidvote/pkg/envs"
	"github.com/narasux/vidvote/pkg/infras/database"
	"github.com/narasux/vidvote/pkg/infras/dynamo"
	"github.com/narasux/vidvote/pkg/logging"
	// load migration package to register migrations
	_ "github.com/narasux/vidvote/pkg/migration"
	"github.com/narasux/vidvote/pkg/vote"
)

const (
	// BackendSQL 关系型数据库
	BackendSQL = "sql"
	// BackendDynamoDB AWS DynamoDB
	BackendDynamoDB = "dynamodb"
)

var (
	voteSvc  = vote.NewService(nil)
	svcMutex sync.RWMutex
	initOnce sync.Once
)

// VoteService 获取投票服务，存储未初始化时各操作返回 vote.ErrStoreNotBound
func VoteService() *vote.Service {
	svcMutex.RLock()
	defer svcMutex.RUnlock()
	return voteSvc
}

// SetVoteStore 指定投票存储
func SetVoteStore(store vote.Store) {
	svcMutex.Lock()
	defer svcMutex.Unlock()
	voteSvc = vote.NewService(store)
}

// InitVoteStore 按配置初始化投票存储
func InitVoteStore(ctx context.Context) {
	initOnce.Do(func() {
		store, err := newStore(ctx, envs.StoreBackend)
		if err != nil {
			log.Fatalf("failed to init vote store %s: %s", envs.StoreBackend, err)
		}
		SetVoteStore(store)
		logging.GetSystemLogger().Infof("vote store: %s ready", envs.StoreBackend)
	})
}

func newStore(ctx context.Context, backend string) (vote.Store, error) {
	switch backend {
	case BackendDynamoDB:
		dynamo.InitClient(ctx)
		store := NewDynamoStore(dynamo.Client(), envs.DynamoDBTallyTable, envs.DynamoDBBallotTable)
		if envs.AutoMigrate {
			if err := store.EnsureTables(ctx); err != nil {
				return nil, err
			}
		}
		return store, nil
	default:
		database.InitDBClient(ctx)
		if envs.AutoMigrate {
			if err := database.RunMigrate(ctx, ""); err != nil {
				return nil, err
			}
		}
		return NewSQLStore(database.Client(context.Background())), nil
	}
}
