package dynamo

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/narasux/vidvote/pkg/envs"
	"github.com/narasux/vidvote/pkg/logging"
)

var (
	client   *dynamodb.Client
	initOnce sync.Once
)

// Client 获取 DynamoDB 客户端
func Client() *dynamodb.Client {
	if client == nil {
		log.Fatal("dynamodb client not init")
	}
	return client
}

// InitClient 初始化 DynamoDB 客户端，凭证与区域沿用 AWS SDK 默认的加载链（环境变量，共享配置文件...）
func InitClient(ctx context.Context) {
	if client != nil {
		return
	}
	initOnce.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("failed to load aws config: %s", err)
		}
		client = New(cfg, envs.DynamoDBEndpoint)

		logging.GetSystemLogger().Infof("dynamodb: client initialized, region %s", cfg.Region)
	})
}

// New 创建 DynamoDB 客户端，endpoint 非空时覆盖默认地址（如 DynamoDB Local）
func New(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}
