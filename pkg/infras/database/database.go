package database

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/narasux/vidvote/pkg/envs"
	"github.com/narasux/vidvote/pkg/logging"
)

var (
	db         *gorm.DB
	dbInitOnce sync.Once
)

const (
	// DriverMysql ...
	DriverMysql = "mysql"
	// DriverPostgres ...
	DriverPostgres = "postgres"
	// DriverSqlite ...
	DriverSqlite = "sqlite"
)

const (
	// string 类型字段的默认长度
	defaultStringSize = 256
	// 默认批量创建数量
	defaultBatchSize = 100
	// 默认最大空闲连接
	defaultMaxIdleConns = 20
	// 默认最大连接数
	defaultMaxOpenConns = 100
	// 连接检查超时时间
	pingTimeout = 5 * time.Second
)

// ErrUnsupportedDriver 不支持的数据库驱动
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Client 获取数据库客户端
func Client(ctx context.Context) *gorm.DB {
	if db == nil {
		log.Fatal("database client not init")
	}
	// 设置上下文目的：让 sql 日志带上请求上下文
	return db.WithContext(ctx)
}

// InitDBClient 初始化数据库客户端
func InitDBClient(ctx context.Context) {
	if db != nil {
		return
	}
	dbInitOnce.Do(func() {
		driver, dsn := envs.DBDriver, dsnFromEnvs()

		var err error
		if db, err = Open(ctx, driver, dsn); err != nil {
			log.Fatalf("failed to connect database %s: %s", dbInfo(driver), err)
		} else {
			logging.GetSystemLogger().Infof("database: %s connected", dbInfo(driver))
		}
	})
}

// Open 按驱动类型创建 DB Client 并检查连通性
func Open(ctx context.Context, driver, dsn string) (*gorm.DB, error) {
	dialector, err := newDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		// 禁用默认事务（需要手动管理）
		SkipDefaultTransaction: true,
		// 缓存预编译语句，SQLite 只有单连接，事务内预编译会与连接池争抢连接，不启用
		PrepareStmt: driver != DriverSqlite,
		// Mysql 本身即不支持嵌套事务
		DisableNestedTransaction: true,
		// 批量操作数量
		CreateBatchSize: defaultBatchSize,
		// 数据库迁移时，忽略外键约束
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logging.NewGormLogger(),
	}

	client, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", driver)
	}

	sqlDB, err := client.DB()
	if err != nil {
		return nil, err
	}
	if driver == DriverSqlite {
		// SQLite 同一时刻只允许一个写者；内存库在不同连接间也不共享数据
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(defaultMaxIdleConns)
		sqlDB.SetMaxOpenConns(defaultMaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	cCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	// 检查 DB 是否可用
	if err = sqlDB.PingContext(cCtx); err != nil {
		return nil, errors.Wrapf(err, "ping %s", driver)
	}
	return client, nil
}

func newDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverMysql:
		return mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         defaultStringSize,
			SkipInitializeWithVersion: false,
		}), nil
	case DriverPostgres:
		return postgres.New(postgres.Config{DSN: dsn}), nil
	case DriverSqlite:
		return sqlite.Open(dsn), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedDriver, "driver %q", driver)
	}
}

func dsnFromEnvs() string {
	switch envs.DBDriver {
	case DriverMysql:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=true",
			envs.MysqlUser,
			envs.MysqlPassword,
			envs.MysqlHost,
			envs.MysqlPort,
			envs.MysqlDatabase,
			envs.MysqlCharSet,
		)
	case DriverPostgres:
		return envs.PostgresDSN
	default:
		return envs.SqlitePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
}

// 用于日志输出的数据库信息（不含密码）
func dbInfo(driver string) string {
	switch driver {
	case DriverMysql:
		return fmt.Sprintf("mysql %s:%s/%s", envs.MysqlHost, envs.MysqlPort, envs.MysqlDatabase)
	case DriverPostgres:
		return "postgres"
	default:
		return "sqlite " + envs.SqlitePath
	}
}
