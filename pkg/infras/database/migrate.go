package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// 迁移 ID 格式（按字典序即时间序）
const migrationIDLayout = "20060102_150405"

type migrationSet struct {
	sync.Mutex
	migrations map[string]*gormigrate.Migration
}

var migrations = &migrationSet{migrations: map[string]*gormigrate.Migration{}}

// RegisterMigration 注册迁移，ID 重复时 panic
func RegisterMigration(m *gormigrate.Migration) {
	migrations.Lock()
	defer migrations.Unlock()

	if _, ok := migrations.migrations[m.ID]; ok {
		panic("migration " + m.ID + " already registered")
	}
	migrations.migrations[m.ID] = m
}

// 按 ID 升序返回所有已注册的迁移
func (s *migrationSet) sorted() []*gormigrate.Migration {
	s.Lock()
	defer s.Unlock()

	items := lo.Values(s.migrations)
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items
}

// GenMigrationID 生成迁移 ID
func GenMigrationID() string {
	return time.Now().Format(migrationIDLayout)
}

// Migrate 在指定 DB 上执行迁移，migrationID 为空表示迁移到最新版本
func Migrate(db *gorm.DB, migrationID string) error {
	items := migrations.sorted()
	if len(items) == 0 {
		return errors.New("no migration registered")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, items)
	if migrationID == "" {
		return m.Migrate()
	}
	return m.MigrateTo(migrationID)
}

// RunMigrate 在全局 DB Client 上执行迁移
func RunMigrate(ctx context.Context, migrationID string) error {
	return Migrate(Client(ctx), migrationID)
}

// Version 获取当前数据库版本（最后一个已执行的迁移 ID）
func Version(ctx context.Context) (string, error) {
	var ids []string
	err := Client(ctx).
		Table(gormigrate.DefaultOptions.TableName).
		Order(gormigrate.DefaultOptions.IDColumnName+" DESC").
		Limit(1).
		Pluck(gormigrate.DefaultOptions.IDColumnName, &ids).Error
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}
