package logging

import (
	"time"

	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// 慢查询阈值
const slowSQLThreshold = 200 * time.Millisecond

// NewGormLogger 获取 gorm 使用的 Logger，输出到 sql 日志
func NewGormLogger() gormlogger.Interface {
	return gormlogger.New(GetSqlLogger(), gormlogger.Config{
		SlowThreshold:             slowSQLThreshold,
		LogLevel:                  toGormLogLevel(GetSqlLogger().GetLevel()),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// debug 及以上才打印全部 SQL，避免 info 级别下日志量过大
func toGormLogLevel(level logrus.Level) gormlogger.LogLevel {
	switch {
	case level >= logrus.DebugLevel:
		return gormlogger.Info
	case level >= logrus.WarnLevel:
		return gormlogger.Warn
	case level >= logrus.ErrorLevel:
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}
