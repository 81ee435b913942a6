package logging

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/narasux/vidvote/pkg/envs"
)

const (
	// LogTypeSystem 启动，迁移，资源缓存安装等系统事件（文本格式）
	LogTypeSystem = "system"
	// LogTypeAccess 访问日志
	LogTypeAccess = "access"
	// LogTypeWeb 投票，资源代理等业务日志
	LogTypeWeb = "web"
	// LogTypeSql gorm 日志
	LogTypeSql = "sql"
)

var (
	initOnce sync.Once
	// 除 system 外的 JSON 日志，InitLogger 之前为空，获取时回退到 system
	jsonLoggers = map[string]*logrus.Logger{}
)

// InitLogger 初始化全部日志，可重复调用
func InitLogger() {
	initOnce.Do(func() {
		initSystemLogger()
		for _, logType := range []string{LogTypeAccess, LogTypeWeb, LogTypeSql} {
			jsonLoggers[logType] = newJsonLogger(logType)
		}
	})
}

// GetSystemLogger ...
func GetSystemLogger() *logrus.Logger {
	return logrus.StandardLogger()
}

// GetAccessLogger ...
func GetAccessLogger() *logrus.Logger {
	return getJsonLogger(LogTypeAccess)
}

// GetWebLogger ...
func GetWebLogger() *logrus.Logger {
	return getJsonLogger(LogTypeWeb)
}

// GetSqlLogger ...
func GetSqlLogger() *logrus.Logger {
	return getJsonLogger(LogTypeSql)
}

func getJsonLogger(logType string) *logrus.Logger {
	if logger, ok := jsonLoggers[logType]; ok {
		return logger
	}
	return GetSystemLogger()
}

func initSystemLogger() {
	writer, err := newWriter(LogTypeSystem)
	if err != nil {
		panic(err)
	}
	logrus.SetOutput(writer)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	logrus.SetLevel(parseLevel(envs.LogLevel))
}

func newJsonLogger(logType string) *logrus.Logger {
	writer, err := newWriter(logType)
	if err != nil {
		panic(err)
	}

	logger := logrus.New()
	logger.SetOutput(writer)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.DateTime})
	logger.SetLevel(parseLevel(envs.LogLevel))
	return logger
}

// 非法的日志等级按 info 处理
func parseLevel(raw string) logrus.Level {
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
