package logging

import (
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/narasux/vidvote/pkg/envs"
)

// 日志输出：stdout，启用文件日志时同时写入按类型分目录的滚动文件
func newWriter(logType string) (io.Writer, error) {
	if !envs.LogToFile {
		return os.Stdout, nil
	}

	fileWriter, err := newFileWriter(logType)
	if err != nil {
		return nil, err
	}
	return io.MultiWriter(os.Stdout, fileWriter), nil
}

// 文件路径：<LOG_FILE_BASE_DIR>/<logType>/<logType>.log，滚动策略由环境变量指定
func newFileWriter(logType string) (*lumberjack.Logger, error) {
	dir := filepath.Join(envs.LogFileBaseDir, logType)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, logType+".log"),
		MaxSize:    envs.LogFileMaxSize,
		MaxBackups: envs.LogFileMaxBackups,
		MaxAge:     envs.LogFileMaxAge,
		Compress:   envs.LogFileCompress,
		LocalTime:  true,
	}, nil
}
