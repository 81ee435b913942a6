package pathx

import (
	"path/filepath"
	"runtime"
)

// GetCurPKGPath 获取调用方所在包的目录
func GetCurPKGPath() string {
	_, file, _, _ := runtime.Caller(1)
	return filepath.Dir(file)
}
