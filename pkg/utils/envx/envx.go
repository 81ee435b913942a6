package envx

import (
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Get 读取环境变量，不存在或为空时返回默认值
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetInt 读取整型环境变量，解析失败时返回默认值
func GetInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

// GetBool 读取布尔型环境变量，解析失败时返回默认值
func GetBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

// GetList 读取以逗号分隔的列表，忽略空白项
func GetList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	items := lo.Map(strings.Split(raw, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
	return lo.Uniq(lo.Compact(items))
}
