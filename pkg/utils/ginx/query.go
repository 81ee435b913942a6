package ginx

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// GetIntFromQuery 获取整型查询参数，参数缺失时返回默认值，格式非法时返回错误
func GetIntFromQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid query param %s", key)
	}
	return value, nil
}
