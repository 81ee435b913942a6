package uuid

import (
	"encoding/hex"

	"github.com/gofrs/uuid"
)

// GenUUID4 生成不带连字符的 uuid4（32 位十六进制）
func GenUUID4() string {
	return hex.EncodeToString(uuid.Must(uuid.NewV4()).Bytes())
}

// IsUUID 判断字符串是否为合法的 uuid（兼容带或不带连字符的格式）
func IsUUID(s string) bool {
	_, err := uuid.FromString(s)
	return err == nil
}
