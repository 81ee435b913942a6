package vote

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument 参数缺失或不合法
	ErrInvalidArgument = errors.New("bad params")
	// ErrStoreNotBound 未配置投票存储
	ErrStoreNotBound = errors.New("vote store not bound")
)
