package vote

import (
	"context"

	"github.com/narasux/vidvote/pkg/model"
)

// Store 投票存储
type Store interface {
	// GetStatus 查询条目计票与指定身份的投票，条目不存在时返回零值
	GetStatus(ctx context.Context, identity, itemID string) (Status, error)
	// ApplyBallot 执行 Plan 计算出的状态迁移，返回迁移后的状态
	ApplyBallot(ctx context.Context, identity, itemID string, choice Choice) (Status, Transition, error)
	// ListByMinDislikes 查询踩数不小于 minDislikes 的条目，按踩数倒序
	ListByMinDislikes(ctx context.Context, minDislikes int64) ([]model.ItemTally, error)
}
