package vote

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/narasux/vidvote/pkg/logging"
	"github.com/narasux/vidvote/pkg/metrics"
	"github.com/narasux/vidvote/pkg/model"
)

// MaxKeyLength 条目 ID 与身份的最大长度（字节），与表字段 varchar(255) 一致
const MaxKeyLength = 255

// Service 投票服务
type Service struct {
	store Store
}

// NewService ...
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetStatus 查询条目计票与请求方自己的投票
func (s *Service) GetStatus(ctx context.Context, identity, itemID string) (Status, error) {
	if s == nil || s.store == nil {
		return Status{}, ErrStoreNotBound
	}
	if !validKeys(identity, itemID) {
		return Status{}, ErrInvalidArgument
	}
	status, err := s.store.GetStatus(ctx, identity, itemID)
	if err != nil {
		return Status{}, errors.Wrapf(err, "get status of item %s", itemID)
	}
	return status, nil
}

// CastOrChange 投票：首次投票，重复提交相同选项（撤销），提交不同选项（切换）
func (s *Service) CastOrChange(ctx context.Context, identity, itemID, rawChoice string) (Status, error) {
	if s == nil || s.store == nil {
		return Status{}, ErrStoreNotBound
	}
	if !validKeys(identity, itemID) {
		return Status{}, ErrInvalidArgument
	}
	choice, err := ParseChoice(rawChoice)
	if err != nil {
		return Status{}, err
	}

	status, transition, err := s.store.ApplyBallot(ctx, identity, itemID, choice)
	if err != nil {
		return Status{}, errors.Wrapf(err, "apply %s ballot on item %s", choice, itemID)
	}

	metrics.IncBallot(string(transition.Outcome), string(choice))
	logging.GetWebLogger().WithFields(logrus.Fields{
		"identity": identity,
		"itemID":   itemID,
		"choice":   choice,
		"outcome":  transition.Outcome,
	}).Debug("ballot applied")

	return status, nil
}

// ListBlacklisted 查询踩数不小于 minDislikes 的条目（负数按 0 处理）
func (s *Service) ListBlacklisted(ctx context.Context, minDislikes int) ([]model.ItemTally, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotBound
	}
	tallies, err := s.store.ListByMinDislikes(ctx, int64(lo.Max([]int{0, minDislikes})))
	if err != nil {
		return nil, errors.Wrapf(err, "list items with at least %d dislikes", minDislikes)
	}
	return tallies, nil
}

func validKeys(identity, itemID string) bool {
	return itemID != "" && len(itemID) <= MaxKeyLength && len(identity) <= MaxKeyLength
}
