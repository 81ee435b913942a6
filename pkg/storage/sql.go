package storage

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/narasux/vidvote/pkg/model"
	"github.com/narasux/vidvote/pkg/vote"
)

// SQLStore 基于关系型数据库（mysql/postgres/sqlite）的投票存储
type SQLStore struct {
	db *gorm.DB
}

var _ vote.Store = (*SQLStore)(nil)

// NewSQLStore ...
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// GetStatus 条目不存在时计数为 0
func (s *SQLStore) GetStatus(ctx context.Context, identity, itemID string) (vote.Status, error) {
	db := s.db.WithContext(ctx)

	tally, err := findTally(db, itemID)
	if err != nil {
		return vote.Status{}, err
	}
	my, err := findChoice(db, identity, itemID)
	if err != nil {
		return vote.Status{}, err
	}
	return vote.Status{Likes: tally.Likes, Dislikes: tally.Dislikes, My: my}, nil
}

// ApplyBallot 在单个事务内完成：锁定计票行，读取已有投票，更新投票记录与计数
func (s *SQLStore) ApplyBallot(
	ctx context.Context, identity, itemID string, choice vote.Choice,
) (vote.Status, vote.Transition, error) {
	var (
		transition vote.Transition
		tally      model.ItemTally
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 计票行不存在则先插入，作为后续行锁的对象
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.ItemTally{ID: itemID}).Error
		if err != nil {
			return errors.Wrap(err, "ensure tally")
		}
		// 同一条目的并发投票在此串行化（SQLite 本身即是单写者，忽略该子句）
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", itemID).Take(&tally).Error
		if err != nil {
			return errors.Wrap(err, "lock tally")
		}

		existing, err := findChoice(tx, identity, itemID)
		if err != nil {
			return err
		}
		transition = vote.Plan(existing, choice)

		if err = applyBallotRow(tx, identity, itemID, transition); err != nil {
			return err
		}
		if err = applyCounters(tx, itemID, transition); err != nil {
			return err
		}

		tally, err = findTally(tx, itemID)
		return err
	})
	if err != nil {
		return vote.Status{}, vote.Transition{}, err
	}

	status := vote.Status{Likes: tally.Likes, Dislikes: tally.Dislikes, My: transition.After}
	return status, transition, nil
}

// ListByMinDislikes 踩数相同时按条目 ID 升序
func (s *SQLStore) ListByMinDislikes(ctx context.Context, minDislikes int64) ([]model.ItemTally, error) {
	tallies := []model.ItemTally{}
	err := s.db.WithContext(ctx).
		Where("dislikes >= ?", minDislikes).
		Order("dislikes DESC").
		Order("id ASC").
		Find(&tallies).Error
	if err != nil {
		return nil, errors.Wrap(err, "list tallies")
	}
	return tallies, nil
}

func findTally(db *gorm.DB, itemID string) (model.ItemTally, error) {
	var tallies []model.ItemTally
	if err := db.Where("id = ?", itemID).Limit(1).Find(&tallies).Error; err != nil {
		return model.ItemTally{}, errors.Wrap(err, "find tally")
	}
	if len(tallies) == 0 {
		return model.ItemTally{ID: itemID}, nil
	}
	return tallies[0], nil
}

func findChoice(db *gorm.DB, identity, itemID string) (*vote.Choice, error) {
	var ballots []model.Ballot
	if err := db.Where("ip = ? AND vid = ?", identity, itemID).Limit(1).Find(&ballots).Error; err != nil {
		return nil, errors.Wrap(err, "find ballot")
	}
	if len(ballots) == 0 {
		return nil, nil
	}
	choice := vote.Choice(ballots[0].Type)
	return &choice, nil
}

func applyBallotRow(tx *gorm.DB, identity, itemID string, t vote.Transition) error {
	var err error
	switch t.Outcome {
	case vote.Cast:
		err = tx.Create(&model.Ballot{IP: identity, ItemID: itemID, Type: string(*t.After)}).Error
	case vote.Cancel:
		err = tx.Where("ip = ? AND vid = ?", identity, itemID).Delete(&model.Ballot{}).Error
	case vote.Switch:
		err = tx.Model(&model.Ballot{}).
			Where("ip = ? AND vid = ?", identity, itemID).
			Update("type", string(*t.After)).Error
	}
	return errors.Wrapf(err, "%s ballot", t.Outcome)
}

// 计数扣减不低于 0；CASE 表达式在三种数据库上通用
func applyCounters(tx *gorm.DB, itemID string, t vote.Transition) error {
	updates := map[string]any{}
	for _, c := range t.Decrements() {
		col := c.Column()
		updates[col] = gorm.Expr(fmt.Sprintf("CASE WHEN %s > 0 THEN %s - 1 ELSE 0 END", col, col))
	}
	for _, c := range t.Increments() {
		col := c.Column()
		updates[col] = gorm.Expr(col + " + 1")
	}
	if len(updates) == 0 {
		return nil
	}

	err := tx.Model(&model.ItemTally{}).Where("id = ?", itemID).Updates(updates).Error
	return errors.Wrap(err, "update tally")
}
