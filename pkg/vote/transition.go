package vote

// Outcome 一次投票请求的结果类型
type Outcome string

const (
	// Cast 首次投票：新建记录
	Cast Outcome = "cast"
	// Cancel 重复提交相同选项：撤销投票
	Cancel Outcome = "cancel"
	// Switch 提交不同选项：切换投票
	Switch Outcome = "switch"
)

// Transition 状态机的一次迁移，存储层据此落库
type Transition struct {
	Outcome Outcome
	// Before 迁移前的投票，nil 表示未投票
	Before *Choice
	// After 迁移后的投票，nil 表示记录被删除
	After *Choice
	// 计数变化量，扣减时存储层需保证不小于 0
	LikesDelta    int64
	DislikesDelta int64
}

// Plan 根据已有投票与本次提交的选项计算状态迁移
func Plan(existing *Choice, cast Choice) Transition {
	t := Transition{Before: existing}

	switch {
	case existing == nil:
		t.Outcome = Cast
		t.After = &cast
		t.addDelta(cast, 1)
	case *existing == cast:
		t.Outcome = Cancel
		t.addDelta(cast, -1)
	default:
		t.Outcome = Switch
		t.After = &cast
		t.addDelta(*existing, -1)
		t.addDelta(cast, 1)
	}
	return t
}

func (t *Transition) addDelta(c Choice, delta int64) {
	if c == Like {
		t.LikesDelta += delta
	} else {
		t.DislikesDelta += delta
	}
}

// Decrements 返回需要扣减的选项（最多一个）
func (t Transition) Decrements() []Choice {
	var choices []Choice
	if t.LikesDelta < 0 {
		choices = append(choices, Like)
	}
	if t.DislikesDelta < 0 {
		choices = append(choices, Dislike)
	}
	return choices
}

// Increments 返回需要增加的选项（最多一个）
func (t Transition) Increments() []Choice {
	var choices []Choice
	if t.LikesDelta > 0 {
		choices = append(choices, Like)
	}
	if t.DislikesDelta > 0 {
		choices = append(choices, Dislike)
	}
	return choices
}

// Column 选项对应的计数字段名
func (c Choice) Column() string {
	if c == Like {
		return "likes"
	}
	return "dislikes"
}
