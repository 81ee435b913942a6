package vote

// Choice 投票选项
type Choice string

const (
	// Like 赞
	Like Choice = "like"
	// Dislike 踩
	Dislike Choice = "dislike"
)

// ParseChoice 解析投票选项，只接受 like / dislike
func ParseChoice(s string) (Choice, error) {
	switch c := Choice(s); c {
	case Like, Dislike:
		return c, nil
	default:
		return "", ErrInvalidArgument
	}
}

// Status 条目的当前计票，以及请求方自己的投票（未投票为 nil）
type Status struct {
	Likes    int64   `json:"likes"`
	Dislikes int64   `json:"dislikes"`
	My       *Choice `json:"my"`
}
