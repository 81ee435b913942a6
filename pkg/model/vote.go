package model

// ItemTally 条目计票（每个条目的赞踩总数）
type ItemTally struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(255)" dynamodbav:"id"`
	Likes    int64  `json:"likes" gorm:"not null;default:0" dynamodbav:"likes"`
	Dislikes int64  `json:"dislikes" gorm:"not null;default:0;index:idx_votes_dislikes" dynamodbav:"dislikes"`
}

// TableName ...
func (ItemTally) TableName() string {
	return "votes"
}

// Ballot 用户投票记录，同一身份对同一条目至多一条
type Ballot struct {
	IP     string `json:"ip" gorm:"primaryKey;type:varchar(255)" dynamodbav:"ip"`
	ItemID string `json:"vid" gorm:"column:vid;primaryKey;type:varchar(255)" dynamodbav:"vid"`
	Type   string `json:"type" gorm:"type:varchar(16);not null" dynamodbav:"type"`
}

// TableName ...
func (Ballot) TableName() string {
	return "user_votes"
}
