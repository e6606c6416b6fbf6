package domain

import "time"

type Choice string

const (
	ChoiceYes Choice = "YES"
	ChoiceNo  Choice = "NO"
)

func (c Choice) Valid() bool { return c == ChoiceYes || c == ChoiceNo }

type Vote struct {
	ID        uint      `gorm:"primaryKey"`
	TopicID   uint      `gorm:"not null;uniqueIndex:ux_votes_topic_user,priority:1"`
	Topic     *Topic    `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_votes_topic_user,priority:2;index"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Choice    Choice    `gorm:"size:3;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Vote) TableName() string { return "votes" }

type Tally struct {
	Total int64
	Yes   int64
	No    int64
}
