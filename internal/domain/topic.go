package domain

import "time"

type TopicStatus string

const (
	StatusWaiting TopicStatus = "WAITING"
	StatusOpen    TopicStatus = "OPEN"
	StatusClosed  TopicStatus = "CLOSED"
)

const (
	DefaultSessionDuration = 60
	MinSessionDuration     = 1
	MaxSessionDuration     = 1440
)

// Display is the human readable label reported back to API clients.
func (s TopicStatus) Display() string {
	switch s {
	case StatusWaiting:
		return "Awaiting opening"
	case StatusOpen:
		return "Session open"
	case StatusClosed:
		return "Voting closed"
	default:
		return string(s)
	}
}

type Topic struct {
	ID               uint        `gorm:"primaryKey"`
	Title            string      `gorm:"size:200;not null"`
	Description      string      `gorm:"type:text;not null"`
	CreatedByID      uint        `gorm:"not null;index"`
	CreatedBy        *User       `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE"`
	Status           TopicStatus `gorm:"size:10;not null;index"`
	SessionStartedAt *time.Time
	SessionDuration  int       `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null;index"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (Topic) TableName() string { return "topics" }

// SessionEndsAt reports when the voting window closes. ok is false while no
// session was ever started.
func (t *Topic) SessionEndsAt() (end time.Time, ok bool) {
	if t.SessionStartedAt == nil {
		return time.Time{}, false
	}
	return t.SessionStartedAt.Add(time.Duration(t.SessionDuration) * time.Minute), true
}

// IsSessionActive is true only while the topic is OPEN and now is strictly
// before the end of the window.
func (t *Topic) IsSessionActive(now time.Time) bool {
	if t.Status != StatusOpen {
		return false
	}
	end, ok := t.SessionEndsAt()
	if !ok {
		return false
	}
	return now.Before(end)
}

// ClampSessionDuration keeps a requested duration inside the allowed window.
func ClampSessionDuration(minutes int) int {
	switch {
	case minutes < MinSessionDuration:
		return MinSessionDuration
	case minutes > MaxSessionDuration:
		return MaxSessionDuration
	default:
		return minutes
	}
}
