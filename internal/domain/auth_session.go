package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthSession backs a refresh token. It is unrelated to a topic's voting
// session.
type AuthSession struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uint       `gorm:"not null;index"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RefreshID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_auth_sessions_refresh_id"`
	ExpiresAt time.Time  `gorm:"not null"`
	RevokedAt *time.Time
	CreatedAt time.Time `gorm:"not null"`
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:512"`
}

func (AuthSession) TableName() string { return "auth_sessions" }
