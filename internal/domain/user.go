package domain

import (
	"strings"
	"time"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	CPF         string    `gorm:"size:11;not null;uniqueIndex:ux_users_cpf" json:"cpf"`
	Email       *string   `gorm:"size:254;uniqueIndex:ux_users_email" json:"email"`
	IsStaff     bool      `gorm:"not null" json:"-"`
	IsSuperuser bool      `gorm:"not null" json:"-"`
	IsActive    bool      `gorm:"not null" json:"-"`
	DateJoined  time.Time `gorm:"not null" json:"date_joined"`
	UpdatedAt   time.Time `gorm:"not null" json:"-"`
}

func (User) TableName() string { return "users" }

// Caller is the authenticated identity on whose behalf a registry or ledger
// operation runs. It is resolved once per request by the HTTP layer.
type Caller struct {
	UserID      uint
	IsStaff     bool
	IsSuperuser bool
}

func CallerFor(u *User) Caller {
	return Caller{UserID: u.ID, IsStaff: u.IsStaff, IsSuperuser: u.IsSuperuser}
}

// NormalizeCPF strips everything but digits, so "123.456.789-01" and
// "12345678901" name the same user.
func NormalizeCPF(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}
