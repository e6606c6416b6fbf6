package domain

import "time"

type PasswordCredential struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;uniqueIndex:ux_pwd_user"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Algo        string    `gorm:"size:32;not null"`
	Hash        []byte    `gorm:"not null"`
	Salt        []byte    `gorm:"not null"`
	ParamsJSON  []byte    `gorm:"not null"`
	PasswordVer int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (PasswordCredential) TableName() string { return "password_credentials" }

func (p *PasswordCredential) GetAlgo() string       { return p.Algo }
func (p *PasswordCredential) GetHash() []byte       { return p.Hash }
func (p *PasswordCredential) GetSalt() []byte       { return p.Salt }
func (p *PasswordCredential) GetParamsJSON() []byte { return p.ParamsJSON }
func (p *PasswordCredential) GetPasswordVer() int   { return p.PasswordVer }
