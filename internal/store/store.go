package store

import (
	"context"

	"voting/internal/domain"

	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// Models lists every persisted type in foreign key order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.PasswordCredential{},
		&domain.AuthSession{},
		&domain.Topic{},
		&domain.Vote{},
	}
}
