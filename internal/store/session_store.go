package store

import (
	"context"
	"time"

	"voting/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionStore struct{ db *gorm.DB }

func (s *Store) Sessions() *SessionStore { return &SessionStore{s.DB} }

func (ss *SessionStore) Create(ctx context.Context, s *domain.AuthSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.RefreshID == uuid.Nil {
		s.RefreshID = uuid.New()
	}
	return translate(ss.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error)
}

func (ss *SessionStore) GetByRefreshID(ctx context.Context, rid uuid.UUID) (*domain.AuthSession, error) {
	var s domain.AuthSession
	if err := ss.db.WithContext(ctx).First(&s, "refresh_id = ?", rid).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Rotate swaps the refresh id only if the caller still holds the current one,
// so a refresh token can be redeemed once.
func (ss *SessionStore) Rotate(ctx context.Context, id, oldRID, newRID uuid.UUID, expiresAt time.Time, ip, ua string) (bool, error) {
	tx := ss.db.WithContext(ctx).
		Model(&domain.AuthSession{}).
		Where("id = ? AND refresh_id = ? AND revoked_at IS NULL", id, oldRID).
		Updates(map[string]any{
			"refresh_id": newRID,
			"expires_at": expiresAt,
			"ip":         ip,
			"user_agent": ua,
		})
	return tx.RowsAffected == 1, tx.Error
}

func (ss *SessionStore) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	return ss.db.WithContext(ctx).
		Model(&domain.AuthSession{}).
		Where("id = ?", id).
		Update("revoked_at", at).Error
}

func (ss *SessionStore) RevokeAllForUser(ctx context.Context, userID uint, at time.Time) (int64, error) {
	tx := ss.db.WithContext(ctx).
		Model(&domain.AuthSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at)
	return tx.RowsAffected, tx.Error
}
