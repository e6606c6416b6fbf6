package store

import (
	"context"
	"time"

	"voting/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TopicStore struct{ db *gorm.DB }

func (s *Store) Topics() *TopicStore { return &TopicStore{db: s.DB} }

func (t *TopicStore) Create(ctx context.Context, topic *domain.Topic) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Create(topic).Error)
}

func (t *TopicStore) GetByID(ctx context.Context, id uint) (*domain.Topic, error) {
	var topic domain.Topic
	if err := t.db.WithContext(ctx).Preload("CreatedBy").First(&topic, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &topic, nil
}

func (t *TopicStore) List(ctx context.Context) ([]*domain.Topic, error) {
	var topics []*domain.Topic
	if err := t.db.WithContext(ctx).
		Preload("CreatedBy").
		Order("created_at DESC, id DESC").
		Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

// Open moves a WAITING topic to OPEN. It reports false when the topic was no
// longer WAITING at write time, which is how a concurrent start loses.
func (t *TopicStore) Open(ctx context.Context, id uint, startedAt time.Time, duration int) (bool, error) {
	tx := t.db.WithContext(ctx).
		Model(&domain.Topic{}).
		Where("id = ? AND status = ?", id, domain.StatusWaiting).
		Updates(map[string]any{
			"status":             domain.StatusOpen,
			"session_started_at": startedAt,
			"session_duration":   duration,
			"updated_at":         startedAt,
		})
	return tx.RowsAffected == 1, tx.Error
}

// Close moves an OPEN topic to CLOSED. Closing an already closed topic is a
// no-op reported as false.
func (t *TopicStore) Close(ctx context.Context, id uint, at time.Time) (bool, error) {
	tx := t.db.WithContext(ctx).
		Model(&domain.Topic{}).
		Where("id = ? AND status = ?", id, domain.StatusOpen).
		Updates(map[string]any{
			"status":     domain.StatusClosed,
			"updated_at": at,
		})
	return tx.RowsAffected == 1, tx.Error
}
