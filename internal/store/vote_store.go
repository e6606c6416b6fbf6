package store

import (
	"context"

	"voting/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteStore struct{ db *gorm.DB }

func (s *Store) Votes() *VoteStore { return &VoteStore{db: s.DB} }

// Create inserts a vote. A second vote for the same (topic, user) pair is
// rejected by ux_votes_topic_user and reported as ErrDuplicateKey.
func (v *VoteStore) Create(ctx context.Context, vote *domain.Vote) error {
	return translate(v.db.WithContext(ctx).Omit(clause.Associations).Create(vote).Error)
}

func (v *VoteStore) Exists(ctx context.Context, topicID, userID uint) (bool, error) {
	var n int64
	err := v.db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("topic_id = ? AND user_id = ?", topicID, userID).
		Count(&n).Error
	return n > 0, err
}

func (v *VoteStore) Tally(ctx context.Context, topicID uint) (domain.Tally, error) {
	var row struct {
		TotalVotes int64
		YesVotes   int64
		NoVotes    int64
	}
	err := v.db.WithContext(ctx).
		Model(&domain.Vote{}).
		Select(
			"COUNT(*) AS total_votes, "+
				"COALESCE(SUM(CASE WHEN choice = ? THEN 1 ELSE 0 END), 0) AS yes_votes, "+
				"COALESCE(SUM(CASE WHEN choice = ? THEN 1 ELSE 0 END), 0) AS no_votes",
			domain.ChoiceYes, domain.ChoiceNo,
		).
		Where("topic_id = ?", topicID).
		Scan(&row).Error
	if err != nil {
		return domain.Tally{}, err
	}
	return domain.Tally{Total: row.TotalVotes, Yes: row.YesVotes, No: row.NoVotes}, nil
}

// ListByTopic returns the votes of a topic in casting order with their voters
// loaded.
func (v *VoteStore) ListByTopic(ctx context.Context, topicID uint) ([]*domain.Vote, error) {
	var votes []*domain.Vote
	if err := v.db.WithContext(ctx).
		Preload("User").
		Where("topic_id = ?", topicID).
		Order("created_at ASC, id ASC").
		Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}
