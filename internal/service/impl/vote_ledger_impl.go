package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"voting/internal/domain"
	"voting/internal/observability/metrics"
	"voting/internal/observability/middleware"
	"voting/internal/service"
	"voting/internal/store"
)

type voteStore interface {
	Create(ctx context.Context, vote *domain.Vote) error
	Exists(ctx context.Context, topicID, userID uint) (bool, error)
	Tally(ctx context.Context, topicID uint) (domain.Tally, error)
	ListByTopic(ctx context.Context, topicID uint) ([]*domain.Vote, error)
}

type VoteLedgerImpl struct {
	votes  voteStore
	topics service.TopicRegistry
	now    func() time.Time
}

func NewVoteLedger(st *store.Store, topics service.TopicRegistry, now func() time.Time) *VoteLedgerImpl {
	return newVoteLedger(st.Votes(), topics, now)
}

func newVoteLedger(votes voteStore, topics service.TopicRegistry, now func() time.Time) *VoteLedgerImpl {
	if now == nil {
		now = time.Now
	}
	return &VoteLedgerImpl{votes: votes, topics: topics, now: now}
}

// Cast records caller's vote. The (topic, user) unique index is the source of
// truth for one vote per pair; the Exists pre-check only gives the common case
// a cheaper path.
func (l *VoteLedgerImpl) Cast(ctx context.Context, caller domain.Caller, topicID uint, choice domain.Choice) (*domain.Vote, error) {
	result := "failure"
	defer func() {
		metrics.VotesCastTotal.WithLabelValues(result).Inc()
	}()

	topic, err := l.topics.Get(ctx, topicID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			result = "not_found"
		}
		return nil, err
	}
	if !l.topics.IsActive(topic) {
		result = "inactive"
		return nil, domain.State(msgSessionNotActive)
	}

	voted, err := l.votes.Exists(ctx, topicID, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("check existing vote: %w", err)
	}
	if voted {
		result = "duplicate"
		return nil, domain.Conflict(msgAlreadyVoted)
	}

	if !choice.Valid() {
		result = "invalid"
		if choice == "" {
			return nil, domain.FieldError("vote", "This field is required.")
		}
		return nil, domain.FieldError("vote", fmt.Sprintf("%q is not a valid choice.", string(choice)))
	}

	vote := &domain.Vote{
		TopicID:   topicID,
		UserID:    caller.UserID,
		Choice:    choice,
		CreatedAt: l.now().UTC(),
	}
	if err := l.votes.Create(ctx, vote); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			result = "duplicate"
			return nil, domain.Conflict(msgAlreadyVoted)
		}
		return nil, fmt.Errorf("insert vote: %w", err)
	}

	result = "success"
	slog.Info("vote cast", append([]any{"topic_id", topicID, "user_id", caller.UserID, "vote_id", vote.ID}, middleware.LogAttrs(ctx)...)...)
	return vote, nil
}

func (l *VoteLedgerImpl) Aggregate(ctx context.Context, topicID uint) (domain.Tally, error) {
	tally, err := l.votes.Tally(ctx, topicID)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("tally votes: %w", err)
	}
	return tally, nil
}

func (l *VoteLedgerImpl) Result(ctx context.Context, topicID uint) (*domain.Topic, domain.Tally, error) {
	topic, err := l.topics.Get(ctx, topicID)
	if err != nil {
		return nil, domain.Tally{}, err
	}
	tally, err := l.Aggregate(ctx, topicID)
	if err != nil {
		return nil, domain.Tally{}, err
	}
	return topic, tally, nil
}

func (l *VoteLedgerImpl) Ballots(ctx context.Context, topicID uint) ([]*domain.Vote, error) {
	if _, err := l.topics.Get(ctx, topicID); err != nil {
		return nil, err
	}
	votes, err := l.votes.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return votes, nil
}
