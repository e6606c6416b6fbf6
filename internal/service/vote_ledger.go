package service

import (
	"context"

	"voting/internal/domain"
)

type VoteLedger interface {
	Cast(ctx context.Context, caller domain.Caller, topicID uint, choice domain.Choice) (*domain.Vote, error)
	Aggregate(ctx context.Context, topicID uint) (domain.Tally, error)
	Result(ctx context.Context, topicID uint) (*domain.Topic, domain.Tally, error)
	// Ballots lists the individual votes of a topic, oldest first.
	Ballots(ctx context.Context, topicID uint) ([]*domain.Vote, error)
}
