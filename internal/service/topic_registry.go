package service

import (
	"context"

	"voting/internal/domain"
	"voting/internal/dto"
)

// TopicRegistry owns topics and their voting session state machine
// (WAITING -> OPEN -> CLOSED). Reads close expired sessions before returning.
type TopicRegistry interface {
	Create(ctx context.Context, caller domain.Caller, r dto.CreateTopicRequest) (*domain.Topic, error)
	Get(ctx context.Context, id uint) (*domain.Topic, error)
	List(ctx context.Context) ([]*domain.Topic, error)
	StartSession(ctx context.Context, caller domain.Caller, id uint, duration int) (*domain.Topic, error)
	IsActive(t *domain.Topic) bool
	LazyExpire(ctx context.Context, t *domain.Topic) error
}
