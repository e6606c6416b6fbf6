package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"voting/internal/domain"
	"voting/internal/dto"
	"voting/internal/observability/metrics"
	"voting/internal/observability/middleware"
	"voting/internal/store"
	"voting/internal/validation"
)

type topicStore interface {
	Create(ctx context.Context, topic *domain.Topic) error
	GetByID(ctx context.Context, id uint) (*domain.Topic, error)
	List(ctx context.Context) ([]*domain.Topic, error)
	Open(ctx context.Context, id uint, startedAt time.Time, duration int) (bool, error)
	Close(ctx context.Context, id uint, at time.Time) (bool, error)
}

type TopicRegistryConfig struct {
	// RestrictSessionStartToOwner limits StartSession to the topic's creator
	// (and superusers).
	RestrictSessionStartToOwner bool
	Now                         func() time.Time
}

type TopicRegistryImpl struct {
	topics          topicStore
	restrictToOwner bool
	now             func() time.Time
}

func NewTopicRegistry(st *store.Store, cfg TopicRegistryConfig) *TopicRegistryImpl {
	return newTopicRegistry(st.Topics(), cfg)
}

func newTopicRegistry(topics topicStore, cfg TopicRegistryConfig) *TopicRegistryImpl {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TopicRegistryImpl{topics: topics, restrictToOwner: cfg.RestrictSessionStartToOwner, now: now}
}

func (r *TopicRegistryImpl) clock() time.Time { return r.now().UTC() }

func (r *TopicRegistryImpl) Create(ctx context.Context, caller domain.Caller, req dto.CreateTopicRequest) (*domain.Topic, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validation.Struct(msgTopicInvalid, req); err != nil {
		return nil, err
	}
	if caller.UserID == 0 {
		return nil, domain.Validation(msgTopicInvalid, map[string][]string{"created_by": {"Unknown user."}})
	}

	duration := domain.DefaultSessionDuration
	if req.SessionDuration != nil {
		duration = domain.ClampSessionDuration(*req.SessionDuration)
	}

	now := r.clock()
	topic := &domain.Topic{
		Title:           req.Title,
		Description:     req.Description,
		CreatedByID:     caller.UserID,
		Status:          domain.StatusWaiting,
		SessionDuration: duration,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := r.topics.Create(ctx, topic); err != nil {
		if errors.Is(err, store.ErrForeignKey) {
			return nil, domain.Validation(msgTopicInvalid, map[string][]string{"created_by": {"Unknown user."}})
		}
		return nil, fmt.Errorf("create topic: %w", err)
	}

	metrics.TopicsCreatedTotal.WithLabelValues().Inc()
	slog.Info("topic created", append([]any{"topic_id", topic.ID, "user_id", caller.UserID}, middleware.LogAttrs(ctx)...)...)

	// Reload for the creator association.
	created, err := r.topics.GetByID(ctx, topic.ID)
	if err != nil {
		return nil, fmt.Errorf("reload topic: %w", err)
	}
	return created, nil
}

func (r *TopicRegistryImpl) Get(ctx context.Context, id uint) (*domain.Topic, error) {
	topic, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.LazyExpire(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (r *TopicRegistryImpl) List(ctx context.Context) ([]*domain.Topic, error) {
	topics, err := r.topics.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	for _, t := range topics {
		if err := r.LazyExpire(ctx, t); err != nil {
			return nil, err
		}
	}
	return topics, nil
}

func (r *TopicRegistryImpl) StartSession(ctx context.Context, caller domain.Caller, id uint, duration int) (*domain.Topic, error) {
	result := "failure"
	defer func() {
		metrics.SessionsStartedTotal.WithLabelValues(result).Inc()
	}()

	topic, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.restrictToOwner && topic.CreatedByID != caller.UserID && !caller.IsSuperuser {
		result = "forbidden"
		return nil, domain.Forbidden("only the topic creator can start its session")
	}
	if topic.Status != domain.StatusWaiting {
		result = "not_waiting"
		return nil, notWaiting(topic.Status)
	}
	if duration < domain.MinSessionDuration || duration > domain.MaxSessionDuration {
		result = "invalid_duration"
		return nil, domain.FieldError("duration", fmt.Sprintf(
			"Ensure this value is between %d and %d.", domain.MinSessionDuration, domain.MaxSessionDuration))
	}

	now := r.clock()
	opened, err := r.topics.Open(ctx, id, now, duration)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	if !opened {
		// Someone else moved the topic out of WAITING between read and write.
		result = "lost_race"
		current, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, notWaiting(current.Status)
	}

	topic.Status = domain.StatusOpen
	topic.SessionStartedAt = &now
	topic.SessionDuration = duration
	topic.UpdatedAt = now

	result = "success"
	slog.Info("voting session started", append([]any{
		"topic_id", id, "user_id", caller.UserID, "duration_minutes", duration,
	}, middleware.LogAttrs(ctx)...)...)
	return topic, nil
}

func (r *TopicRegistryImpl) IsActive(t *domain.Topic) bool {
	return t.IsSessionActive(r.clock())
}

// LazyExpire persists the OPEN -> CLOSED transition of a topic whose window
// has elapsed and updates t in place. Other topics are left untouched.
func (r *TopicRegistryImpl) LazyExpire(ctx context.Context, t *domain.Topic) error {
	if t.Status != domain.StatusOpen || r.IsActive(t) {
		return nil
	}
	now := r.clock()
	closed, err := r.topics.Close(ctx, t.ID, now)
	if err != nil {
		return fmt.Errorf("close expired session: %w", err)
	}
	// A false result means a concurrent reader closed it first; OPEN only
	// ever moves to CLOSED so the outcome is the same.
	t.Status = domain.StatusClosed
	if closed {
		t.UpdatedAt = now
		metrics.SessionsClosedTotal.WithLabelValues().Inc()
		slog.Info("voting session closed", append([]any{"topic_id", t.ID}, middleware.LogAttrs(ctx)...)...)
	}
	return nil
}

func (r *TopicRegistryImpl) load(ctx context.Context, id uint) (*domain.Topic, error) {
	topic, err := r.topics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.NotFound(msgTopicNotFound)
		}
		return nil, fmt.Errorf("load topic %d: %w", id, err)
	}
	return topic, nil
}

func notWaiting(status domain.TopicStatus) error {
	return domain.State("session cannot be started. current status: " + status.Display())
}
