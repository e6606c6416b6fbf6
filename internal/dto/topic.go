package dto

import (
	"time"

	"voting/internal/domain"
)

type CreateTopicRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"required"`
	SessionDuration *int   `json:"session_duration,omitempty"`
}

// StartSessionRequest carries the window length in minutes. A missing
// duration means the default of 60.
type StartSessionRequest struct {
	Duration *int `json:"duration"`
}

type TopicResponse struct {
	ID               uint       `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	SessionStartedAt *time.Time `json:"session_started_at"`
	SessionDuration  int        `json:"session_duration"`
	CreatedBy        uint       `json:"created_by"`
	CreatedByName    string     `json:"created_by_name"`
	IsSessionActive  bool       `json:"is_session_active"`
}

func NewTopicResponse(t *domain.Topic, active bool) TopicResponse {
	out := TopicResponse{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Status:           string(t.Status),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		SessionStartedAt: t.SessionStartedAt,
		SessionDuration:  t.SessionDuration,
		CreatedBy:        t.CreatedByID,
		IsSessionActive:  active,
	}
	if t.CreatedBy != nil {
		out.CreatedByName = t.CreatedBy.Name
	}
	return out
}

type TopicEnvelope struct {
	Message string        `json:"message"`
	Topic   TopicResponse `json:"topic"`
}
