package http

import (
	"fmt"
	"net/http"

	"voting/internal/domain"
	"voting/internal/dto"
	"voting/internal/service"
)

type topicHandlers struct {
	topics service.TopicRegistry
	votes  service.VoteLedger
}

func (h topicHandlers) render(t *domain.Topic) dto.TopicResponse {
	return dto.NewTopicResponse(t, h.topics.IsActive(t))
}

func (h topicHandlers) list(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]dto.TopicResponse, 0, len(topics))
	for _, t := range topics {
		out = append(out, h.render(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h topicHandlers) create(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r.Context())
	var req dto.CreateTopicRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	topic, err := h.topics.Create(r.Context(), caller, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.TopicEnvelope{
		Message: "Topic created successfully.",
		Topic:   h.render(topic),
	})
}

func (h topicHandlers) detail(w http.ResponseWriter, r *http.Request) {
	id, err := topicID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	topic, err := h.topics.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.render(topic))
}

func (h topicHandlers) startSession(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r.Context())
	id, err := topicID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.StartSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	duration := domain.DefaultSessionDuration
	if req.Duration != nil {
		duration = *req.Duration
	}

	topic, err := h.topics.StartSession(r.Context(), caller, id, duration)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TopicEnvelope{
		Message: fmt.Sprintf("Session started. Duration: %d minutes", topic.SessionDuration),
		Topic:   h.render(topic),
	})
}

func (h topicHandlers) vote(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r.Context())
	id, err := topicID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	vote, err := h.votes.Cast(r.Context(), caller, id, req.Choice())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewVoteEnvelope(vote))
}

func (h topicHandlers) result(w http.ResponseWriter, r *http.Request) {
	id, err := topicID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	topic, tally, err := h.votes.Result(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewResultResponse(topic, tally))
}
