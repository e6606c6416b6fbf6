package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"voting/internal/domain"
)

type VoteRequest struct {
	Vote json.RawMessage `json:"vote"`
}

// Choice returns the submitted vote. Non-string JSON values keep their
// literal text so they are rejected as unknown choices.
func (r VoteRequest) Choice() domain.Choice {
	raw := bytes.TrimSpace(r.Vote)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return domain.Choice(s)
	}
	return domain.Choice(raw)
}

type VoteResponse struct {
	ID        uint      `json:"id"`
	Vote      string    `json:"vote"`
	CreatedAt time.Time `json:"created_at"`
}

type VoteEnvelope struct {
	Message string       `json:"message"`
	Vote    VoteResponse `json:"vote"`
}

func NewVoteEnvelope(v *domain.Vote) VoteEnvelope {
	return VoteEnvelope{
		Message: "Vote recorded successfully.",
		Vote:    VoteResponse{ID: v.ID, Vote: string(v.Choice), CreatedAt: v.CreatedAt},
	}
}

type ResultResponse struct {
	TopicID          uint             `json:"topic_id"`
	TopicTitle       string           `json:"topic_title"`
	TopicDescription string           `json:"topic_description"`
	TopicStatus      string           `json:"topic_status"`
	TotalVotes       int64            `json:"total_votes"`
	YesVotes         int64            `json:"yes_votes"`
	NoVotes          int64            `json:"no_votes"`
	Results          map[string]int64 `json:"results"`
}

func NewResultResponse(t *domain.Topic, tally domain.Tally) ResultResponse {
	return ResultResponse{
		TopicID:          t.ID,
		TopicTitle:       t.Title,
		TopicDescription: t.Description,
		TopicStatus:      string(t.Status),
		TotalVotes:       tally.Total,
		YesVotes:         tally.Yes,
		NoVotes:          tally.No,
		Results: map[string]int64{
			string(domain.ChoiceYes): tally.Yes,
			string(domain.ChoiceNo):  tally.No,
		},
	}
}
