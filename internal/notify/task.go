package notify

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"courtq/internal/dispatch"
)

// TypeNotifyHead is the asynq task type for head notifications.
const TypeNotifyHead = "court:notify_head"

// HeadPayload is the JSON payload of a head notification task.
type HeadPayload struct {
	ScopeID     string `json:"scope_id"`
	Court       string `json:"court"`
	ActorID     string `json:"actor_id"`
	DisplayName string `json:"display_name"`
	Sequence    int64  `json:"sequence"`
}

// TaskID is unique per promotion because sequences are never reused.
func (p HeadPayload) TaskID() string {
	return fmt.Sprintf("notify-head:%s:%d", p.Court, p.Sequence)
}

// RetryKey derives a stable push retry key so redelivered tasks are not
// pushed twice.
func (p HeadPayload) RetryKey() string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("courtq:"+p.TaskID())).String()
}

// Message is the text pushed to the promoted member.
func (p HeadPayload) Message() string {
	return fmt.Sprintf("🤖%s, it's your turn on court %s", p.DisplayName, p.Court)
}

func payloadFor(promotion dispatch.Promotion) HeadPayload {
	return HeadPayload{
		ScopeID:     promotion.ScopeID,
		Court:       string(promotion.Resource),
		ActorID:     promotion.Head.ActorID,
		DisplayName: promotion.Head.DisplayName,
		Sequence:    promotion.Head.Sequence,
	}
}

// NewHeadTask builds the asynq task for a promotion.
func NewHeadTask(promotion dispatch.Promotion) (*asynq.Task, error) {
	payload := payloadFor(promotion)
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode head payload: %w", err)
	}
	return asynq.NewTask(TypeNotifyHead, data), nil
}

// DecodeHeadPayload reads the payload of a head notification task.
func DecodeHeadPayload(task *asynq.Task) (HeadPayload, error) {
	var payload HeadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return HeadPayload{}, fmt.Errorf("decode head payload: %w", err)
	}
	if payload.ActorID == "" {
		return HeadPayload{}, fmt.Errorf("decode head payload: missing actor id")
	}
	return payload, nil
}
