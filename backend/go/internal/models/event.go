package models

import "time"

// EventType 标识发布到消息队列的业务事件。
type EventType string

const (
	EventActivityLogged       EventType = "activity_logged"
	EventObservationSubmitted EventType = "observation_submitted"
	EventScoreComputed        EventType = "score_computed"
)

// Event 是发布到 Kafka 的业务事件。
type Event struct {
	ID         string                 `json:"id"`
	Type       EventType              `json:"type"`
	UserID     uint                   `json:"user_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
