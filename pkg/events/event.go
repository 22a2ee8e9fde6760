package events

import "time"

// Event is anything exported to the external event stream.
type Event interface {
	// EventType is the subject suffix, e.g. "note.created".
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// ChangeEvent reports a change applied to a user's notes or notebooks.
type ChangeEvent struct {
	Kind       string
	UserId     string
	EntityIds  []string
	OccurredAt time.Time
}

func (e ChangeEvent) EventType() string {
	return e.Kind
}

func (e ChangeEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"kind":       e.Kind,
		"user_id":    e.UserId,
		"entity_ids": e.EntityIds,
		"at":         e.OccurredAt,
	}
}

func (e ChangeEvent) Timestamp() time.Time {
	return e.OccurredAt
}
