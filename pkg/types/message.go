package types

import "time"

// RawMessage is a single message from the alert feed. The text is
// opaque at this layer; downstream parsing never mutates it.
type RawMessage struct {
	ID        int64     `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}
