package schema

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification is a chat message waiting in the outbox queue.
type Notification struct {
	ID            uuid.UUID `json:"id"`
	ChannelID     string    `json:"channel_id"`
	Text          string    `json:"text"`
	MentionUserID string    `json:"mention_user_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (n *Notification) Marshal() ([]byte, error) {
	return json.Marshal(n)
}

func (n *Notification) Unmarshal(data []byte) error {
	return json.Unmarshal(data, n)
}
