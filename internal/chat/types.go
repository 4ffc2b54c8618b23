package chat

import (
	"encoding/json"
	"time"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one transcript entry. Body is the raw text; HTML is the
// rendered form served to the dashboard.
type Message struct {
	ID        int64           `json:"id,omitempty"`
	SessionID string          `json:"session_id"`
	Sender    Sender          `json:"sender"`
	Body      string          `json:"body"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Attachment is the single pending document slot. A new selection
// replaces the previous one; the slot is cleared on send.
type Attachment struct {
	FileName  string
	MediaType string
	DocType   string
	Size      int64
	Content   []byte
}

// Exchange is the outcome of one submission: the answer text plus the
// rendered transcript fragment for the AI side.
type Exchange struct {
	SessionID string          `json:"session_id"`
	Answer    string          `json:"answer"`
	HTML      string          `json:"html"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Known document type tags accepted by the chat backend.
var DocTypes = []string{"invoice", "purchase_order", "delivery_note", "other"}
