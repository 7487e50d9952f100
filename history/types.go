package history

import (
	"time"
)

// Transcript is the delivered message log of one conversation
type Transcript struct {
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Version        string    `json:"version"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Entries        []Entry   `json:"entries"`
}

// Entry is one inbound or outbound message
type Entry struct {
	Direction    string    `json:"direction"`
	Content      string    `json:"content"`
	FunctionName string    `json:"function_name,omitempty"`
	MessageID    string    `json:"message_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// MetaIndex maps customers to their conversations
type MetaIndex struct {
	Version          string              `json:"version"`
	LastConversation string              `json:"last_conversation_id,omitempty"`
	UserIndex        map[string][]string `json:"user_index"`
}

// TranscriptInfo provides summary information for listing
type TranscriptInfo struct {
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Entries        int       `json:"entries"`
}
