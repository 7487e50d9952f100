package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// DefaultConversationPrefix is prepended to user ids to form conversation ids
const DefaultConversationPrefix = "whatsapp"

// ConversationID derives the conversation id for a user
func ConversationID(prefix, userID string) string {
	if prefix == "" {
		prefix = DefaultConversationPrefix
	}
	return prefix + "-" + strings.TrimSpace(userID)
}

// Processor runs a conversation turn
type Processor interface {
	ProcessMessage(ctx context.Context, conversationID, userText, userID string) *TurnResult
}

// SendResult is the outcome of an outbound message
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Sender delivers a reply to the customer
type Sender interface {
	SendMessage(ctx context.Context, to, message string) (SendResult, error)
}

// Direction of a recorded message
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// MessageRecord is what gets persisted for every inbound and outbound message
type MessageRecord struct {
	ConversationID string
	UserID         string
	Direction      Direction
	Content        string
	FunctionName   string
	MessageID      string
	Timestamp      time.Time
}

// Recorder persists messages against the contact/conversation graph
type Recorder interface {
	RecordMessage(ctx context.Context, rec MessageRecord) error
}

// Broadcaster fans messages out to subscribed UI clients
type Broadcaster interface {
	Broadcast(ctx context.Context, rec MessageRecord) error
}

// Relay wraps a Processor with the downstream collaborators around a turn.
// Collaborator failures are logged and never stop the reply.
type Relay struct {
	processor   Processor
	prefix      string
	sender      Sender
	recorder    Recorder
	broadcaster Broadcaster
	clock       func() time.Time
}

// RelayOption configures a Relay
type RelayOption func(*Relay)

// WithSender sets the outbound message sender
func WithSender(s Sender) RelayOption {
	return func(r *Relay) { r.sender = s }
}

// WithRecorder sets the message recorder
func WithRecorder(rec Recorder) RelayOption {
	return func(r *Relay) { r.recorder = rec }
}

// WithBroadcaster sets the UI fan-out
func WithBroadcaster(b Broadcaster) RelayOption {
	return func(r *Relay) { r.broadcaster = b }
}

// WithRelayClock overrides the time source
func WithRelayClock(now func() time.Time) RelayOption {
	return func(r *Relay) {
		if now != nil {
			r.clock = now
		}
	}
}

// NewRelay creates a relay for conversations named "<prefix>-<userID>"
func NewRelay(p Processor, prefix string, opts ...RelayOption) *Relay {
	r := &Relay{
		processor: p,
		prefix:    prefix,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleInbound records the customer's message, runs the turn, sends the reply
// and records it. The turn result is returned even when delivery fails.
func (r *Relay) HandleInbound(ctx context.Context, userID, text string) (*TurnResult, SendResult) {
	conversationID := ConversationID(r.prefix, userID)

	r.record(ctx, MessageRecord{
		ConversationID: conversationID,
		UserID:         userID,
		Direction:      Inbound,
		Content:        text,
		Timestamp:      r.clock(),
	})

	result := r.processor.ProcessMessage(ctx, conversationID, text, userID)

	sent := SendResult{}
	if r.sender != nil {
		var err error
		sent, err = r.sender.SendMessage(ctx, userID, result.Content)
		if err != nil {
			slog.Error("failed to send reply", "conversation_id", conversationID, "error", err)
			sent = SendResult{Success: false, Error: err.Error()}
		} else if !sent.Success {
			slog.Error("reply rejected by sender", "conversation_id", conversationID, "error", sent.Error)
		}
	}

	r.record(ctx, MessageRecord{
		ConversationID: conversationID,
		UserID:         userID,
		Direction:      Outbound,
		Content:        result.Content,
		FunctionName:   result.FunctionName,
		MessageID:      sent.MessageID,
		Timestamp:      r.clock(),
	})

	return result, sent
}

func (r *Relay) record(ctx context.Context, rec MessageRecord) {
	if r.recorder != nil {
		if err := r.recorder.RecordMessage(ctx, rec); err != nil {
			slog.Warn("failed to record message",
				"conversation_id", rec.ConversationID,
				"direction", rec.Direction,
				"error", err)
		}
	}
	if r.broadcaster != nil {
		if err := r.broadcaster.Broadcast(ctx, rec); err != nil {
			slog.Warn("failed to broadcast message",
				"conversation_id", rec.ConversationID,
				"direction", rec.Direction,
				"error", err)
		}
	}
}
