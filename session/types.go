// Package session holds per-conversation state for the parts assistant.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Status is the data collection progress of a conversation
type Status string

const (
	StatusGreeting          Status = "greeting"
	StatusCollectingName    Status = "collecting_name"
	StatusCollectingPart    Status = "collecting_part"
	StatusCollectingBrand   Status = "collecting_brand"
	StatusCollectingModel   Status = "collecting_model"
	StatusCollectingYear    Status = "collecting_year"
	StatusCollectingEngine  Status = "collecting_engine"
	StatusCollectingSerial  Status = "collecting_serial"
	StatusCollectingSpecial Status = "collecting_special"
	StatusDataComplete      Status = "data_complete"
	StatusGeneratingQuote   Status = "generating_quote"
)

// Statuses lists every status in progression order
var Statuses = []Status{
	StatusGreeting,
	StatusCollectingName,
	StatusCollectingPart,
	StatusCollectingBrand,
	StatusCollectingModel,
	StatusCollectingYear,
	StatusCollectingEngine,
	StatusCollectingSerial,
	StatusCollectingSpecial,
	StatusDataComplete,
	StatusGeneratingQuote,
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Role of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// VehicleInfo is the vehicle the requested part is for
type VehicleInfo struct {
	Brand          string `json:"marca,omitempty"`
	Model          string `json:"modelo,omitempty"`
	Year           int    `json:"año,omitempty"`
	Engine         string `json:"litraje,omitempty"`
	Serial         string `json:"numeroSerie,omitempty"`
	SpecialVariant string `json:"modeloEspecial,omitempty"`
}

// ClientInfo is the structured record filled in from the conversation
type ClientInfo struct {
	Name    string       `json:"nombre,omitempty"`
	Part    string       `json:"piezaNecesaria,omitempty"`
	Vehicle *VehicleInfo `json:"vehiculo,omitempty"`
}

// Clone returns a deep copy
func (c ClientInfo) Clone() ClientInfo {
	out := c
	if c.Vehicle != nil {
		v := *c.Vehicle
		out.Vehicle = &v
	}
	return out
}

// IsEmpty reports whether no field is set
func (c ClientInfo) IsEmpty() bool {
	return c.Name == "" && c.Part == "" && (c.Vehicle == nil || *c.Vehicle == VehicleInfo{})
}

// Message is one turn in a conversation. Messages are never edited once appended.
type Message struct {
	ID             string    `json:"id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	FunctionCalled string    `json:"functionCalled,omitempty"`
}

// NewMessage builds a message with a fresh id
func NewMessage(role Role, content string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: at,
	}
}

// Session is the state of one customer conversation
type Session struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Status       Status     `json:"status"`
	ClientInfo   ClientInfo `json:"clientInfo"`
	Messages     []Message  `json:"messages"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActivity time.Time  `json:"lastActivity"`
}

// New creates a session in the greeting state with welcome appended as the
// first assistant turn.
func New(id, userID, welcome string, now time.Time) *Session {
	s := &Session{
		ID:           id,
		UserID:       userID,
		Status:       StatusGreeting,
		Messages:     []Message{},
		CreatedAt:    now,
		LastActivity: now,
	}
	if welcome != "" {
		s.Messages = append(s.Messages, NewMessage(RoleAssistant, welcome, now))
	}
	return s
}

// Append adds a message and bumps LastActivity
func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
	if msg.Timestamp.After(s.LastActivity) {
		s.LastActivity = msg.Timestamp
	}
}

// Touch marks the session as active at now
func (s *Session) Touch(now time.Time) {
	if now.After(s.LastActivity) {
		s.LastActivity = now
	}
}

// Recent returns up to n of the latest messages
func (s *Session) Recent(n int) []Message {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// Clone returns a deep copy safe to hand across goroutines
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.ClientInfo = s.ClientInfo.Clone()
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return &out
}
