package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/nachoal/parts-agent-go/agent"
)

const formatVersion = "1.0"

// ErrNotFound is returned when no transcript exists
var ErrNotFound = errors.New("transcript not found")

// Manager persists conversation transcripts as JSON files, one per
// conversation, plus a meta index keyed by customer. It implements
// agent.Recorder.
type Manager struct {
	dir      string
	metaPath string
	mu       sync.RWMutex
}

var _ agent.Recorder = (*Manager)(nil)

// NewManager creates a manager rooted at dir
func NewManager(dir string) (*Manager, error) {
	m := &Manager{
		dir:      dir,
		metaPath: filepath.Join(dir, "meta.json"),
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcripts directory: %w", err)
	}

	if _, err := os.Stat(m.metaPath); os.IsNotExist(err) {
		if err := m.saveMeta(&MetaIndex{
			Version:   formatVersion,
			UserIndex: make(map[string][]string),
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize meta index: %w", err)
		}
	}

	return m, nil
}

// RecordMessage appends rec to its conversation transcript
func (m *Manager) RecordMessage(_ context.Context, rec agent.MessageRecord) error {
	if rec.ConversationID == "" {
		return errors.New("conversation id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.load(rec.ConversationID)
	if errors.Is(err, ErrNotFound) {
		t = &Transcript{
			ConversationID: rec.ConversationID,
			UserID:         rec.UserID,
			Version:        formatVersion,
			CreatedAt:      rec.Timestamp,
		}
		if err := m.indexConversation(rec.UserID, rec.ConversationID); err != nil {
			return fmt.Errorf("failed to update user index: %w", err)
		}
	} else if err != nil {
		return err
	}

	t.Entries = append(t.Entries, Entry{
		Direction:    string(rec.Direction),
		Content:      rec.Content,
		FunctionName: rec.FunctionName,
		MessageID:    rec.MessageID,
		Timestamp:    rec.Timestamp,
	})
	t.UpdatedAt = rec.Timestamp
	if t.Title == "" {
		t.Title = generateTitle(t)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	if err := os.WriteFile(m.path(rec.ConversationID), data, 0644); err != nil {
		return fmt.Errorf("failed to write transcript file: %w", err)
	}
	return nil
}

// Load reads the transcript of a conversation
func (m *Manager) Load(conversationID string) (*Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.load(conversationID)
}

// LastForUser returns the most recently started conversation of a customer
func (m *Manager) LastForUser(userID string) (*Transcript, error) {
	meta, err := m.loadMeta()
	if err != nil {
		return nil, fmt.Errorf("failed to load meta: %w", err)
	}

	ids := meta.UserIndex[userID]
	if len(ids) == 0 {
		return nil, fmt.Errorf("no conversations for user %s: %w", userID, ErrNotFound)
	}
	return m.Load(ids[len(ids)-1])
}

// ListForUser summarises a customer's conversations, newest first
func (m *Manager) ListForUser(userID string) ([]TranscriptInfo, error) {
	meta, err := m.loadMeta()
	if err != nil {
		return nil, fmt.Errorf("failed to load meta: %w", err)
	}

	var infos []TranscriptInfo
	for _, id := range meta.UserIndex[userID] {
		t, err := m.Load(id)
		if err != nil {
			continue
		}
		infos = append(infos, TranscriptInfo{
			ConversationID: t.ConversationID,
			Title:          t.Title,
			CreatedAt:      t.CreatedAt,
			UpdatedAt:      t.UpdatedAt,
			Entries:        len(t.Entries),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos, nil
}

// Private methods

func (m *Manager) path(conversationID string) string {
	// conversation ids come from phone numbers; keep them filesystem safe
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, conversationID)
	return filepath.Join(m.dir, safe+".json")
}

func (m *Manager) load(conversationID string) (*Transcript, error) {
	data, err := os.ReadFile(m.path(conversationID))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	return &t, nil
}

func (m *Manager) loadMeta() (*MetaIndex, error) {
	data, err := os.ReadFile(m.metaPath)
	if err != nil {
		return nil, err
	}

	var meta MetaIndex
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (m *Manager) saveMeta(meta *MetaIndex) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.metaPath, data, 0644)
}

func (m *Manager) indexConversation(userID, conversationID string) error {
	meta, err := m.loadMeta()
	if err != nil {
		return err
	}
	if meta.UserIndex == nil {
		meta.UserIndex = make(map[string][]string)
	}
	if !slices.Contains(meta.UserIndex[userID], conversationID) {
		meta.UserIndex[userID] = append(meta.UserIndex[userID], conversationID)
	}
	meta.LastConversation = conversationID
	return m.saveMeta(meta)
}

// generateTitle uses the first inbound message
func generateTitle(t *Transcript) string {
	for _, e := range t.Entries {
		if e.Direction != string(agent.Inbound) {
			continue
		}
		content := e.Content
		if idx := strings.IndexByte(content, '\n'); idx != -1 {
			content = content[:idx]
		}
		if runes := []rune(content); len(runes) > 50 {
			content = string(runes[:47]) + "..."
		}
		return content
	}
	return ""
}
