package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nachoal/parts-agent-go/internal/metrics"
	"github.com/nachoal/parts-agent-go/llm"
	"github.com/nachoal/parts-agent-go/session"
	"github.com/nachoal/parts-agent-go/tools"
	"github.com/nachoal/parts-agent-go/tools/registry"
)

// argFields are the keys the argument parser may recover from malformed payloads
var argFields = append(append([]string{}, session.KnownFields...), "piezaNecesaria")

// Orchestrator runs one conversation turn at a time against an LLM, a
// function registry and a session store.
type Orchestrator struct {
	client   llm.Client
	registry *registry.Registry
	store    session.Store
	config   Config
	locks    *keyedMutex
}

// New creates an orchestrator. It takes ownership of client and store and
// closes both on Close.
func New(client llm.Client, reg *registry.Registry, store session.Store, opts ...Option) *Orchestrator {
	config := DefaultConfig()

	// Apply options
	for _, opt := range opts {
		opt(&config)
	}

	return &Orchestrator{
		client:   client,
		registry: reg,
		store:    store,
		config:   config,
		locks:    newKeyedMutex(),
	}
}

// ProcessMessage handles one user utterance and always returns a reply.
// Failures are logged and reported through TurnResult.Error; the apology sent
// instead is still recorded in the session.
func (o *Orchestrator) ProcessMessage(ctx context.Context, conversationID, userText, userID string) *TurnResult {
	if conversationID == "" {
		conversationID = ConversationID(DefaultConversationPrefix, userID)
	}
	if o.config.SerializeTurns {
		unlock, err := o.locks.Lock(ctx, conversationID)
		if err != nil {
			return o.abortTurn(conversationID, userID, fmt.Errorf("wait for conversation lock: %w", err))
		}
		defer unlock()
	}

	now := o.config.Clock()
	sess, err := o.loadOrCreate(ctx, conversationID, userID)
	if err != nil {
		return o.abortTurn(conversationID, userID, err)
	}
	sess.Append(session.NewMessage(session.RoleUser, userText, now))

	result, err := o.runTurn(ctx, sess)
	if err != nil {
		slog.Error("turn failed",
			"conversation_id", conversationID,
			"user_id", userID,
			"error", err)
		result = &TurnResult{Content: apologyMessage, Error: err.Error()}
	}

	reply := session.NewMessage(session.RoleAssistant, result.Content, o.config.Clock())
	reply.FunctionCalled = result.FunctionName
	sess.Append(reply)
	result.State = sess.Status

	if err := o.store.Save(ctx, sess); err != nil {
		slog.Error("failed to save session", "conversation_id", conversationID, "error", err)
		if result.Error == "" {
			result.Error = fmt.Sprintf("save session: %v", err)
		}
	}

	outcome := "ok"
	if result.Error != "" {
		outcome = "error"
	}
	metrics.RecordTurn(outcome)

	return result
}

// loadOrCreate returns the stored session or a fresh one seeded with the
// welcome message. A session evicted mid-conversation is recreated; any other
// store failure is returned so the stored record is never overwritten.
func (o *Orchestrator) loadOrCreate(ctx context.Context, conversationID, userID string) (*session.Session, error) {
	sess, err := o.store.Get(ctx, conversationID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session.New(conversationID, userID, o.config.WelcomeMessage, o.config.Clock()), nil
}

// abortTurn answers with the apology when the turn could not start. The
// session is left untouched.
func (o *Orchestrator) abortTurn(conversationID, userID string, err error) *TurnResult {
	slog.Error("turn aborted",
		"conversation_id", conversationID,
		"user_id", userID,
		"error", err)
	metrics.RecordTurn("error")
	return &TurnResult{Content: apologyMessage, Error: err.Error()}
}

// runTurn is the two-stage pipeline: decide (tools enabled), then reply
// (tools disabled) when a function ran.
func (o *Orchestrator) runTurn(ctx context.Context, sess *session.Session) (*TurnResult, error) {
	resp, err := o.client.Chat(ctx, o.decideRequest(sess))
	if err != nil {
		return nil, fmt.Errorf("decide stage: %w", err)
	}

	call := llm.FirstToolCall(resp)
	if call == nil {
		content := llm.FirstContent(resp)
		if content == "" {
			content = genericReply
		}
		return &TurnResult{Content: content}, nil
	}

	name := call.Function.Name
	parsed := llm.ParseToolArguments(call.Function.Arguments, argFields)
	res := o.registry.Execute(ctx, name, parsed.Args, tools.CallContext{
		UserID:         sess.UserID,
		ConversationID: sess.ID,
		ClientInfo:     sess.ClientInfo,
		Status:         sess.Status,
		Now:            o.config.Clock(),
	})
	slog.Debug("function executed",
		"conversation_id", sess.ID,
		"function", name,
		"args_stage", parsed.Stage,
		"success", res.Success,
		"error", res.Error)

	applyResult(sess, res)

	result := &TurnResult{
		FunctionCalled: true,
		FunctionName:   name,
		ArgsStage:      parsed.Stage,
		FunctionResult: &res,
	}

	content, err := o.reply(ctx, sess, name, res)
	if err != nil {
		slog.Warn("reply stage failed, using template",
			"conversation_id", sess.ID,
			"function", name,
			"error", err)
		metrics.RecordFallbackReply(name)
		content = fallbackReply(name, res, sess)
		result.Fallback = true
	}
	result.Content = content

	return result, nil
}

// reply asks the model for a natural-language answer after a function ran
func (o *Orchestrator) reply(ctx context.Context, sess *session.Session, name string, res tools.Result) (string, error) {
	req := o.baseRequest(sess)
	req.Messages = append(req.Messages, llm.NewMessage(llm.RoleSystem, buildResultNote(name, res, sess)))

	resp, err := o.client.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("reply stage: %w", err)
	}
	content := llm.FirstContent(resp)
	if content == "" {
		return "", errors.New("reply stage: empty response")
	}
	return content, nil
}

func (o *Orchestrator) decideRequest(sess *session.Session) *llm.ChatRequest {
	req := o.baseRequest(sess)
	req.Tools = o.registry.Definitions()
	req.ToolChoice = llm.ToolChoiceAuto
	return req
}

// baseRequest builds the system message plus the recent history window
func (o *Orchestrator) baseRequest(sess *session.Session) *llm.ChatRequest {
	recent := sess.Recent(o.config.HistoryWindow)
	messages := make([]llm.Message, 0, len(recent)+2)
	messages = append(messages, llm.NewMessage(llm.RoleSystem, buildSystemMessage(o.config.SystemPrompt, sess)))
	for _, m := range recent {
		messages = append(messages, llm.NewMessage(llm.Role(m.Role), m.Content))
	}

	return &llm.ChatRequest{
		Model:       o.config.Model,
		Messages:    messages,
		Temperature: o.config.Temperature,
		MaxTokens:   o.config.MaxTokens,
	}
}

// applyResult merges a successful function result into the session
func applyResult(sess *session.Session, res tools.Result) {
	if !res.Success || res.Data == nil {
		return
	}
	if res.Data.ClientInfo != nil {
		sess.ClientInfo = session.Merge(sess.ClientInfo, *res.Data.ClientInfo)
		sess.Status = session.Derive(sess.ClientInfo)
	}
	if res.Data.NextStatus.Valid() {
		sess.Status = res.Data.NextStatus
	}
}

// Session returns a snapshot of a conversation
func (o *Orchestrator) Session(ctx context.Context, conversationID string) (*session.Session, error) {
	return o.store.Get(ctx, conversationID)
}

// Reset discards a conversation; the next message starts over with the welcome
func (o *Orchestrator) Reset(ctx context.Context, conversationID string) error {
	if o.config.SerializeTurns {
		unlock, err := o.locks.Lock(ctx, conversationID)
		if err != nil {
			return fmt.Errorf("wait for conversation lock: %w", err)
		}
		defer unlock()
	}
	return o.store.Delete(ctx, conversationID)
}

// Functions lists the registered function names
func (o *Orchestrator) Functions() []string {
	return o.registry.List()
}

// Close releases the client and the store
func (o *Orchestrator) Close() error {
	return errors.Join(o.client.Close(), o.store.Close())
}
