package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 500, cfg.LLM.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)

	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval)

	assert.Equal(t, 8, cfg.Agent.HistoryWindow)
	assert.Equal(t, "whatsapp", cfg.Agent.ConversationPrefix)
	assert.True(t, cfg.Agent.SerializeTurns)

	assert.Empty(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parts-agent.yaml")
	content := `
llm:
  provider: groq
  api_key: gsk-file
  temperature: 0.5
session:
  backend: badger
  timeout: 10m
agent:
  history_window: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("PARTS_AGENT_LLM_MODEL", "llama-3.1-8b-instant")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
	assert.Equal(t, "gsk-file", cfg.LLM.APIKey)
	assert.InDelta(t, 0.5, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, BackendBadger, cfg.Session.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, 4, cfg.Agent.HistoryWindow)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_ReportsProblems(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	cfg.LLM.Temperature = 3
	cfg.Session.Backend = "redis"
	cfg.Agent.HistoryWindow = 0
	cfg.Log.Format = "xml"

	problems := cfg.Validate()
	assert.Contains(t, problems, "API key is required")
	assert.Contains(t, problems, "temperature must be between 0 and 2, got 3")
	assert.Contains(t, problems, `unknown session backend "redis" (want memory or badger)`)
	assert.Contains(t, problems, "agent history window must be greater than 0")
	assert.Contains(t, problems, `unknown log format "xml"`)
}

func TestClientOptionFuncs(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, cfg.ClientOptions().DefaultModel, "gpt-4o-mini")
	assert.Len(t, cfg.ClientOptionFuncs(), 8)
}
