package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nachoal/parts-agent-go/llm"
)

// EnvPrefix is the prefix for environment overrides, e.g. PARTS_AGENT_LLM_MODEL
const EnvPrefix = "PARTS_AGENT"

// Config represents the application configuration
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Session SessionConfig `mapstructure:"session"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LLMConfig selects and tunes the chat-completions endpoint
type LLMConfig struct {
	Provider          string        `mapstructure:"provider"`
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Organization      string        `mapstructure:"organization"`
	Temperature       float32       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	TopP              float32       `mapstructure:"top_p"`
	FrequencyPenalty  float32       `mapstructure:"frequency_penalty"`
	PresencePenalty   float32       `mapstructure:"presence_penalty"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// SessionConfig configures the session store
type SessionConfig struct {
	Backend       string        `mapstructure:"backend"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	BadgerPath    string        `mapstructure:"badger_path"`
}

// AgentConfig configures the orchestrator
type AgentConfig struct {
	HistoryWindow      int    `mapstructure:"history_window"`
	ConversationPrefix string `mapstructure:"conversation_prefix"`
	SerializeTurns     bool   `mapstructure:"serialize_turns"`
	SystemPromptFile   string `mapstructure:"system_prompt_file"`
	WelcomeMessage     string `mapstructure:"welcome_message"`

	// TranscriptDir enables per-conversation transcripts when set
	TranscriptDir string `mapstructure:"transcript_dir"`
}

// LogConfig configures slog
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Preset holds the endpoint defaults of an OpenAI-compatible provider
type Preset struct {
	BaseURL string
	Model   string
	// KeyEnv is read when no api key is configured
	KeyEnv string
}

// Presets are the known providers
var Presets = map[string]Preset{
	"openai":   {BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini", KeyEnv: "OPENAI_API_KEY"},
	"groq":     {BaseURL: "https://api.groq.com/openai/v1", Model: "llama-3.3-70b-versatile", KeyEnv: "GROQ_API_KEY"},
	"deepseek": {BaseURL: "https://api.deepseek.com", Model: "deepseek-chat", KeyEnv: "DEEPSEEK_API_KEY"},
	"moonshot": {BaseURL: "https://api.moonshot.ai/v1", Model: "moonshot-v1-8k", KeyEnv: "MOONSHOT_API_KEY"},
	"lmstudio": {BaseURL: "http://localhost:1234/v1", Model: "local-model", KeyEnv: "LMSTUDIO_API_KEY"},
}

// Session backends
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.organization", "")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("llm.top_p", 0)
	v.SetDefault("llm.frequency_penalty", 0)
	v.SetDefault("llm.presence_penalty", 0)
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.requests_per_minute", 0)

	v.SetDefault("session.backend", BackendMemory)
	v.SetDefault("session.timeout", 30*time.Minute)
	v.SetDefault("session.sweep_interval", 5*time.Minute)
	v.SetDefault("session.badger_path", "")

	v.SetDefault("agent.history_window", 8)
	v.SetDefault("agent.conversation_prefix", "whatsapp")
	v.SetDefault("agent.serialize_turns", true)
	v.SetDefault("agent.system_prompt_file", "")
	v.SetDefault("agent.welcome_message", "")
	v.SetDefault("agent.transcript_dir", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.addr", "")
}

// Load reads configuration from defaults, the optional file at path and the
// environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyPreset()
	return &cfg, nil
}

// applyPreset fills endpoint settings the user left empty
func (c *Config) applyPreset() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	p, ok := Presets[c.LLM.Provider]
	if !ok {
		return
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = p.BaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = p.Model
	}
	if c.LLM.APIKey == "" && p.KeyEnv != "" {
		c.LLM.APIKey = os.Getenv(p.KeyEnv)
	}
}

// ClientOptions is the llm view of the configuration
func (c *Config) ClientOptions() llm.ClientOptions {
	return llm.ClientOptions{
		APIKey:            c.LLM.APIKey,
		BaseURL:           c.LLM.BaseURL,
		Timeout:           c.LLM.Timeout,
		MaxRetries:        c.LLM.MaxRetries,
		DefaultModel:      c.LLM.Model,
		Organization:      c.LLM.Organization,
		RequestsPerMinute: c.LLM.RequestsPerMinute,
		Temperature:       c.LLM.Temperature,
		MaxTokens:         c.LLM.MaxTokens,
		TopP:              c.LLM.TopP,
		FrequencyPenalty:  c.LLM.FrequencyPenalty,
		PresencePenalty:   c.LLM.PresencePenalty,
	}
}

// ClientOptionFuncs converts the configuration to client options
func (c *Config) ClientOptionFuncs() []llm.ClientOption {
	opts := []llm.ClientOption{
		llm.WithAPIKey(c.LLM.APIKey),
		llm.WithBaseURL(c.LLM.BaseURL),
		llm.WithModel(c.LLM.Model),
		llm.WithTimeout(c.LLM.Timeout),
		llm.WithMaxRetries(c.LLM.MaxRetries),
		llm.WithSampling(c.LLM.Temperature, c.LLM.MaxTokens),
		llm.WithPenalties(c.LLM.TopP, c.LLM.FrequencyPenalty, c.LLM.PresencePenalty),
		llm.WithRequestsPerMinute(c.LLM.RequestsPerMinute),
	}
	if c.LLM.Organization != "" {
		opts = append(opts, llm.WithOrganization(c.LLM.Organization))
	}
	return opts
}

// Validate returns every problem found; an empty list means the config is usable
func (c *Config) Validate() []string {
	problems := llm.ValidateOptions(c.ClientOptions())

	if _, ok := Presets[c.LLM.Provider]; !ok {
		problems = append(problems, fmt.Sprintf("unknown provider %q", c.LLM.Provider))
	}
	if c.LLM.Timeout <= 0 {
		problems = append(problems, "llm timeout must be positive")
	}
	if c.LLM.MaxRetries < 0 {
		problems = append(problems, "llm max retries cannot be negative")
	}

	switch c.Session.Backend {
	case BackendMemory:
	case BackendBadger:
	default:
		problems = append(problems, fmt.Sprintf("unknown session backend %q (want memory or badger)", c.Session.Backend))
	}
	if c.Session.Timeout <= 0 {
		problems = append(problems, "session timeout must be positive")
	}

	if c.Agent.HistoryWindow <= 0 {
		problems = append(problems, "agent history window must be greater than 0")
	}
	if strings.TrimSpace(c.Agent.ConversationPrefix) == "" {
		problems = append(problems, "agent conversation prefix is required")
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}

	return problems
}
