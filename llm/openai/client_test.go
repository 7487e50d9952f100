package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nachoal/parts-agent-go/llm"
)

func newTestClient(t *testing.T, url string, opts ...llm.ClientOption) *Client {
	t.Helper()
	base := []llm.ClientOption{llm.WithAPIKey("sk-test"), llm.WithBaseURL(url), llm.WithModel("test-model")}
	c, err := NewClient(append(base, opts...)...)
	if err != nil {
		t.Fatalf("unexpected client error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestChat_SendsRequestAndDecodesToolCall(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":null,
			"tool_calls":[{"id":"call_1","type":"function","function":{"name":"guardar_informacion","arguments":"{\"nombre\":\"Juan\"}"}}]},
			"finish_reason":"tool_calls"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "Soy Juan")},
		Tools: []llm.Tool{{Type: "function", Function: llm.FunctionDefinition{
			Name:       "guardar_informacion",
			Parameters: map[string]interface{}{"type": "object"},
		}}},
		ToolChoice: llm.ToolChoiceAuto,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := llm.FirstToolCall(resp)
	if call == nil || call.Function.Name != "guardar_informacion" {
		t.Fatalf("expected guardar_informacion call, got %+v", call)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Fatalf("expected usage to be decoded, got %+v", resp.Usage)
	}

	if captured["model"] != "test-model" {
		t.Fatalf("expected default model to be applied, got %v", captured["model"])
	}
	if captured["stream"] != false {
		t.Fatalf("expected stream:false, got %v", captured["stream"])
	}
	if captured["tool_choice"] != "auto" {
		t.Fatalf("expected tool_choice auto, got %v", captured["tool_choice"])
	}
	if captured["temperature"] != 0.3 {
		t.Fatalf("expected default temperature 0.3, got %v", captured["temperature"])
	}
	if captured["max_tokens"] != float64(500) {
		t.Fatalf("expected default max_tokens 500, got %v", captured["max_tokens"])
	}
	if _, ok := captured["top_p"]; ok {
		t.Fatalf("expected top_p to be omitted when unset")
	}
}

func TestChat_DropsToolChoiceWithoutTools(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hola"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.Chat(context.Background(), &llm.ChatRequest{
		Messages:   []llm.Message{llm.NewMessage(llm.RoleUser, "hola")},
		ToolChoice: llm.ToolChoiceAuto,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if llm.FirstContent(resp) != "Hola" {
		t.Fatalf("expected content Hola, got %q", llm.FirstContent(resp))
	}
	if _, ok := captured["tool_choice"]; ok {
		t.Fatalf("expected tool_choice to be omitted without tools")
	}
}

func TestChat_ClassifiesStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, llm.ErrUnauthorized},
		{http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, llm.ErrRateLimited},
		{http.StatusBadRequest, `{"error":{"message":"messages is required"}}`, llm.ErrBadRequest},
		{http.StatusInternalServerError, `oops`, llm.ErrUpstream},
		{http.StatusForbidden, `{}`, llm.ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			_, err := c.Chat(context.Background(), &llm.ChatRequest{Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "x")}})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var apiErr *llm.APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Fatalf("expected APIError with status %d, got %#v", tt.status, err)
			}
		})
	}
}

func TestChat_BadRequestCarriesUpstreamMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid tool schema"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Chat(context.Background(), &llm.ChatRequest{Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "x")}})
	if err == nil || !strings.Contains(err.Error(), "invalid tool schema") {
		t.Fatalf("expected upstream message in error, got %v", err)
	}
}

func TestChat_RetriesOnlyUpstreamFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, llm.WithMaxRetries(1))
	resp, err := c.Chat(context.Background(), &llm.ChatRequest{Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "x")}})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if llm.FirstContent(resp) != "ok" {
		t.Fatalf("unexpected content %q", llm.FirstContent(resp))
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestChat_DoesNotRetryRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, llm.WithMaxRetries(3))
	_, err := c.Chat(context.Background(), &llm.ChatRequest{Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "x")}})

	var apiErr *llm.APIError
	if !errors.As(err, &apiErr) || apiErr.RetryAfter != 7*time.Second {
		t.Fatalf("expected RetryAfter 7s, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestChat_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, llm.WithTimeout(50*time.Millisecond))
	_, err := c.Chat(context.Background(), &llm.ChatRequest{Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "x")}})
	if !errors.Is(err, llm.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestChat_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url)
	_, err := c.Chat(context.Background(), &llm.ChatRequest{Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "x")}})
	if !errors.Is(err, llm.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected error without API key")
	}
}
