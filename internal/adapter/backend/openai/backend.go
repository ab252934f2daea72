package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Backend speaks the OpenAI-compatible chat-completions protocol, which
// most hosted and local model servers expose. The caller owns the deadline
// through ctx; the client sets none of its own.
type Backend struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Backend {
	return &Backend{cfg: cfg, client: &http.Client{}}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (b *Backend) Complete(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(chatRequest{
		Model:    b.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimSuffix(b.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend status %d: %s", resp.StatusCode, truncate(payload, 200))
	}

	content := gjson.GetBytes(payload, "choices.0.message.content")
	if !content.Exists() {
		return nil, fmt.Errorf("backend response missing message content")
	}
	return []byte(content.String()), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
