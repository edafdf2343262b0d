// Package ai talks to an OpenAI-compatible chat completions gateway and
// turns its free-form answers into validated events.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"eventhub/pkg/utils"
)

var (
	ErrNotConfigured   = errors.New("ai gateway key is not configured")
	ErrGatewayFailed   = errors.New("ai gateway request failed")
	ErrRateLimited     = errors.New("ai gateway rate limited")
	ErrPaymentRequired = errors.New("ai gateway payment required")
)

// Completer answers a single system+user prompt pair.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Gateway struct {
	URL   string
	Key   string
	Model string
	HTTP  *http.Client
}

func NewGateway(cfg utils.RefreshConfig) *Gateway {
	return &Gateway{
		URL:   cfg.AIURL,
		Key:   cfg.AIKey,
		Model: cfg.AIModel,
		HTTP:  &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete returns the first choice's content, "" when there is none.
func (g *Gateway) Complete(ctx context.Context, system, user string) (string, error) {
	if strings.TrimSpace(g.Key) == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(chatRequest{
		Model: g.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode: %w", ErrGatewayFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrGatewayFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request: %w", ErrGatewayFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrGatewayFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", ErrPaymentRequired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("%w: status %d: %s", ErrGatewayFailed, resp.StatusCode, snippet(raw))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode: %w", ErrGatewayFailed, err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
