package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"rbb-sathi-backend/internal/chat"
	"rbb-sathi-backend/internal/types"
)

// StatusError is returned by Client when the endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat endpoint returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to a running server's POST /api/chat endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

func (c *Client) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	body := types.ChatRequest{Messages: make([]types.ChatMessage, 0, len(turns))}
	for _, t := range turns {
		body.Messages = append(body.Messages, types.ChatMessage{Role: string(t.Role), Content: t.Content})
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	var out types.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out.Message, nil
}
