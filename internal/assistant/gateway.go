// Package assistant forwards conversations the local rules cannot answer to
// a hosted language model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"rbb-sathi-backend/internal/chat"
)

// UnavailableMessage is returned, as a normal reply, when no API key is configured.
const UnavailableMessage = "RBB Sathi is temporarily unavailable. Please contact our helpline at 1660-01-00001 or visit your nearest branch."

// ApologyMessage is what the HTTP boundary answers when the model call fails.
const ApologyMessage = "I apologize, I am experiencing technical difficulties. Please try again shortly or contact our helpline at 1660-01-00001."

var (
	ErrNoMessages        = errors.New("assistant: no user or assistant messages")
	ErrMalformedResponse = errors.New("assistant: malformed response")
)

type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Prompt     PromptSpec
	Logger     zerolog.Logger
	HTTPClient *http.Client
}

// Gateway implements chat.Assistant on top of an OpenAI compatible API.
type Gateway struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	prompt  PromptSpec
	log     zerolog.Logger
}

func NewGateway(opts Options) *Gateway {
	g := &Gateway{
		model:   opts.Model,
		timeout: opts.Timeout,
		prompt:  opts.Prompt,
		log:     opts.Logger,
	}
	if g.model == "" {
		g.model = "gpt-4o-mini"
	}
	if g.prompt.System == "" {
		g.prompt = DefaultPrompt()
	}
	if opts.APIKey != "" {
		config := openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			config.BaseURL = opts.BaseURL
		}
		if opts.HTTPClient != nil {
			config.HTTPClient = opts.HTTPClient
		}
		g.client = openai.NewClientWithConfig(config)
	}
	return g
}

// Available reports whether an API key was configured.
func (g *Gateway) Available() bool { return g.client != nil }

// Complete sends the system prompt followed by the user and assistant turns
// and returns the first choice. Turns with any other role are dropped.
func (g *Gateway) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	if g.client == nil {
		return UnavailableMessage, nil
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: g.prompt.System},
	}
	for _, t := range turns {
		switch t.Role {
		case chat.RoleUser:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: t.Content})
		case chat.RoleAssistant:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: t.Content})
		}
	}
	if len(messages) == 1 {
		return "", ErrNoMessages
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.prompt.Style.MaxTokens,
		Temperature: g.prompt.Style.Temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrMalformedResponse
	}
	g.log.Debug().
		Str("model", g.model).
		Int("turns", len(messages)-1).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("assistant reply")
	return resp.Choices[0].Message.Content, nil
}

// ErrorKind buckets an error from Complete or Client.Complete for metrics.
func ErrorKind(err error) string {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var statusErr *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrNoMessages):
		return "malformed"
	case errors.As(err, &apiErr), errors.As(err, &reqErr), errors.As(err, &statusErr):
		return "provider"
	default:
		return "transport"
	}
}
