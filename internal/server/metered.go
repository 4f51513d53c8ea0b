package server

import (
	"context"
	"time"

	"rbb-sathi-backend/internal/assistant"
	"rbb-sathi-backend/internal/chat"
	"rbb-sathi-backend/internal/intent"
	"rbb-sathi-backend/internal/metrics"
)

// meteredResolver counts local answers by intent.
type meteredResolver struct {
	resolver *intent.Resolver
	metrics  *metrics.Metrics
}

func (m *meteredResolver) Resolve(utterance string) (string, bool) {
	match, ok := m.resolver.Match(utterance)
	if ok {
		m.metrics.RecordResolution("local", string(match.Intent))
	}
	return match.Reply, ok
}

// meteredAssistant records outcome and latency of every remote call.
type meteredAssistant struct {
	assistant chat.Assistant
	metrics   *metrics.Metrics
}

func (m *meteredAssistant) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	start := time.Now()
	reply, err := m.assistant.Complete(ctx, turns)
	m.metrics.RecordAssistantRequest(assistant.ErrorKind(err), time.Since(start))
	if err == nil {
		m.metrics.RecordResolution("remote", string(intent.KindNone))
	}
	return reply, err
}
