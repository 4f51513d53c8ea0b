package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultReplyDelay = 700 * time.Millisecond
	DefaultTimeout    = 30 * time.Second
)

// Session is one conversation: an append-only history plus the transient
// state a chat panel shows (pending reply, panel open). At most one reply is
// being resolved at any time.
type Session struct {
	mu        sync.Mutex
	history   []Message
	pending   bool
	open      bool
	resolver  Resolver
	assistant Assistant
	delay     time.Duration
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
	welcome   string
}

type Option func(*Session)

// WithDelay sets the pause before a locally resolved reply is appended.
func WithDelay(d time.Duration) Option { return func(s *Session) { s.delay = d } }

// WithTimeout bounds the remote call; zero disables the bound.
func WithTimeout(d time.Duration) Option { return func(s *Session) { s.timeout = d } }

func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

func WithLogger(l zerolog.Logger) Option { return func(s *Session) { s.log = l } }

// WithWelcome replaces the greeting the session starts with; empty starts
// with an empty history.
func WithWelcome(text string) Option { return func(s *Session) { s.welcome = text } }

func NewSession(resolver Resolver, assistant Assistant, opts ...Option) *Session {
	s := &Session{
		resolver:  resolver,
		assistant: assistant,
		delay:     DefaultReplyDelay,
		timeout:   DefaultTimeout,
		now:       time.Now,
		log:       zerolog.Nop(),
		welcome:   WelcomeMessage,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.welcome != "" {
		s.history = append(s.history, Message{Role: RoleAssistant, Content: s.welcome, Timestamp: s.now()})
	}
	return s
}

// Send appends the trimmed utterance, resolves a reply and appends it. It
// returns false without touching the history when the utterance is blank or
// another reply is still pending. Once accepted the reply is always
// appended, even if ctx is cancelled meanwhile.
func (s *Session) Send(ctx context.Context, utterance string) (Message, bool) {
	text := strings.TrimSpace(utterance)

	s.mu.Lock()
	if text == "" || s.pending {
		s.mu.Unlock()
		return Message{}, false
	}
	s.history = append(s.history, Message{Role: RoleUser, Content: text, Timestamp: s.now()})
	s.pending = true
	turns := s.turnsLocked()
	s.mu.Unlock()

	reply := s.resolve(context.WithoutCancel(ctx), text, turns)

	s.mu.Lock()
	defer s.mu.Unlock()
	msg := Message{Role: RoleAssistant, Content: reply, Timestamp: s.now()}
	s.history = append(s.history, msg)
	s.pending = false
	return msg, true
}

func (s *Session) resolve(ctx context.Context, text string, turns []Turn) string {
	if s.resolver != nil {
		if reply, ok := s.resolver.Resolve(text); ok {
			if s.delay > 0 {
				time.Sleep(s.delay)
			}
			return reply
		}
	}

	if s.assistant == nil {
		s.log.Warn().Msg("no remote assistant configured")
		return ApologyMessage
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	reply, err := s.assistant.Complete(ctx, turns)
	if err != nil {
		s.log.Error().Err(err).Int("turns", len(turns)).Msg("remote assistant failed")
		return ApologyMessage
	}
	if strings.TrimSpace(reply) == "" {
		return EmptyReplyMessage
	}
	return reply
}

func (s *Session) turnsLocked() []Turn {
	out := make([]Turn, 0, len(s.history))
	for _, m := range s.history {
		out = append(out, Turn{Role: m.Role, Content: m.Content})
	}
	return out
}

// History returns a copy of the conversation log.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// Turns returns the history without timestamps.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnsLocked()
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Suggestions returns the quick prompts while the user has not written
// anything yet.
func (s *Session) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) > 1 || s.pending {
		return nil
	}
	return append([]string(nil), QuickPrompts...)
}

// Panel state

func (s *Session) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func (s *Session) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
	return s.open
}

func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
