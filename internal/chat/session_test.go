package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeResolver struct {
	replies map[string]string
}

func (f fakeResolver) Resolve(utterance string) (string, bool) {
	r, ok := f.replies[strings.ToLower(utterance)]
	return r, ok
}

type fakeAssistant struct {
	mu    sync.Mutex
	calls [][]Turn
	reply string
	err   error
	block chan struct{}
}

func (f *fakeAssistant) Complete(ctx context.Context, turns []Turn) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]Turn(nil), turns...))
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.reply, f.err
}

func (f *fakeAssistant) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var fixedNow = func() time.Time { return time.Date(2025, 2, 20, 10, 30, 0, 0, time.UTC) }

func newTestSession(r Resolver, a Assistant) *Session {
	return NewSession(r, a, WithDelay(0), WithClock(fixedNow))
}

func TestNewSessionStartsWithWelcome(t *testing.T) {
	s := newTestSession(nil, nil)
	h := s.History()
	if len(h) != 1 || h[0].Role != RoleAssistant || h[0].Content != WelcomeMessage {
		t.Fatalf("unexpected initial history: %+v", h)
	}
	if got := s.Suggestions(); len(got) != len(QuickPrompts) {
		t.Fatalf("suggestions: got %v", got)
	}

	empty := NewSession(nil, nil, WithWelcome(""))
	if empty.Len() != 0 {
		t.Fatalf("want empty history, got %d", empty.Len())
	}
}

func TestSendIgnoresBlankInput(t *testing.T) {
	a := &fakeAssistant{reply: "x"}
	s := newTestSession(fakeResolver{}, a)
	before := s.Len()
	for _, in := range []string{"", "   ", "\t\n"} {
		if _, ok := s.Send(context.Background(), in); ok {
			t.Fatalf("blank input %q accepted", in)
		}
	}
	if s.Len() != before {
		t.Fatalf("history changed: %d -> %d", before, s.Len())
	}
	if a.callCount() != 0 {
		t.Fatalf("assistant called for blank input")
	}
}

func TestLocalMatchShortCircuitsRemote(t *testing.T) {
	a := &fakeAssistant{reply: "remote"}
	s := newTestSession(fakeResolver{replies: map[string]string{"hello": "local hi"}}, a)

	msg, ok := s.Send(context.Background(), "  hello  ")
	if !ok {
		t.Fatalf("send rejected")
	}
	if msg.Content != "local hi" || msg.Role != RoleAssistant {
		t.Fatalf("unexpected reply: %+v", msg)
	}
	if a.callCount() != 0 {
		t.Fatalf("remote called despite local match")
	}
	h := s.History()
	if len(h) != 3 || h[1].Content != "hello" || h[1].Role != RoleUser {
		t.Fatalf("unexpected history: %+v", h)
	}
	if s.Pending() {
		t.Fatalf("pending left set")
	}
	if s.Suggestions() != nil {
		t.Fatalf("suggestions should disappear after the first message")
	}
}

func TestLocalReplyWaitsForDelay(t *testing.T) {
	s := NewSession(fakeResolver{replies: map[string]string{"hi": "hey"}}, nil, WithDelay(30*time.Millisecond))
	start := time.Now()
	s.Send(context.Background(), "hi")
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("reply came back after %v, before the delay", elapsed)
	}
}

func TestRemoteReceivesFullHistory(t *testing.T) {
	a := &fakeAssistant{reply: "It is sunny."}
	s := newTestSession(fakeResolver{replies: map[string]string{"hello": "hi there"}}, a)
	s.Send(context.Background(), "hello")

	msg, ok := s.Send(context.Background(), "What's the weather today")
	if !ok || msg.Content != "It is sunny." {
		t.Fatalf("unexpected reply: %+v ok=%v", msg, ok)
	}
	if a.callCount() != 1 {
		t.Fatalf("want exactly one remote call, got %d", a.callCount())
	}
	got := a.calls[0]
	want := []Turn{
		{Role: RoleAssistant, Content: WelcomeMessage},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi there"},
		{Role: RoleUser, Content: "What's the weather today"},
	}
	if len(got) != len(want) {
		t.Fatalf("turns: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("turn %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestRemoteFailureAppendsApology(t *testing.T) {
	a := &fakeAssistant{err: errors.New("connection refused")}
	s := newTestSession(fakeResolver{}, a)
	before := s.Len()

	msg, ok := s.Send(context.Background(), "What's the weather today")
	if !ok {
		t.Fatalf("send rejected")
	}
	if msg.Content != ApologyMessage {
		t.Fatalf("want apology, got %q", msg.Content)
	}
	if s.Len() != before+2 {
		t.Fatalf("history grew by %d, want 2", s.Len()-before)
	}
	if s.Pending() {
		t.Fatalf("pending left set after failure")
	}
}

func TestEmptyRemoteReplyUsesFallback(t *testing.T) {
	s := newTestSession(fakeResolver{}, &fakeAssistant{reply: "  "})
	msg, _ := s.Send(context.Background(), "tell me a story")
	if msg.Content != EmptyReplyMessage {
		t.Fatalf("want fallback, got %q", msg.Content)
	}
}

func TestMissingAssistantAppendsApology(t *testing.T) {
	s := newTestSession(fakeResolver{}, nil)
	msg, ok := s.Send(context.Background(), "anything")
	if !ok || msg.Content != ApologyMessage {
		t.Fatalf("unexpected: %+v ok=%v", msg, ok)
	}
}

func TestSendWhilePendingIsIgnored(t *testing.T) {
	a := &fakeAssistant{reply: "done", block: make(chan struct{})}
	s := newTestSession(fakeResolver{}, a)

	done := make(chan struct{})
	go func() {
		s.Send(context.Background(), "first question")
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !s.Pending() {
		if time.Now().After(deadline) {
			t.Fatalf("first send never became pending")
		}
		time.Sleep(time.Millisecond)
	}

	lenDuring := s.Len()
	if _, ok := s.Send(context.Background(), "second question"); ok {
		t.Fatalf("second send accepted while pending")
	}
	if s.Len() != lenDuring || !s.Pending() {
		t.Fatalf("state changed by ignored send: len %d -> %d pending=%v", lenDuring, s.Len(), s.Pending())
	}

	close(a.block)
	<-done
	if s.Pending() {
		t.Fatalf("pending left set")
	}
	if a.callCount() != 1 {
		t.Fatalf("want one remote call, got %d", a.callCount())
	}
	h := s.History()
	if h[len(h)-1].Content != "done" || h[len(h)-2].Content != "first question" {
		t.Fatalf("unexpected tail: %+v", h[len(h)-2:])
	}
}

func TestCancelledCallerStillGetsReply(t *testing.T) {
	a := &fakeAssistant{reply: "late answer"}
	s := newTestSession(fakeResolver{}, a)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg, ok := s.Send(ctx, "question")
	if !ok || msg.Content != "late answer" {
		t.Fatalf("unexpected: %+v ok=%v", msg, ok)
	}
}

func TestHistoryIsACopy(t *testing.T) {
	s := newTestSession(nil, nil)
	h := s.History()
	h[0].Content = "tampered"
	if s.History()[0].Content != WelcomeMessage {
		t.Fatalf("history mutated through copy")
	}
}

func TestPanelState(t *testing.T) {
	s := newTestSession(nil, nil)
	if s.IsOpen() {
		t.Fatalf("panel should start closed")
	}
	if !s.Toggle() || !s.IsOpen() {
		t.Fatalf("toggle should open")
	}
	s.Close()
	if s.IsOpen() {
		t.Fatalf("close did not close")
	}
	s.Open()
	if !s.IsOpen() {
		t.Fatalf("open did not open")
	}
}
