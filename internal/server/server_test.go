package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"rbb-sathi-backend/internal/assistant"
	"rbb-sathi-backend/internal/chat"
	"rbb-sathi-backend/internal/config"
	"rbb-sathi-backend/internal/types"
)

// fakeOpenAI answers chat completions with a fixed reply, or fails with
// status when it is set.
func fakeOpenAI(t *testing.T, reply string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig() config.Config {
	return config.Config{
		Port:             "0",
		AllowedOrigin:    "*",
		Model:            "gpt-4o-mini",
		AssistantTimeout: 2 * time.Second,
		ReplyDelay:       0,
		SessionTTL:       time.Minute,
		MaxSessions:      10,
	}
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	s, err := NewServer(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func withProvider(t *testing.T, reply string, status int) config.Config {
	cfg := testConfig()
	cfg.OpenAIAPIKey = "test-key"
	cfg.OpenAIBaseURL = fakeOpenAI(t, reply, status).URL + "/v1"
	return cfg
}

func do(t *testing.T, s *Server, method, path, sid string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.Header.Set(SessionHeader, sid)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestChatEndpointAlwaysOK(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Config
		body any
		want string
	}{
		{"invalid json", testConfig(), "{not json", assistant.ApologyMessage},
		{"no api key", testConfig(), types.ChatRequest{Messages: []types.ChatMessage{{Role: "user", Content: "hi"}}}, assistant.UnavailableMessage},
		{"provider reply", withProvider(t, "Here is what I found.", 0), types.ChatRequest{Messages: []types.ChatMessage{{Role: "user", Content: "What's the weather today"}}}, "Here is what I found."},
		{"provider failure", withProvider(t, "", http.StatusInternalServerError), types.ChatRequest{Messages: []types.ChatMessage{{Role: "user", Content: "hi"}}}, assistant.ApologyMessage},
		{"no turns", withProvider(t, "unused", 0), types.ChatRequest{}, assistant.ApologyMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, tc.cfg)
			rec := do(t, s, http.MethodPost, "/api/chat", "", tc.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := decode[types.ChatResponse](t, rec); got.Message != tc.want {
				t.Fatalf("message = %q, want %q", got.Message, tc.want)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/api/chat/session", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	sid := rec.Header().Get(SessionHeader)
	if sid == "" {
		t.Fatalf("no session id issued")
	}
	var cookieSet bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName && c.Value == sid && c.HttpOnly {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Fatalf("session cookie not set")
	}
	snap := decode[types.SessionSnapshot](t, rec)
	if len(snap.Messages) != 1 || snap.Messages[0].Content != chat.WelcomeMessage || len(snap.Suggestions) != 4 || snap.Open {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}

	rec = do(t, s, http.MethodPost, "/api/chat/session/messages", sid, types.SendRequest{Message: "hello"})
	sent := decode[types.SendResponse](t, rec)
	if !sent.Accepted || sent.Reply == nil || !strings.HasPrefix(sent.Reply.Content, "Namaste! 🙏 Welcome to RBB Sathi.") {
		t.Fatalf("unexpected send response: %+v", sent)
	}
	if len(sent.Messages) != 3 || sent.Pending || len(sent.Suggestions) != 0 {
		t.Fatalf("unexpected snapshot after send: %+v", sent.SessionSnapshot)
	}

	rec = do(t, s, http.MethodPost, "/api/chat/session/messages", sid, types.SendRequest{Message: "   "})
	if blank := decode[types.SendResponse](t, rec); blank.Accepted || len(blank.Messages) != 3 {
		t.Fatalf("blank message accepted: %+v", blank)
	}

	rec = do(t, s, http.MethodPut, "/api/chat/session/panel", sid, types.PanelRequest{Open: true})
	if panel := decode[types.SessionSnapshot](t, rec); !panel.Open {
		t.Fatalf("panel not opened")
	}

	rec = do(t, s, http.MethodDelete, "/api/chat/session", sid, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/api/chat/session", sid, nil)
	if fresh := decode[types.SessionSnapshot](t, rec); len(fresh.Messages) != 1 || fresh.Open {
		t.Fatalf("session not reset: %+v", fresh)
	}
}

func TestSessionRemoteFailureApologises(t *testing.T) {
	s := newTestServer(t, withProvider(t, "", http.StatusBadGateway))
	rec := do(t, s, http.MethodPost, "/api/chat/session/messages", "", types.SendRequest{Message: "What's the weather today"})
	sent := decode[types.SendResponse](t, rec)
	if !sent.Accepted || sent.Reply.Content != chat.ApologyMessage {
		t.Fatalf("unexpected reply: %+v", sent.Reply)
	}
	if len(sent.Messages) != 3 || sent.Pending {
		t.Fatalf("unexpected snapshot: %+v", sent.SessionSnapshot)
	}
}

func TestSessionIgnoresForeignIDs(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := do(t, s, http.MethodGet, "/api/chat/session", "not-a-uuid", nil)
	if got := rec.Header().Get(SessionHeader); got == "not-a-uuid" || got == "" {
		t.Fatalf("foreign session id accepted: %q", got)
	}
}

func TestSendRejectsInvalidJSON(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := do(t, s, http.MethodPost, "/api/chat/session/messages", "", "{")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBackofficeDecisions(t *testing.T) {
	s := newTestServer(t, testConfig())

	docs := decode[types.DocumentsResponse](t, do(t, s, http.MethodGet, "/api/backoffice/documents", "", nil))
	if len(docs.Pending) != 6 || len(docs.Processed) != 0 {
		t.Fatalf("unexpected queue: %d pending %d processed", len(docs.Pending), len(docs.Processed))
	}

	rec := do(t, s, http.MethodPost, "/api/backoffice/documents/DOC-2025-0234/approve", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d: %s", rec.Code, rec.Body.String())
	}
	d := decode[types.DecisionResponse](t, rec)
	if d.Document.Status != "approved" || d.Audit.ID != "AUD-009" || d.Audit.ActedBy != "Admin User" {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d.Notice != `Document "IT Infrastructure Upgrade Prop..." has been approved.` {
		t.Fatalf("notice = %q", d.Notice)
	}

	if rec := do(t, s, http.MethodPost, "/api/backoffice/documents/DOC-2025-0234/reject", "", nil); rec.Code != http.StatusConflict {
		t.Fatalf("second decision status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/backoffice/documents/DOC-404/approve", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown document status = %d", rec.Code)
	}

	audit := decode[types.AuditResponse](t, do(t, s, http.MethodGet, "/api/backoffice/audit", "", nil))
	if len(audit.Entries) != 5 || audit.Entries[0].ID != "AUD-009" {
		t.Fatalf("unexpected audit: %+v", audit.Entries)
	}
	stats := decode[types.StatsResponse](t, do(t, s, http.MethodGet, "/api/backoffice/stats", "", nil))
	if stats.Pending != 5 || stats.AuditEntries != 5 || stats.ActiveVendors != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	vendors := decode[types.VendorsResponse](t, do(t, s, http.MethodGet, "/api/backoffice/vendors", "", nil))
	if len(vendors.Vendors) != 4 || vendors.Vendors[2].Stages[vendors.Vendors[2].Stage] != "PO Issued" {
		t.Fatalf("unexpected vendors: %+v", vendors)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, testConfig())

	health := decode[map[string]string](t, do(t, s, http.MethodGet, "/api/health", "", nil))
	if health["status"] != "ok" || health["assistant"] != "unavailable" || health["database"] != "disabled" {
		t.Fatalf("unexpected health: %v", health)
	}

	do(t, s, http.MethodPost, "/api/chat/session/messages", "", types.SendRequest{Message: "show my balance"})
	rec := do(t, s, http.MethodGet, "/metrics", "", nil)
	body := rec.Body.String()
	for _, want := range []string{
		`sathi_chat_resolutions_total{intent="balance",source="local"} 1`,
		`sathi_chat_sessions_active 1`,
		`sathi_http_requests_total`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestSweepSessions(t *testing.T) {
	s := newTestServer(t, testConfig())
	do(t, s, http.MethodGet, "/api/chat/session", "", nil)
	if n := s.SweepSessions(time.Now()); n != 0 {
		t.Fatalf("fresh session swept")
	}
	if n := s.SweepSessions(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("idle session not swept: %d", n)
	}
}
