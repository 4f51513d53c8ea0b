package server

import (
	"encoding/json"
	"net/http"

	"rbb-sathi-backend/internal/assistant"
	"rbb-sathi-backend/internal/chat"
	"rbb-sathi-backend/internal/types"
)

// handleChat forwards a whole conversation to the remote assistant. It
// answers 200 in every case; failures are reported as an apology message.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn().Err(err).Msg("chat: invalid JSON body")
		s.writeJSON(w, http.StatusOK, types.ChatResponse{Message: assistant.ApologyMessage})
		return
	}

	turns := make([]chat.Turn, 0, len(req.Messages))
	for _, m := range req.Messages {
		turns = append(turns, chat.Turn{Role: chat.Role(m.Role), Content: m.Content})
	}
	reply, err := s.assistant.Complete(r.Context(), turns)
	if err != nil {
		s.log.Error().Err(err).Int("turns", len(turns)).Msg("chat: assistant error")
		reply = assistant.ApologyMessage
	}
	s.writeJSON(w, http.StatusOK, types.ChatResponse{Message: reply})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sid := getOrCreateSessionID(w, r)
	sess, created := s.sessions.GetOrCreate(sid)
	if created {
		s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	}
	s.writeJSON(w, http.StatusOK, snapshot(sid, sess))
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req types.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := getOrCreateSessionID(w, r)
	sess, created := s.sessions.GetOrCreate(sid)
	if created {
		s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	}

	resp := types.SendResponse{}
	if msg, ok := sess.Send(r.Context(), req.Message); ok {
		resp.Accepted = true
		resp.Reply = &types.SessionMessage{Role: string(msg.Role), Content: msg.Content, Timestamp: msg.Timestamp}
	}
	resp.SessionSnapshot = snapshot(sid, sess)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetPanel(w http.ResponseWriter, r *http.Request) {
	var req types.PanelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := getOrCreateSessionID(w, r)
	sess, _ := s.sessions.GetOrCreate(sid)
	if req.Open {
		sess.Open()
	} else {
		sess.Close()
	}
	s.writeJSON(w, http.StatusOK, snapshot(sid, sess))
}

// handleResetSession forgets the conversation; the next request starts over
// with only the welcome message.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if sid := getSessionID(r); sid != "" {
		s.sessions.Delete(sid)
		s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	}
	ClearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func snapshot(sid string, sess *chat.Session) types.SessionSnapshot {
	history := sess.History()
	msgs := make([]types.SessionMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, types.SessionMessage{Role: string(m.Role), Content: m.Content, Timestamp: m.Timestamp})
	}
	return types.SessionSnapshot{
		SessionID:   sid,
		Open:        sess.IsOpen(),
		Pending:     sess.Pending(),
		Messages:    msgs,
		Suggestions: sess.Suggestions(),
	}
}
