package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rbb-sathi-backend/internal/backoffice"
	"rbb-sathi-backend/internal/types"
)

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	pending, processed, err := s.backoffice.Queue(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("backoffice: list documents")
		s.writeError(w, http.StatusInternalServerError, "failed to load documents")
		return
	}
	s.writeJSON(w, http.StatusOK, types.DocumentsResponse{
		Pending:   toDocuments(pending),
		Processed: toDocuments(processed),
	})
}

func (s *Server) handleDecide(action backoffice.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		d, err := s.backoffice.Decide(r.Context(), id, action)
		switch {
		case errors.Is(err, backoffice.ErrNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		case errors.Is(err, backoffice.ErrNotPending):
			s.writeError(w, http.StatusConflict, err.Error())
			return
		case err != nil:
			s.log.Error().Err(err).Str("document_id", id).Msg("backoffice: decide")
			s.writeError(w, http.StatusInternalServerError, "failed to record decision")
			return
		}
		s.metrics.DecisionsTotal.WithLabelValues(string(action)).Inc()
		s.writeJSON(w, http.StatusOK, types.DecisionResponse{
			Document: toDocument(d.Document),
			Audit:    toAuditEntry(d.Audit),
			Notice:   d.Notice,
		})
	}
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := s.backoffice.Audit(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("backoffice: audit")
		s.writeError(w, http.StatusInternalServerError, "failed to load audit trail")
		return
	}
	out := make([]types.AuditEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditEntry(e))
	}
	s.writeJSON(w, http.StatusOK, types.AuditResponse{Entries: out})
}

func (s *Server) handleVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := s.backoffice.Vendors(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("backoffice: vendors")
		s.writeError(w, http.StatusInternalServerError, "failed to load vendors")
		return
	}
	out := make([]types.Vendor, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, types.Vendor{ID: v.ID, Vendor: v.Vendor, Service: v.Service, Amount: v.Amount, Stage: v.Stage, Stages: v.Stages})
	}
	s.writeJSON(w, http.StatusOK, types.VendorsResponse{Vendors: out})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.backoffice.Stats(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("backoffice: stats")
		s.writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	s.writeJSON(w, http.StatusOK, types.StatsResponse{
		Pending:       st.Pending,
		ApprovedToday: st.ApprovedToday,
		ActiveVendors: st.ActiveVendors,
		AuditEntries:  st.AuditEntries,
	})
}

func toDocuments(docs []backoffice.Document) []types.Document {
	out := make([]types.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocument(d))
	}
	return out
}

func toDocument(d backoffice.Document) types.Document {
	return types.Document{
		ID:          d.ID,
		Name:        d.Name,
		Type:        d.Type,
		SubmittedBy: d.SubmittedBy,
		Department:  d.Department,
		Date:        d.Date,
		Amount:      d.Amount,
		Status:      string(d.Status),
	}
}

func toAuditEntry(e backoffice.AuditEntry) types.AuditEntry {
	return types.AuditEntry{
		ID:         e.ID,
		Action:     string(e.Action),
		Document:   e.Document,
		ActedBy:    e.ActedBy,
		Timestamp:  e.Timestamp,
		Department: e.Department,
	}
}
