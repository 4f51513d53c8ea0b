package backoffice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Decision is the outcome of approving or rejecting a document.
type Decision struct {
	Document Document
	Audit    AuditEntry
	Notice   string
}

type Stats struct {
	Pending       int
	ApprovedToday int
	ActiveVendors int
	AuditEntries  int
}

type Service struct {
	repo Repository
	now  func() time.Time
	log  zerolog.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Queue splits the documents into those awaiting a decision and the rest.
func (s *Service) Queue(ctx context.Context) (pending, processed []Document, err error) {
	docs, err := s.repo.Documents(ctx)
	if err != nil {
		return nil, nil, err
	}
	pending, processed = []Document{}, []Document{}
	for _, d := range docs {
		if d.Status == StatusPending {
			pending = append(pending, d)
		} else {
			processed = append(processed, d)
		}
	}
	return pending, processed, nil
}

func (s *Service) Audit(ctx context.Context) ([]AuditEntry, error) {
	return s.repo.Audit(ctx)
}

func (s *Service) Vendors(ctx context.Context) ([]Vendor, error) {
	return s.repo.Vendors(ctx)
}

// Decide approves or rejects a pending document and records it in the audit trail.
func (s *Service) Decide(ctx context.Context, id string, action Status) (Decision, error) {
	if action != StatusApproved && action != StatusRejected {
		return Decision{}, ErrInvalidAction
	}
	at := s.now().Format(TimestampLayout)
	doc, entry, err := s.repo.Decide(ctx, id, action, func(doc Document, trailLen int) AuditEntry {
		return AuditEntry{
			ID:         AuditID(trailLen),
			Action:     action,
			Document:   doc.Name,
			ActedBy:    ActedBy,
			Timestamp:  at,
			Department: doc.Department,
		}
	})
	if err != nil {
		return Decision{}, err
	}
	s.log.Info().
		Str("document_id", doc.ID).
		Str("action", string(action)).
		Str("audit_id", entry.ID).
		Msg("document decided")
	return Decision{Document: doc, Audit: entry, Notice: Notice(doc.Name, action)}, nil
}

// Notice is the confirmation shown to the operator after a decision.
func Notice(name string, action Status) string {
	r := []rune(name)
	if len(r) > 30 {
		r = r[:30]
	}
	return fmt.Sprintf("Document \"%s...\" has been %s.", string(r), action)
}

// Stats summarises the dashboard counters. Approvals count as today's when
// their timestamp falls on the service clock's current date.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	pending, _, err := s.Queue(ctx)
	if err != nil {
		return Stats{}, err
	}
	audit, err := s.repo.Audit(ctx)
	if err != nil {
		return Stats{}, err
	}
	vendors, err := s.repo.Vendors(ctx)
	if err != nil {
		return Stats{}, err
	}
	today := s.now().Format("2006-01-02")
	st := Stats{Pending: len(pending), ActiveVendors: len(vendors), AuditEntries: len(audit)}
	for _, e := range audit {
		if e.Action == StatusApproved && strings.HasPrefix(e.Timestamp, today) {
			st.ApprovedToday++
		}
	}
	return st, nil
}
