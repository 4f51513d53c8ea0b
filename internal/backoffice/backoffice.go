// Package backoffice implements the staff document approval queue and its
// audit trail.
package backoffice

import (
	"context"
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ActedBy is recorded on every audit entry; the back office has a single operator.
const ActedBy = "Admin User"

// TimestampLayout is the audit trail timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	ErrNotFound      = errors.New("document not found")
	ErrNotPending    = errors.New("document already decided")
	ErrInvalidAction = errors.New("action must be approved or rejected")
)

type Document struct {
	ID          string
	Name        string
	Type        string
	SubmittedBy string
	Department  string
	Date        string
	Amount      string
	Status      Status
}

type AuditEntry struct {
	ID         string
	Action     Status
	Document   string
	ActedBy    string
	Timestamp  string
	Department string
}

// Vendor is a procurement in flight; Stage indexes Stages.
type Vendor struct {
	ID      string
	Vendor  string
	Service string
	Amount  string
	Stage   int
	Stages  []string
}

// Repository persists documents and the audit trail. Documents come back in
// queue order, audit entries newest first.
type Repository interface {
	Documents(ctx context.Context) ([]Document, error)
	Audit(ctx context.Context) ([]AuditEntry, error)
	Vendors(ctx context.Context) ([]Vendor, error)
	// Decide moves a pending document to status and prepends the audit
	// entry built by entry, which receives the decided document and the
	// current trail length.
	// It returns ErrNotFound or ErrNotPending without changing anything.
	Decide(ctx context.Context, id string, status Status, entry func(doc Document, trailLen int) AuditEntry) (Document, AuditEntry, error)
}

// AuditID numbers a new entry from the trail length it is added to.
func AuditID(trailLen int) string {
	return fmt.Sprintf("AUD-%03d", trailLen+5)
}
