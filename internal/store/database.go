package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"rbb-sathi-backend/internal/backoffice"
	"rbb-sathi-backend/internal/db"
)

// DatabaseStore keeps the back office documents and audit trail in PostgreSQL
type DatabaseStore struct {
	db *db.DB
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

var _ backoffice.Repository = (*DatabaseStore)(nil)

func (ds *DatabaseStore) Documents(ctx context.Context) ([]backoffice.Document, error) {
	rows, err := ds.db.QueryContext(ctx, `
		SELECT id, name, type, submitted_by, department, date, amount, status
		FROM documents
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []backoffice.Document
	for rows.Next() {
		var d backoffice.Document
		var status string
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.SubmittedBy, &d.Department, &d.Date, &d.Amount, &status); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.Status = backoffice.Status(status)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (ds *DatabaseStore) Audit(ctx context.Context) ([]backoffice.AuditEntry, error) {
	rows, err := ds.db.QueryContext(ctx, `
		SELECT id, action, document, acted_by, timestamp, department
		FROM audit_entries
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []backoffice.AuditEntry
	for rows.Next() {
		var e backoffice.AuditEntry
		var action string
		if err := rows.Scan(&e.ID, &action, &e.Document, &e.ActedBy, &e.Timestamp, &e.Department); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Action = backoffice.Status(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (ds *DatabaseStore) Vendors(ctx context.Context) ([]backoffice.Vendor, error) {
	rows, err := ds.db.QueryContext(ctx, `
		SELECT id, vendor, service, amount, stage, stages
		FROM vendors
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []backoffice.Vendor
	for rows.Next() {
		var v backoffice.Vendor
		if err := rows.Scan(&v.ID, &v.Vendor, &v.Service, &v.Amount, &v.Stage, pq.Array(&v.Stages)); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

// Decide locks the document row so two operators cannot both decide it.
func (ds *DatabaseStore) Decide(ctx context.Context, id string, status backoffice.Status, entry func(doc backoffice.Document, trailLen int) backoffice.AuditEntry) (backoffice.Document, backoffice.AuditEntry, error) {
	tx, err := ds.db.BeginTx(ctx, nil)
	if err != nil {
		return backoffice.Document{}, backoffice.AuditEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var d backoffice.Document
	var current string
	err = tx.QueryRowContext(ctx, `
		SELECT id, name, type, submitted_by, department, date, amount, status
		FROM documents
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&d.ID, &d.Name, &d.Type, &d.SubmittedBy, &d.Department, &d.Date, &d.Amount, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return backoffice.Document{}, backoffice.AuditEntry{}, backoffice.ErrNotFound
	}
	if err != nil {
		return backoffice.Document{}, backoffice.AuditEntry{}, fmt.Errorf("failed to load document: %w", err)
	}
	if backoffice.Status(current) != backoffice.StatusPending {
		return backoffice.Document{}, backoffice.AuditEntry{}, backoffice.ErrNotPending
	}

	if _, err := tx.ExecContext(ctx, `UPDATE documents SET status = $2 WHERE id = $1`, id, string(status)); err != nil {
		return backoffice.Document{}, backoffice.AuditEntry{}, fmt.Errorf("failed to update document: %w", err)
	}
	d.Status = status

	// Serialise trail numbering across concurrent decisions.
	if _, err := tx.ExecContext(ctx, `LOCK TABLE audit_entries IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return backoffice.Document{}, backoffice.AuditEntry{}, fmt.Errorf("failed to lock audit trail: %w", err)
	}
	var trailLen int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&trailLen); err != nil {
		return backoffice.Document{}, backoffice.AuditEntry{}, fmt.Errorf("failed to count audit entries: %w", err)
	}
	e := entry(d, trailLen)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO audit_entries (id, action, document, acted_by, timestamp, department)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, string(e.Action), e.Document, e.ActedBy, e.Timestamp, e.Department); err != nil {
		return backoffice.Document{}, backoffice.AuditEntry{}, fmt.Errorf("failed to record audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return backoffice.Document{}, backoffice.AuditEntry{}, fmt.Errorf("failed to commit decision: %w", err)
	}
	return d, e, nil
}
