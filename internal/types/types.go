package types

import "time"

// ChatMessage is one turn on the wire: no timestamp.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse is always returned with status 200.
type ChatResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SessionMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionSnapshot is the state a chat panel needs to draw itself.
type SessionSnapshot struct {
	SessionID   string           `json:"sessionId"`
	Open        bool             `json:"open"`
	Pending     bool             `json:"pending"`
	Messages    []SessionMessage `json:"messages"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

type SendRequest struct {
	Message string `json:"message"`
}

type SendResponse struct {
	SessionSnapshot
	Accepted bool            `json:"accepted"`
	Reply    *SessionMessage `json:"reply,omitempty"`
}

type PanelRequest struct {
	Open bool `json:"open"`
}

// Back office

type Document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SubmittedBy string `json:"submittedBy"`
	Department  string `json:"department"`
	Date        string `json:"date"`
	Amount      string `json:"amount,omitempty"`
	Status      string `json:"status"`
}

type AuditEntry struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	Document   string `json:"document"`
	ActedBy    string `json:"actedBy"`
	Timestamp  string `json:"timestamp"`
	Department string `json:"department"`
}

type Vendor struct {
	ID      string   `json:"id"`
	Vendor  string   `json:"vendor"`
	Service string   `json:"service"`
	Amount  string   `json:"amount"`
	Stage   int      `json:"stage"`
	Stages  []string `json:"stages"`
}

type VendorsResponse struct {
	Vendors []Vendor `json:"vendors"`
}

type DocumentsResponse struct {
	Pending   []Document `json:"pending"`
	Processed []Document `json:"processed"`
}

type DecisionResponse struct {
	Document Document   `json:"document"`
	Audit    AuditEntry `json:"audit"`
	Notice   string     `json:"notice"`
}

type AuditResponse struct {
	Entries []AuditEntry `json:"entries"`
}

type StatsResponse struct {
	Pending       int `json:"pending"`
	ApprovedToday int `json:"approvedToday"`
	ActiveVendors int `json:"activeVendors"`
	AuditEntries  int `json:"auditEntries"`
}
