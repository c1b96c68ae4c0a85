/*
Package portal provides the state container for the Arc demo portal.

PURPOSE:
  This package owns every piece of mutable portal state: project status
  overrides, project field edits, invoices, invoice status overrides,
  notes, and the activity feed. All other layers (HTTP handlers, CLI)
  read and write through a Session; nothing else holds state.

KEY CONCEPTS IN THIS FILE (types.go):
  - ProjectStatus / InvoiceStatus: small fully-connected status enums
  - Project: a read-only seed record supplying read-time fallbacks
  - Invoice / LineItem: invoice records with derived (never stored) totals
  - Note / ActivityEvent: append-only, newest-first records
  - Effective: the override-or-fallback resolution helper

DESIGN PRINCIPLES:
  1. Overrides, not truth: the container stores deltas on top of seed
     data; the fallback value is supplied by the caller at read time.
  2. Derived money: invoice totals are always computed from line items
     using decimal.Decimal, never persisted.
  3. Tolerant reads: "not found" is a normal result, not an error.

SEE ALSO:
  - session.go: the Session container and its slice operations
  - snapshot.go: memoized snapshots and change notification
  - seed package: the static seed datasets
*/
package portal

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS ENUMS
// =============================================================================

// ProjectStatus is one of the four project states. Any state may move to
// any other; there is no terminal state and no transition validation
// beyond enum membership.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectReview    ProjectStatus = "review"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCompleted ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectReview, ProjectPaused, ProjectCompleted:
		return true
	}
	return false
}

// InvoiceStatus is one of the four invoice states, fully connected like
// ProjectStatus.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

// DateLayout is the calendar-date format used everywhere in portal state.
const DateLayout = "2006-01-02"

// =============================================================================
// SEED RECORDS
// =============================================================================

// Project is a read-only seed record. The container never stores
// projects; it stores status overrides and field edits keyed by project
// id, and callers pass the seed values as fallbacks at read time.
type Project struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Client    string        `json:"client"`
	Status    ProjectStatus `json:"status"`
	DueDate   string        `json:"dueDate"`
	UpdatedAt string        `json:"updatedAt"`
}

// ProjectEdits is a sparse partial edit of a project's mutable fields.
// Only fields the user actually touched are non-nil; presence of the
// project id in the edits map is the signal for "has been edited".
type ProjectEdits struct {
	Name    *string `json:"name,omitempty"`
	Client  *string `json:"client,omitempty"`
	DueDate *string `json:"dueDate,omitempty"`
}

func (e ProjectEdits) IsZero() bool {
	return e.Name == nil && e.Client == nil && e.DueDate == nil
}

// Apply resolves a seed project against its edits, field by field.
func (e ProjectEdits) Apply(p Project) Project {
	if e.Name != nil {
		p.Name = *e.Name
	}
	if e.Client != nil {
		p.Client = *e.Client
	}
	if e.DueDate != nil {
		p.DueDate = *e.DueDate
	}
	return p
}

// =============================================================================
// INVOICES
// =============================================================================

// LineItem is a single invoice line. Rate is a money amount in the
// invoice's currency; the line total is always derived.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// Total returns quantity * rate.
func (li LineItem) Total() decimal.Decimal {
	return li.Rate.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Invoice is an invoice record. It carries no status field: the invoice
// status override map in the Session is the sole authority for status,
// with the seed dataset supplying the baseline for seed invoices.
type Invoice struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"projectId"`
	Client    string     `json:"client"`
	IssueDate string     `json:"issueDate"`
	DueDate   string     `json:"dueDate"`
	Currency  string     `json:"currency"`
	Items     []LineItem `json:"items"`
}

// Total returns the sum of all line totals. Never stored.
func (inv Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range inv.Items {
		total = total.Add(li.Total())
	}
	return total
}

// InvoicePatch is a sparse update applied by Session.UpdateInvoice.
// Nil fields are left untouched; a non-nil Items replaces the whole
// line-item list.
type InvoicePatch struct {
	Client    *string
	IssueDate *string
	DueDate   *string
	Items     []LineItem
}

// =============================================================================
// NOTES AND ACTIVITY
// =============================================================================

// Note is an append-only project note. Newest notes sit at index 0.
type Note struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Date      string `json:"date"`
}

// ActivityEvent is an append-only feed entry. Newest events sit at
// index 0; the list is unbounded, consumers cap display length.
type ActivityEvent struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	Meta      string `json:"meta,omitempty"`
	Date      string `json:"date"`
}

// =============================================================================
// EFFECTIVE VALUES
// =============================================================================

// Effective resolves override-or-fallback for one id. The container
// stores only deltas, so the fallback (usually a seed value) comes from
// the caller.
func Effective[V any](overrides map[string]V, id string, fallback V) V {
	if v, ok := overrides[id]; ok {
		return v
	}
	return fallback
}

// DisplayInvoiceStatus combines an invoice's effective status with a
// due-date check: an unpaid invoice past its due date displays as
// overdue even if nobody has explicitly set it. The stored status is
// never rewritten by this rule.
func DisplayInvoiceStatus(status InvoiceStatus, dueDate string, today time.Time) InvoiceStatus {
	if status == InvoicePaid || status == InvoiceOverdue {
		return status
	}
	due, err := time.Parse(DateLayout, dueDate)
	if err != nil {
		return status
	}
	if due.Before(today.Truncate(24 * time.Hour)) {
		return InvoiceOverdue
	}
	return status
}
