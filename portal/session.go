/*
session.go - The portal state container

PURPOSE:
  Session owns the six independent state slices for one portal session:

    project status overrides   map id -> status
    project field edits        map id -> sparse edit
    invoices                   list, newest first
    invoice status overrides   map id -> status
    notes                      list, newest first
    activity                   list, newest first

  On construction each slice hydrates from the persistence gateway, or
  falls back to its default (empty map, empty list, or a copy of the
  seed invoice list). A corrupt or missing blob never fails
  construction.

WRITE PROTOCOL:
  Every mutation is copy-on-write: it builds a new slice value, swaps it
  in under the session lock, persists exactly that slice, and bumps the
  snapshot generation. A slice value handed out by a getter or snapshot
  is never mutated afterwards, so readers can hold references across
  writes.

CONCURRENCY:
  The original portal had a single UI-thread writer. The HTTP surface
  here is concurrent, so the Session serializes writes and guards slice
  pointers with a sync.RWMutex. A read issued after a committed write
  observes it.

SEE ALSO:
  - types.go: slice element types and the Effective helper
  - snapshot.go: memoized snapshots and subscriptions
  - store package: the persistence gateway
*/
package portal

import (
	"context"
	"sync"

	"github.com/arc/portal-engine/store"
)

// =============================================================================
// SLICE KEYS
// =============================================================================

// Persisted slice keys. Stable across sessions: renaming one orphans
// the previously saved blob.
const (
	KeyProjectStatus = "arc.projectStatus.v1"
	KeyProjectEdits  = "arc.projectEdits.v1"
	KeyActivity      = "arc.projectActivity.v1"
	KeyNotes         = "arc.projectNotes.v1"
	KeyInvoiceStatus = "arc.invoiceStatus.v1"
	KeyInvoices      = "arc.invoices.v1"
)

// SliceKeys lists every persisted key, in no particular order.
var SliceKeys = []string{
	KeyProjectStatus,
	KeyProjectEdits,
	KeyActivity,
	KeyNotes,
	KeyInvoiceStatus,
	KeyInvoices,
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the in-memory source of truth for one portal session.
// Construct with NewSession; the zero value is unusable.
type Session struct {
	gw           store.Gateway
	seedInvoices []Invoice

	mu              sync.RWMutex
	statuses        map[string]ProjectStatus
	edits           map[string]ProjectEdits
	invoices        []Invoice
	invoiceStatuses map[string]InvoiceStatus
	notes           []Note
	activity        []ActivityEvent

	gen  uint64
	snap *Snapshot

	subs    map[int]chan struct{}
	nextSub int
}

// NewSession hydrates a session from the gateway. Slices with no (or
// unreadable) stored blob get their defaults; the invoice slice
// defaults to a copy of seedInvoices. A nil gateway is a wiring bug and
// panics immediately rather than producing a session that silently
// loses state.
func NewSession(ctx context.Context, gw store.Gateway, seedInvoices []Invoice) *Session {
	if gw == nil {
		panic("portal: NewSession requires a persistence gateway")
	}

	s := &Session{
		gw:           gw,
		seedInvoices: copyInvoices(seedInvoices),
		subs:         make(map[int]chan struct{}),
	}

	s.statuses = loadMap[ProjectStatus](ctx, gw, KeyProjectStatus)
	s.edits = loadMap[ProjectEdits](ctx, gw, KeyProjectEdits)
	s.invoiceStatuses = loadMap[InvoiceStatus](ctx, gw, KeyInvoiceStatus)
	s.notes = loadList[Note](ctx, gw, KeyNotes)
	s.activity = loadList[ActivityEvent](ctx, gw, KeyActivity)

	if invoices, ok := store.LoadJSON[[]Invoice](ctx, gw, KeyInvoices); ok {
		s.invoices = invoices
	} else {
		s.invoices = copyInvoices(s.seedInvoices)
	}
	return s
}

func loadMap[V any](ctx context.Context, gw store.Gateway, key string) map[string]V {
	if m, ok := store.LoadJSON[map[string]V](ctx, gw, key); ok && m != nil {
		return m
	}
	return make(map[string]V)
}

func loadList[V any](ctx context.Context, gw store.Gateway, key string) []V {
	if l, ok := store.LoadJSON[[]V](ctx, gw, key); ok {
		return l
	}
	return nil
}

// =============================================================================
// PROJECT STATUS
// =============================================================================

// ProjectStatus returns the override for id, else fallback.
func (s *Session) ProjectStatus(id string, fallback ProjectStatus) ProjectStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Effective(s.statuses, id, fallback)
}

// SetProjectStatus records a status override for id. Overrides are
// never deleted, only overwritten.
func (s *Session) SetProjectStatus(ctx context.Context, id string, status ProjectStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := copyMap(s.statuses)
	next[id] = status
	s.statuses = next
	store.SaveJSON(ctx, s.gw, KeyProjectStatus, next)
	s.commitLocked()
}

// =============================================================================
// PROJECT EDITS
// =============================================================================

// ProjectEdits returns the sparse edits for id. ok reports whether the
// project has been touched at all; presence-of-key is the signal, an
// edit is never stored as an empty object.
func (s *Session) ProjectEdits(id string) (ProjectEdits, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edits[id]
	return e, ok
}

// SetProjectEdits stores the edit set for id, replacing any previous
// edits wholesale.
func (s *Session) SetProjectEdits(ctx context.Context, id string, e ProjectEdits) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := copyMap(s.edits)
	next[id] = e
	s.edits = next
	store.SaveJSON(ctx, s.gw, KeyProjectEdits, next)
	s.commitLocked()
}

// ClearProjectEdits removes the edits entry for id entirely. Clearing
// an untouched project is a no-op; calling twice equals calling once.
func (s *Session) ClearProjectEdits(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edits[id]; !ok {
		return
	}
	next := copyMap(s.edits)
	delete(next, id)
	s.edits = next
	store.SaveJSON(ctx, s.gw, KeyProjectEdits, next)
	s.commitLocked()
}

// =============================================================================
// INVOICES
// =============================================================================

// Invoices returns the full invoice list, newest first.
func (s *Session) Invoices() []Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invoices
}

// Invoice returns the invoice with the given id.
func (s *Session) Invoice(id string) (Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return Invoice{}, false
}

// InvoiceStatus returns the status override for id, else fallback. The
// override map is the sole mutable authority for invoice status; seed
// invoices get their baseline from the seed dataset via fallback.
func (s *Session) InvoiceStatus(id string, fallback InvoiceStatus) InvoiceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Effective(s.invoiceStatuses, id, fallback)
}

// SetInvoiceStatus records a status override for an invoice.
func (s *Session) SetInvoiceStatus(ctx context.Context, id string, status InvoiceStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setInvoiceStatusLocked(ctx, id, status)
	s.commitLocked()
}

func (s *Session) setInvoiceStatusLocked(ctx context.Context, id string, status InvoiceStatus) {
	next := copyMap(s.invoiceStatuses)
	next[id] = status
	s.invoiceStatuses = next
	store.SaveJSON(ctx, s.gw, KeyInvoiceStatus, next)
}

// CreateInvoice prepends a new invoice and records its initial status
// in the override map in the same commit.
func (s *Session) CreateInvoice(ctx context.Context, inv Invoice, status InvoiceStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Invoice, 0, len(s.invoices)+1)
	next = append(next, inv)
	next = append(next, s.invoices...)
	s.invoices = next
	store.SaveJSON(ctx, s.gw, KeyInvoices, next)

	s.setInvoiceStatusLocked(ctx, inv.ID, status)
	s.commitLocked()
}

// UpdateInvoice applies a sparse patch to the invoice with the given
// id, replace-by-id. An unknown id is a silent no-op: callers are
// expected to pass ids obtained from a prior read.
func (s *Session) UpdateInvoice(ctx context.Context, id string, patch InvoicePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, inv := range s.invoices {
		if inv.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	inv := s.invoices[idx]
	inv.Items = copyItems(inv.Items)
	if patch.Client != nil {
		inv.Client = *patch.Client
	}
	if patch.IssueDate != nil {
		inv.IssueDate = *patch.IssueDate
	}
	if patch.DueDate != nil {
		inv.DueDate = *patch.DueDate
	}
	if patch.Items != nil {
		inv.Items = copyItems(patch.Items)
	}

	next := make([]Invoice, len(s.invoices))
	copy(next, s.invoices)
	next[idx] = inv
	s.invoices = next
	store.SaveJSON(ctx, s.gw, KeyInvoices, next)
	s.commitLocked()
}

// =============================================================================
// NOTES AND ACTIVITY
// =============================================================================

// NotesFor returns the notes for one project, insertion order preserved
// (newest first).
func (s *Session) NotesFor(projectID string) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Note
	for _, n := range s.notes {
		if n.ProjectID == projectID {
			out = append(out, n)
		}
	}
	return out
}

// AddNote prepends a note. The id comes from the caller; the container
// only requires uniqueness within the collection.
func (s *Session) AddNote(ctx context.Context, n Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Note, 0, len(s.notes)+1)
	next = append(next, n)
	next = append(next, s.notes...)
	s.notes = next
	store.SaveJSON(ctx, s.gw, KeyNotes, next)
	s.commitLocked()
}

// Activity returns the full activity feed, newest first. Consumers cap
// display length at the read boundary.
func (s *Session) Activity() []ActivityEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activity
}

// ActivityFor returns the activity events for one project.
func (s *Session) ActivityFor(projectID string) []ActivityEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ActivityEvent
	for _, e := range s.activity {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out
}

// AddActivity prepends an activity event.
func (s *Session) AddActivity(ctx context.Context, e ActivityEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]ActivityEvent, 0, len(s.activity)+1)
	next = append(next, e)
	next = append(next, s.activity...)
	s.activity = next
	store.SaveJSON(ctx, s.gw, KeyActivity, next)
	s.commitLocked()
}

// ClearActivity empties the activity feed and nothing else.
func (s *Session) ClearActivity(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activity = nil
	store.SaveJSON(ctx, s.gw, KeyActivity, []ActivityEvent{})
	s.commitLocked()
}

// =============================================================================
// RESET
// =============================================================================

// ResetDemoData returns every slice to its default in one swap and
// deletes the persisted keys, so the next hydration re-seeds. The swap
// is atomic for in-memory readers; the key deletions are best-effort,
// which is an accepted limitation of the cache.
func (s *Session) ResetDemoData(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses = make(map[string]ProjectStatus)
	s.edits = make(map[string]ProjectEdits)
	s.invoiceStatuses = make(map[string]InvoiceStatus)
	s.notes = nil
	s.activity = nil
	s.invoices = copyInvoices(s.seedInvoices)

	for _, key := range SliceKeys {
		store.Remove(ctx, s.gw, key)
	}
	s.commitLocked()
}

// =============================================================================
// COPY HELPERS
// =============================================================================

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func copyInvoices(invoices []Invoice) []Invoice {
	out := make([]Invoice, len(invoices))
	for i, inv := range invoices {
		inv.Items = copyItems(inv.Items)
		out[i] = inv
	}
	return out
}
