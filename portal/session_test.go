package portal_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc/portal-engine/portal"
	"github.com/arc/portal-engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func testInvoices() []portal.Invoice {
	return []portal.Invoice{
		{
			ID:        "inv_1",
			ProjectID: "p1",
			Client:    "Keystone",
			IssueDate: "2026-02-01",
			DueDate:   "2026-02-15",
			Currency:  "USD",
			Items: []portal.LineItem{
				{ID: "li1", Description: "Discovery", Quantity: 1, Rate: decimal.NewFromInt(500)},
				{ID: "li2", Description: "Build", Quantity: 8, Rate: decimal.NewFromInt(120)},
			},
		},
		{
			ID:        "inv_2",
			ProjectID: "p2",
			Client:    "Arcadia",
			IssueDate: "2026-01-12",
			DueDate:   "2026-01-26",
			Currency:  "USD",
			Items: []portal.LineItem{
				{ID: "li1", Description: "Site build", Quantity: 1, Rate: decimal.NewFromInt(1800)},
			},
		},
	}
}

func newTestSession(t *testing.T) (*portal.Session, *store.Memory) {
	t.Helper()
	gw := store.NewMemory()
	return portal.NewSession(context.Background(), gw, testInvoices()), gw
}

func note(id, projectID, title string) portal.Note {
	return portal.Note{ID: id, ProjectID: projectID, Title: title, Body: "body", Date: "2026-02-12"}
}

func event(id, projectID, title string) portal.ActivityEvent {
	return portal.ActivityEvent{ID: id, ProjectID: projectID, Title: title, Date: "2026-02-12"}
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNewSession_NilGatewayPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil gateway")
		}
	}()
	portal.NewSession(context.Background(), nil, nil)
}

func TestNewSession_Defaults(t *testing.T) {
	s, _ := newTestSession(t)

	assert.Equal(t, portal.ProjectActive, s.ProjectStatus("p1", portal.ProjectActive))
	_, touched := s.ProjectEdits("p1")
	assert.False(t, touched)
	assert.Empty(t, s.Activity())
	assert.Empty(t, s.NotesFor("p1"))

	invoices := s.Invoices()
	require.Len(t, invoices, 2)
	assert.Equal(t, "inv_1", invoices[0].ID)
}

func TestNewSession_SeedCopyIsolation(t *testing.T) {
	// GIVEN: a seed list the caller keeps a reference to
	seed := testInvoices()
	gw := store.NewMemory()
	s := portal.NewSession(context.Background(), gw, seed)

	// WHEN: the caller mutates its own copy
	seed[0].Client = "Mutated"
	seed[0].Items[0].Quantity = 99

	// THEN: the session is unaffected
	inv, ok := s.Invoice("inv_1")
	require.True(t, ok)
	assert.Equal(t, "Keystone", inv.Client)
	assert.Equal(t, 1, inv.Items[0].Quantity)
}

// =============================================================================
// PROJECT STATUS OVERRIDES
// =============================================================================

func TestProjectStatus_OverrideAndFallback(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	assert.Equal(t, portal.ProjectReview, s.ProjectStatus("p2", portal.ProjectReview))

	s.SetProjectStatus(ctx, "p2", portal.ProjectCompleted)
	assert.Equal(t, portal.ProjectCompleted, s.ProjectStatus("p2", portal.ProjectReview))

	// Overwritten, never deleted
	s.SetProjectStatus(ctx, "p2", portal.ProjectPaused)
	assert.Equal(t, portal.ProjectPaused, s.ProjectStatus("p2", portal.ProjectReview))

	// Other ids untouched
	assert.Equal(t, portal.ProjectActive, s.ProjectStatus("p1", portal.ProjectActive))
}

// =============================================================================
// PROJECT EDITS
// =============================================================================

func TestProjectEdits_SetAndClear(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	s.SetProjectEdits(ctx, "p1", portal.ProjectEdits{Name: strPtr("Renamed")})

	edits, touched := s.ProjectEdits("p1")
	require.True(t, touched)
	require.NotNil(t, edits.Name)
	assert.Equal(t, "Renamed", *edits.Name)
	assert.Nil(t, edits.Client)

	s.ClearProjectEdits(ctx, "p1")
	_, touched = s.ProjectEdits("p1")
	assert.False(t, touched, "clearing must remove the key entirely")
}

func TestClearProjectEdits_Idempotent(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	s.SetProjectEdits(ctx, "p1", portal.ProjectEdits{Client: strPtr("Acme")})
	s.ClearProjectEdits(ctx, "p1")
	gen := s.Snapshot().Generation

	// Second clear is a no-op: no new commit, same observable state
	s.ClearProjectEdits(ctx, "p1")
	_, touched := s.ProjectEdits("p1")
	assert.False(t, touched)
	assert.Equal(t, gen, s.Snapshot().Generation)
}

// =============================================================================
// NOTES AND ACTIVITY
// =============================================================================

func TestAddNote_NewestFirst(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	s.AddNote(ctx, note("n1", "p1", "first"))
	s.AddNote(ctx, note("n2", "p1", "second"))
	s.AddNote(ctx, note("n3", "p2", "other project"))

	notes := s.NotesFor("p1")
	require.Len(t, notes, 2)
	assert.Equal(t, "n2", notes[0].ID)
	assert.Equal(t, "n1", notes[1].ID)

	assert.Len(t, s.NotesFor("p2"), 1)
	assert.Empty(t, s.NotesFor("p4"))
}

func TestAddActivity_NewestFirstAndClear(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	for _, id := range []string{"e1", "e2", "e3"} {
		s.AddActivity(ctx, event(id, "p1", "event "+id))
	}

	all := s.Activity()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"e3", "e2", "e1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	s.AddActivity(ctx, event("e4", "p2", "elsewhere"))
	assert.Len(t, s.ActivityFor("p1"), 3)
	assert.Len(t, s.ActivityFor("p2"), 1)

	s.ClearActivity(ctx)
	assert.Empty(t, s.Activity())
}

// =============================================================================
// INVOICES
// =============================================================================

func TestCreateInvoice_PrependsAndSeedsStatus(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	inv := portal.Invoice{
		ID:        "inv_new",
		ProjectID: "p1",
		Client:    "Northwind",
		IssueDate: "2026-02-14",
		DueDate:   "2026-02-28",
		Currency:  "USD",
		Items:     []portal.LineItem{{ID: "li1", Description: "Sprint", Quantity: 2, Rate: decimal.NewFromInt(300)}},
	}
	s.CreateInvoice(ctx, inv, portal.InvoiceDraft)

	invoices := s.Invoices()
	require.Len(t, invoices, 3)
	assert.Equal(t, "inv_new", invoices[0].ID, "new invoices are prepended")

	// Initial status lands in the override map, the sole authority
	assert.Equal(t, portal.InvoiceDraft, s.InvoiceStatus("inv_new", portal.InvoiceSent))
}

func TestSetInvoiceStatus_OverrideAndFallback(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	assert.Equal(t, portal.InvoiceSent, s.InvoiceStatus("inv_1", portal.InvoiceSent))

	s.SetInvoiceStatus(ctx, "inv_1", portal.InvoicePaid)
	assert.Equal(t, portal.InvoicePaid, s.InvoiceStatus("inv_1", portal.InvoiceSent))
}

func TestUpdateInvoice_Patch(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	s.UpdateInvoice(ctx, "inv_1", portal.InvoicePatch{DueDate: strPtr("2026-03-15")})

	inv, ok := s.Invoice("inv_1")
	require.True(t, ok)
	assert.Equal(t, "2026-03-15", inv.DueDate)
	assert.Equal(t, "2026-02-01", inv.IssueDate, "unpatched fields unchanged")
	assert.Len(t, inv.Items, 2)

	// Replacing items changes the derived total on next read
	s.UpdateInvoice(ctx, "inv_1", portal.InvoicePatch{
		Items: []portal.LineItem{{ID: "li1", Description: "Flat fee", Quantity: 1, Rate: decimal.NewFromInt(2000)}},
	})
	inv, _ = s.Invoice("inv_1")
	assert.True(t, inv.Total().Equal(decimal.NewFromInt(2000)))
}

func TestUpdateInvoice_UnknownIDIsNoOp(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	before := s.Invoices()
	s.UpdateInvoice(ctx, "does-not-exist", portal.InvoicePatch{DueDate: strPtr("2099-01-01")})
	after := s.Invoices()

	require.Len(t, after, len(before))
	assert.Equal(t, before, after)
}

func TestUpdateInvoice_ReadersKeepOldValue(t *testing.T) {
	// GIVEN: a reader holding a reference from before the write
	s, _ := newTestSession(t)
	ctx := context.Background()

	held, ok := s.Invoice("inv_1")
	require.True(t, ok)

	// WHEN: the invoice is patched
	s.UpdateInvoice(ctx, "inv_1", portal.InvoicePatch{
		Items: []portal.LineItem{{ID: "lX", Description: "Replaced", Quantity: 1, Rate: decimal.NewFromInt(1)}},
	})

	// THEN: the held copy is unchanged (copy-on-write, no aliasing)
	assert.Equal(t, "Discovery", held.Items[0].Description)
	assert.True(t, held.Total().Equal(decimal.NewFromInt(1460)))
}

// =============================================================================
// RESET
// =============================================================================

func TestResetDemoData(t *testing.T) {
	s, gw := newTestSession(t)
	ctx := context.Background()

	s.SetProjectStatus(ctx, "p1", portal.ProjectCompleted)
	s.SetProjectEdits(ctx, "p1", portal.ProjectEdits{Name: strPtr("Edited")})
	s.SetInvoiceStatus(ctx, "inv_1", portal.InvoicePaid)
	s.AddNote(ctx, note("n1", "p1", "a note"))
	s.AddActivity(ctx, event("e1", "p1", "an event"))
	s.CreateInvoice(ctx, portal.Invoice{ID: "inv_extra", ProjectID: "p1"}, portal.InvoiceDraft)

	s.ResetDemoData(ctx)

	assert.Equal(t, portal.ProjectActive, s.ProjectStatus("p1", portal.ProjectActive))
	_, touched := s.ProjectEdits("p1")
	assert.False(t, touched)
	assert.Equal(t, portal.InvoiceSent, s.InvoiceStatus("inv_1", portal.InvoiceSent))
	assert.Empty(t, s.NotesFor("p1"))
	assert.Empty(t, s.Activity())

	invoices := s.Invoices()
	require.Len(t, invoices, 2)
	assert.Equal(t, "inv_1", invoices[0].ID)

	// Persisted keys are gone too: a fresh hydration re-seeds
	assert.Empty(t, gw.Keys())
	fresh := portal.NewSession(ctx, gw, testInvoices())
	assert.Len(t, fresh.Invoices(), 2)
	assert.Empty(t, fresh.Activity())
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestHydration_RoundTrip(t *testing.T) {
	// GIVEN: a session that has written every slice
	gw := store.NewMemory()
	ctx := context.Background()
	s := portal.NewSession(ctx, gw, testInvoices())

	s.SetProjectStatus(ctx, "p3", portal.ProjectActive)
	s.SetProjectEdits(ctx, "p1", portal.ProjectEdits{DueDate: strPtr("2026-05-01")})
	s.SetInvoiceStatus(ctx, "inv_2", portal.InvoiceOverdue)
	s.AddNote(ctx, note("n1", "p1", "kept"))
	s.AddActivity(ctx, event("e1", "p1", "kept"))
	s.CreateInvoice(ctx, portal.Invoice{
		ID: "inv_3", ProjectID: "p3", Client: "Keystone", Currency: "USD",
		Items: []portal.LineItem{{ID: "li1", Description: "Audit", Quantity: 3, Rate: decimal.NewFromFloat(99.5)}},
	}, portal.InvoiceDraft)

	// WHEN: a fresh session hydrates from the same gateway
	restored := portal.NewSession(ctx, gw, testInvoices())

	// THEN: every slice round-tripped structurally intact
	assert.Equal(t, portal.ProjectActive, restored.ProjectStatus("p3", portal.ProjectPaused))
	edits, touched := restored.ProjectEdits("p1")
	require.True(t, touched)
	assert.Equal(t, "2026-05-01", *edits.DueDate)
	assert.Equal(t, portal.InvoiceOverdue, restored.InvoiceStatus("inv_2", portal.InvoicePaid))
	require.Len(t, restored.NotesFor("p1"), 1)
	require.Len(t, restored.Activity(), 1)

	invoices := restored.Invoices()
	require.Len(t, invoices, 3)
	assert.Equal(t, "inv_3", invoices[0].ID)
	assert.True(t, invoices[0].Total().Equal(decimal.NewFromFloat(298.5)))
	assert.Equal(t, portal.InvoiceDraft, restored.InvoiceStatus("inv_3", portal.InvoiceSent))
}

func TestHydration_CorruptBlobFallsBackToDefault(t *testing.T) {
	gw := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, gw.Save(ctx, portal.KeyNotes, []byte("{not json")))
	require.NoError(t, gw.Save(ctx, portal.KeyProjectStatus, []byte(`{"p1":"paused"}`)))

	// Construction completes; the corrupt slice degrades, others load
	s := portal.NewSession(ctx, gw, testInvoices())
	assert.Empty(t, s.NotesFor("p1"))
	assert.Equal(t, portal.ProjectPaused, s.ProjectStatus("p1", portal.ProjectActive))
}

// =============================================================================
// SNAPSHOTS AND SUBSCRIPTIONS
// =============================================================================

func TestSnapshot_MemoizedUntilWrite(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	first := s.Snapshot()
	assert.Same(t, first, s.Snapshot(), "no write, same snapshot")

	s.SetProjectStatus(ctx, "p1", portal.ProjectReview)

	second := s.Snapshot()
	assert.NotSame(t, first, second)
	assert.Greater(t, second.Generation, first.Generation)
	assert.Equal(t, portal.ProjectReview, second.ProjectStatuses["p1"])

	// The old snapshot is frozen: the write did not leak into it
	_, ok := first.ProjectStatuses["p1"]
	assert.False(t, ok)
}

func TestSubscribe_SignalsOnCommit(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	ch, cancel := s.Subscribe()
	defer cancel()

	s.AddActivity(ctx, event("e1", "p1", "ping"))

	select {
	case <-ch:
	default:
		t.Fatal("expected a change signal after commit")
	}

	// Coalesced: many writes, at most one pending signal
	s.AddActivity(ctx, event("e2", "p1", "ping"))
	s.AddActivity(ctx, event("e3", "p1", "ping"))
	<-ch
	select {
	case <-ch:
		t.Fatal("signals should coalesce into one")
	default:
	}
}

func TestSubscribe_CancelDetaches(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	ch, cancel := s.Subscribe()
	cancel()

	s.AddActivity(ctx, event("e1", "p1", "ping"))
	select {
	case <-ch:
		t.Fatal("cancelled subscription must not receive signals")
	default:
	}
}
