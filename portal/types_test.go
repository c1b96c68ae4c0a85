package portal_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arc/portal-engine/portal"
)

func strPtr(s string) *string { return &s }

func TestEffective_FallbackWhenNoOverride(t *testing.T) {
	overrides := map[string]portal.ProjectStatus{"p2": portal.ProjectPaused}

	if got := portal.Effective(overrides, "p1", portal.ProjectActive); got != portal.ProjectActive {
		t.Errorf("expected fallback active, got %s", got)
	}
	if got := portal.Effective(overrides, "p2", portal.ProjectActive); got != portal.ProjectPaused {
		t.Errorf("expected override paused, got %s", got)
	}
}

func TestStatusValidity(t *testing.T) {
	for _, s := range []portal.ProjectStatus{portal.ProjectActive, portal.ProjectReview, portal.ProjectPaused, portal.ProjectCompleted} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if portal.ProjectStatus("archived").Valid() {
		t.Error("archived should not be a valid project status")
	}

	for _, s := range []portal.InvoiceStatus{portal.InvoiceDraft, portal.InvoiceSent, portal.InvoicePaid, portal.InvoiceOverdue} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if portal.InvoiceStatus("void").Valid() {
		t.Error("void should not be a valid invoice status")
	}
}

func TestInvoiceTotal_DerivedFromItems(t *testing.T) {
	inv := portal.Invoice{
		Items: []portal.LineItem{
			{ID: "li1", Quantity: 8, Rate: decimal.NewFromInt(120)},
			{ID: "li2", Quantity: 1, Rate: decimal.NewFromInt(500)},
		},
	}

	if got := inv.Total(); !got.Equal(decimal.NewFromInt(1460)) {
		t.Errorf("expected total 1460, got %s", got)
	}

	// Changing a quantity changes the derived total on next read; no
	// stored total exists to go stale.
	inv.Items[0].Quantity = 10
	if got := inv.Total(); !got.Equal(decimal.NewFromInt(1700)) {
		t.Errorf("expected total 1700 after quantity change, got %s", got)
	}
}

func TestInvoiceTotal_EmptyItems(t *testing.T) {
	if got := (portal.Invoice{}).Total(); !got.Equal(decimal.Zero) {
		t.Errorf("expected zero total, got %s", got)
	}
}

func TestProjectEdits_Apply(t *testing.T) {
	p := portal.Project{ID: "p1", Name: "Original", Client: "Northwind", DueDate: "2026-03-01"}

	edits := portal.ProjectEdits{Name: strPtr("Renamed")}
	got := edits.Apply(p)

	if got.Name != "Renamed" {
		t.Errorf("expected edited name, got %s", got.Name)
	}
	if got.Client != "Northwind" || got.DueDate != "2026-03-01" {
		t.Error("untouched fields must keep seed values")
	}

	if !(portal.ProjectEdits{}).IsZero() {
		t.Error("empty edits should be zero")
	}
	if edits.IsZero() {
		t.Error("edits with a name should not be zero")
	}
}

func TestDisplayInvoiceStatus(t *testing.T) {
	today := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  portal.InvoiceStatus
		dueDate string
		want    portal.InvoiceStatus
	}{
		{"sent past due becomes overdue", portal.InvoiceSent, "2026-02-15", portal.InvoiceOverdue},
		{"draft past due becomes overdue", portal.InvoiceDraft, "2026-02-15", portal.InvoiceOverdue},
		{"paid past due stays paid", portal.InvoicePaid, "2026-02-15", portal.InvoicePaid},
		{"sent not yet due stays sent", portal.InvoiceSent, "2026-03-15", portal.InvoiceSent},
		{"due today is not overdue", portal.InvoiceSent, "2026-03-01", portal.InvoiceSent},
		{"unparseable due date keeps status", portal.InvoiceSent, "soon", portal.InvoiceSent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := portal.DisplayInvoiceStatus(tt.status, tt.dueDate, today); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
