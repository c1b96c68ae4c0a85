/*
Package seed holds the static demo datasets for the Arc portal.

The seed records are the read-only baseline the state container layers
its overrides and edits on top of. Accessors return fresh copies so no
caller can mutate the baseline.
*/
package seed

import (
	"github.com/arc/portal-engine/portal"
	"github.com/shopspring/decimal"
)

var projects = []portal.Project{
	{
		ID:        "p1",
		Name:      "Arc Identity Refresh",
		Client:    "Northwind",
		Status:    portal.ProjectActive,
		DueDate:   "2026-03-01",
		UpdatedAt: "2026-02-12",
	},
	{
		ID:        "p2",
		Name:      "Website Motion System",
		Client:    "Citrine Studio",
		Status:    portal.ProjectReview,
		DueDate:   "2026-02-20",
		UpdatedAt: "2026-02-11",
	},
	{
		ID:        "p3",
		Name:      "Client Portal IA",
		Client:    "Keystone",
		Status:    portal.ProjectPaused,
		DueDate:   "2026-04-10",
		UpdatedAt: "2026-02-01",
	},
	{
		ID:        "p4",
		Name:      "Invoice Template Kit",
		Client:    "Northwind",
		Status:    portal.ProjectCompleted,
		DueDate:   "2026-01-28",
		UpdatedAt: "2026-01-28",
	},
}

var invoices = []portal.Invoice{
	{
		ID:        "inv_1001",
		ProjectID: "p1",
		Client:    "Keystone",
		IssueDate: "2026-02-01",
		DueDate:   "2026-02-15",
		Currency:  "USD",
		Items: []portal.LineItem{
			{ID: "li1", Description: "Discovery + planning", Quantity: 1, Rate: decimal.NewFromInt(500)},
			{ID: "li2", Description: "UI build (dashboard shell)", Quantity: 8, Rate: decimal.NewFromInt(120)},
		},
	},
	{
		ID:        "inv_1002",
		ProjectID: "p2",
		Client:    "Arcadia",
		IssueDate: "2026-01-12",
		DueDate:   "2026-01-26",
		Currency:  "USD",
		Items: []portal.LineItem{
			{ID: "li1", Description: "Marketing site build", Quantity: 1, Rate: decimal.NewFromInt(1800)},
		},
	},
	{
		ID:        "inv_1003",
		ProjectID: "p3",
		Client:    "Northwind",
		IssueDate: "2026-02-10",
		DueDate:   "2026-02-24",
		Currency:  "USD",
		Items: []portal.LineItem{
			{ID: "li1", Description: "Motion pass (Framer Motion)", Quantity: 6, Rate: decimal.NewFromInt(140)},
		},
	},
}

// Baseline invoice statuses. Invoice records carry no status field; the
// container's override map is the authority and these are the read-time
// fallbacks for the seed invoices.
var invoiceStatuses = map[string]portal.InvoiceStatus{
	"inv_1001": portal.InvoiceSent,
	"inv_1002": portal.InvoicePaid,
	"inv_1003": portal.InvoiceDraft,
}

// Projects returns a copy of the seed project list.
func Projects() []portal.Project {
	out := make([]portal.Project, len(projects))
	copy(out, projects)
	return out
}

// Project returns one seed project by id.
func Project(id string) (portal.Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return portal.Project{}, false
}

// Invoices returns a deep copy of the seed invoice list.
func Invoices() []portal.Invoice {
	out := make([]portal.Invoice, len(invoices))
	for i, inv := range invoices {
		items := make([]portal.LineItem, len(inv.Items))
		copy(items, inv.Items)
		inv.Items = items
		out[i] = inv
	}
	return out
}

// InvoiceStatuses returns a copy of the baseline status map.
func InvoiceStatuses() map[string]portal.InvoiceStatus {
	out := make(map[string]portal.InvoiceStatus, len(invoiceStatuses))
	for k, v := range invoiceStatuses {
		out[k] = v
	}
	return out
}
