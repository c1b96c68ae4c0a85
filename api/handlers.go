/*
handlers.go - HTTP API handlers for the Arc portal

PURPOSE:
  Exposes the portal state container via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the Session.

ENDPOINTS:
  Projects:
    GET    /api/projects                      List projects (effective values)
    GET    /api/projects/{id}                 Get one project
    PUT    /api/projects/{id}/status          Override project status
    PUT    /api/projects/{id}/details         Save field edits
    DELETE /api/projects/{id}/details         Reset edits to seed values
    GET    /api/projects/{id}/notes           List project notes
    POST   /api/projects/{id}/notes           Add a note
    GET    /api/projects/{id}/activity        Project activity feed
    GET    /api/projects/{id}/invoices        Project invoices
    POST   /api/projects/{id}/invoices        Quick-create a draft invoice

  Invoices:
    GET    /api/invoices                      List invoices
    GET    /api/invoices/{id}                 Get one invoice
    PUT    /api/invoices/{id}/status          Override invoice status
    PATCH  /api/invoices/{id}                 Patch dates/client/line items

  Feed and settings:
    GET    /api/activity                      Full activity feed (?limit=)
    GET    /api/dashboard                     Derived overview
    POST   /api/settings/reset                Reset all demo data
    POST   /api/settings/clear-activity       Clear only the activity feed

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown project/invoice id on reads and targeted mutations
  - 500: Never expected here; the container does not fail

  The container itself tolerates unknown ids silently; the API layer
  adds 404s because an HTTP client, unlike the original UI, may send
  ids it never read.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - portal/session.go: The state container
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arc/portal-engine/portal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Session  *portal.Session
	Projects []portal.Project

	// Baseline statuses for seed invoices, supplied to the container as
	// read-time fallbacks.
	SeedInvoiceStatuses map[string]portal.InvoiceStatus

	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string
}

// NewHandler creates a handler bound to an active session. A nil
// session is a structural wiring bug, not a runtime condition, so it
// fails hard here instead of on first read.
func NewHandler(session *portal.Session, projects []portal.Project, seedStatuses map[string]portal.InvoiceStatus) *Handler {
	if session == nil {
		panic("api: NewHandler requires an active portal session")
	}
	return &Handler{
		Session:             session,
		Projects:            projects,
		SeedInvoiceStatuses: seedStatuses,
		Now:                 time.Now,
		NewID:               uuid.NewString,
	}
}

func (h *Handler) today() string {
	return h.Now().Format(portal.DateLayout)
}

func (h *Handler) seedProject(id string) (portal.Project, bool) {
	for _, p := range h.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return portal.Project{}, false
}

// invoiceFallback returns the baseline status for an invoice id. New
// invoices are born draft, so draft is the fallback for anything not in
// the seed dataset.
func (h *Handler) invoiceFallback(id string) portal.InvoiceStatus {
	if s, ok := h.SeedInvoiceStatuses[id]; ok {
		return s
	}
	return portal.InvoiceDraft
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all projects with overrides and edits applied.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ProjectDTO, len(h.Projects))
	for i, p := range h.Projects {
		dtos[i] = h.projectDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, ok := h.seedProject(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.projectDTO(p))
}

// UpdateProjectStatus overrides a project's status.
func (h *Handler) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := h.seedProject(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status := portal.ProjectStatus(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status (use active, review, paused or completed)", nil)
		return
	}

	ctx := r.Context()
	h.Session.SetProjectStatus(ctx, p.ID, status)
	h.Session.AddActivity(ctx, portal.ActivityEvent{
		ID:        h.NewID(),
		ProjectID: p.ID,
		Title:     fmt.Sprintf("Status changed to %s", status),
		Meta:      "System • Projects",
		Date:      h.today(),
	})

	writeJSON(w, http.StatusOK, h.projectDTO(p))
}

// UpdateProjectDetails saves sparse field edits for a project.
func (h *Handler) UpdateProjectDetails(w http.ResponseWriter, r *http.Request) {
	p, ok := h.seedProject(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}

	var req UpdateProjectDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	edits := portal.ProjectEdits{Name: req.Name, Client: req.Client, DueDate: req.DueDate}
	if edits.IsZero() {
		writeError(w, http.StatusBadRequest, "No fields to update", nil)
		return
	}

	ctx := r.Context()
	h.Session.SetProjectEdits(ctx, p.ID, edits)
	h.Session.AddActivity(ctx, portal.ActivityEvent{
		ID:        h.NewID(),
		ProjectID: p.ID,
		Title:     "Project details updated",
		Meta:      "System • Project",
		Date:      h.today(),
	})

	writeJSON(w, http.StatusOK, h.projectDTO(p))
}

// ClearProjectDetails removes all field edits for a project.
func (h *Handler) ClearProjectDetails(w http.ResponseWriter, r *http.Request) {
	p, ok := h.seedProject(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}

	ctx := r.Context()
	h.Session.ClearProjectEdits(ctx, p.ID)
	h.Session.AddActivity(ctx, portal.ActivityEvent{
		ID:        h.NewID(),
		ProjectID: p.ID,
		Title:     "Project details reset to default",
		Meta:      "System • Project",
		Date:      h.today(),
	})

	writeJSON(w, http.StatusOK, h.projectDTO(p))
}

// =============================================================================
// NOTE HANDLERS
// =============================================================================

// ListProjectNotes returns a project's notes, newest first.
func (h *Handler) ListProjectNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.seedProject(id); !ok {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}

	notes := h.Session.NotesFor(id)
	dtos := make([]NoteDTO, len(notes))
	for i, n := range notes {
		dtos[i] = NoteDTO(n)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProjectNote adds a note to a project.
func (h *Handler) CreateProjectNote(w http.ResponseWriter, r *http.Request) {
	p, ok := h.seedProject(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Note title is required", nil)
		return
	}

	note := portal.Note{
		ID:        h.NewID(),
		ProjectID: p.ID,
		Title:     req.Title,
		Body:      req.Body,
		Date:      h.today(),
	}

	ctx := r.Context()
	h.Session.AddNote(ctx, note)
	h.Session.AddActivity(ctx, portal.ActivityEvent{
		ID:        h.NewID(),
		ProjectID: p.ID,
		Title:     "Note added",
		Meta:      "System • Notes",
		Date:      h.today(),
	})

	writeJSON(w, http.StatusCreated, NoteDTO(note))
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// ListInvoices returns all invoices, newest first.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices := h.Session.Invoices()
	dtos := make([]InvoiceDTO, len(invoices))
	for i, inv := range invoices {
		dtos[i] = h.invoiceDTO(inv)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetInvoice returns a single invoice with derived totals.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.Session.Invoice(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.invoiceDTO(inv))
}

// ListProjectInvoices returns the invoices belonging to one project.
func (h *Handler) ListProjectInvoices(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.seedProject(id); !ok {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}

	dtos := []InvoiceDTO{}
	for _, inv := range h.Session.Invoices() {
		if inv.ProjectID == id {
			dtos = append(dtos, h.invoiceDTO(inv))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProjectInvoice quick-creates a draft invoice with one line
// item, mirroring the portal's create form: issue date today, due in
// 14 days, quantity 1.
func (h *Handler) CreateProjectInvoice(w http.ResponseWriter, r *http.Request) {
	p, ok := h.seedProject(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}

	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "Description is required", nil)
		return
	}
	rate := parseMoney(req.Amount)
	if !rate.IsPositive() {
		writeError(w, http.StatusBadRequest, "Amount must be a positive number", nil)
		return
	}

	inv := portal.Invoice{
		ID:        "inv_" + h.NewID()[:6],
		ProjectID: p.ID,
		Client:    p.Client,
		IssueDate: h.today(),
		DueDate:   h.Now().AddDate(0, 0, 14).Format(portal.DateLayout),
		Currency:  "USD",
		Items: []portal.LineItem{
			{ID: h.NewID(), Description: req.Description, Quantity: 1, Rate: rate},
		},
	}

	ctx := r.Context()
	h.Session.CreateInvoice(ctx, inv, portal.InvoiceDraft)
	h.Session.AddActivity(ctx, portal.ActivityEvent{
		ID:        h.NewID(),
		ProjectID: p.ID,
		Title:     fmt.Sprintf("Invoice created (%s)", inv.ID),
		Meta:      "System • Invoices",
		Date:      h.today(),
	})

	writeJSON(w, http.StatusCreated, h.invoiceDTO(inv))
}

// UpdateInvoiceStatus overrides an invoice's status.
func (h *Handler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.Session.Invoice(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status := portal.InvoiceStatus(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status (use draft, sent, paid or overdue)", nil)
		return
	}

	ctx := r.Context()
	h.Session.SetInvoiceStatus(ctx, inv.ID, status)
	h.Session.AddActivity(ctx, portal.ActivityEvent{
		ID:        h.NewID(),
		ProjectID: inv.ProjectID,
		Title:     fmt.Sprintf("Invoice %s marked %s", inv.ID, status),
		Meta:      "System • Invoices",
		Date:      h.today(),
	})

	writeJSON(w, http.StatusOK, h.invoiceDTO(inv))
}

// UpdateInvoice patches invoice fields and/or line items.
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.Session.Invoice(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}

	var req UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	patch := portal.InvoicePatch{
		Client:    req.Client,
		IssueDate: req.IssueDate,
		DueDate:   req.DueDate,
	}
	if req.Items != nil {
		items := make([]portal.LineItem, len(req.Items))
		for i, in := range req.Items {
			rate, err := decimal.NewFromString(in.Rate)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid rate %q", in.Rate), err)
				return
			}
			if in.Quantity < 1 {
				writeError(w, http.StatusBadRequest, "Quantity must be at least 1", nil)
				return
			}
			id := in.ID
			if id == "" {
				id = h.NewID()
			}
			items[i] = portal.LineItem{ID: id, Description: in.Description, Quantity: in.Quantity, Rate: rate}
		}
		patch.Items = items
	}

	ctx := r.Context()
	h.Session.UpdateInvoice(ctx, inv.ID, patch)
	h.Session.AddActivity(ctx, portal.ActivityEvent{
		ID:        h.NewID(),
		ProjectID: inv.ProjectID,
		Title:     fmt.Sprintf("Invoice %s updated", inv.ID),
		Meta:      "System • Invoices",
		Date:      h.today(),
	})

	updated, _ := h.Session.Invoice(inv.ID)
	writeJSON(w, http.StatusOK, h.invoiceDTO(updated))
}

// =============================================================================
// ACTIVITY, DASHBOARD, SETTINGS
// =============================================================================

// ListProjectActivity returns one project's activity feed.
func (h *Handler) ListProjectActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.seedProject(id); !ok {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toActivityDTOs(h.Session.ActivityFor(id)))
}

// ListActivity returns the full feed, newest first. ?limit= caps the
// response; the stored feed itself is unbounded.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	events := h.Session.Activity()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		if limit < len(events) {
			events = events[:limit]
		}
	}
	writeJSON(w, http.StatusOK, toActivityDTOs(events))
}

// GetDashboard returns the derived overview.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	today := h.Now()

	projectsByStatus := make(map[string]int)
	for _, p := range h.Projects {
		status := h.Session.ProjectStatus(p.ID, p.Status)
		projectsByStatus[string(status)]++
	}

	invoicesByStatus := make(map[string]int)
	outstanding := decimal.Zero
	paid := decimal.Zero
	for _, inv := range h.Session.Invoices() {
		status := h.Session.InvoiceStatus(inv.ID, h.invoiceFallback(inv.ID))
		display := portal.DisplayInvoiceStatus(status, inv.DueDate, today)
		invoicesByStatus[string(display)]++
		if display == portal.InvoicePaid {
			paid = paid.Add(inv.Total())
		} else {
			outstanding = outstanding.Add(inv.Total())
		}
	}

	recent := h.Session.Activity()
	if len(recent) > 5 {
		recent = recent[:5]
	}

	writeJSON(w, http.StatusOK, DashboardDTO{
		ProjectsByStatus: projectsByStatus,
		InvoicesByStatus: invoicesByStatus,
		OutstandingTotal: outstanding.String(),
		PaidTotal:        paid.String(),
		RecentActivity:   toActivityDTOs(recent),
	})
}

// ResetDemoData clears every slice back to its defaults.
func (h *Handler) ResetDemoData(w http.ResponseWriter, r *http.Request) {
	h.Session.ResetDemoData(r.Context())
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Demo data reset"})
}

// ClearActivity clears only the activity feed.
func (h *Handler) ClearActivity(w http.ResponseWriter, r *http.Request) {
	h.Session.ClearActivity(r.Context())
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Activity cleared"})
}

// =============================================================================
// DTO MAPPING AND HELPERS
// =============================================================================

func (h *Handler) projectDTO(p portal.Project) ProjectDTO {
	edits, edited := h.Session.ProjectEdits(p.ID)
	effective := edits.Apply(p)
	return ProjectDTO{
		ID:        p.ID,
		Name:      effective.Name,
		Client:    effective.Client,
		Status:    string(h.Session.ProjectStatus(p.ID, p.Status)),
		DueDate:   effective.DueDate,
		UpdatedAt: p.UpdatedAt,
		Edited:    edited,
	}
}

func (h *Handler) invoiceDTO(inv portal.Invoice) InvoiceDTO {
	status := h.Session.InvoiceStatus(inv.ID, h.invoiceFallback(inv.ID))
	items := make([]LineItemDTO, len(inv.Items))
	for i, li := range inv.Items {
		items[i] = LineItemDTO{
			ID:          li.ID,
			Description: li.Description,
			Quantity:    li.Quantity,
			Rate:        li.Rate.String(),
			Total:       li.Total().String(),
		}
	}
	return InvoiceDTO{
		ID:            inv.ID,
		ProjectID:     inv.ProjectID,
		Client:        inv.Client,
		Status:        string(status),
		DisplayStatus: string(portal.DisplayInvoiceStatus(status, inv.DueDate, h.Now())),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Currency:      inv.Currency,
		Total:         inv.Total().String(),
		Items:         items,
	}
}

func toActivityDTOs(events []portal.ActivityEvent) []ActivityDTO {
	dtos := make([]ActivityDTO, len(events))
	for i, e := range events {
		dtos[i] = ActivityDTO(e)
	}
	return dtos
}

// parseMoney accepts free-form amount input: keeps digits and the first
// decimal point, drops everything else. Unparseable input becomes zero,
// which the handlers reject as non-positive.
func parseMoney(input string) decimal.Decimal {
	var b strings.Builder
	seenDot := false
	for _, r := range input {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			b.WriteRune(r)
			seenDot = true
		}
	}
	if b.Len() == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
