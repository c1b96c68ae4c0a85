/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Rates and totals are serialized as decimal strings ("1460"), never
  floats, so clients round-trip them losslessly.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

// =============================================================================
// PROJECTS
// =============================================================================

// ProjectDTO is a seed project with overrides and edits applied.
type ProjectDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Client    string `json:"client"`
	Status    string `json:"status"`
	DueDate   string `json:"due_date"`
	UpdatedAt string `json:"updated_at"`
	Edited    bool   `json:"edited"`
}

// UpdateStatusRequest changes a project or invoice status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateProjectDetailsRequest carries sparse project field edits. Nil
// fields are left untouched.
type UpdateProjectDetailsRequest struct {
	Name    *string `json:"name"`
	Client  *string `json:"client"`
	DueDate *string `json:"due_date"`
}

// =============================================================================
// INVOICES
// =============================================================================

type LineItemDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Rate        string `json:"rate"`
	Total       string `json:"total"`
}

type InvoiceDTO struct {
	ID            string        `json:"id"`
	ProjectID     string        `json:"project_id"`
	Client        string        `json:"client"`
	Status        string        `json:"status"`
	DisplayStatus string        `json:"display_status"`
	IssueDate     string        `json:"issue_date"`
	DueDate       string        `json:"due_date"`
	Currency      string        `json:"currency"`
	Total         string        `json:"total"`
	Items         []LineItemDTO `json:"items"`
}

// CreateInvoiceRequest creates a draft invoice with a single line item,
// the same shape the portal's quick-create form produced.
type CreateInvoiceRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type LineItemInput struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Rate        string `json:"rate"`
}

// UpdateInvoiceRequest patches invoice fields. Nil fields are left
// untouched; a non-nil items list replaces all line items.
type UpdateInvoiceRequest struct {
	Client    *string         `json:"client"`
	IssueDate *string         `json:"issue_date"`
	DueDate   *string         `json:"due_date"`
	Items     []LineItemInput `json:"items"`
}

// =============================================================================
// NOTES AND ACTIVITY
// =============================================================================

type NoteDTO struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Date      string `json:"date"`
}

type CreateNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type ActivityDTO struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	Meta      string `json:"meta,omitempty"`
	Date      string `json:"date"`
}

// =============================================================================
// DASHBOARD AND MISC
// =============================================================================

// DashboardDTO is the derived overview: nothing in it is stored.
type DashboardDTO struct {
	ProjectsByStatus map[string]int `json:"projects_by_status"`
	InvoicesByStatus map[string]int `json:"invoices_by_status"`
	OutstandingTotal string         `json:"outstanding_total"`
	PaidTotal        string         `json:"paid_total"`
	RecentActivity   []ActivityDTO  `json:"recent_activity"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
