package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type DocumentType string

const (
	Quotation DocumentType = "quotation"
	Invoice   DocumentType = "invoice"
)

func (t DocumentType) Valid() bool {
	return t == Quotation || t == Invoice
}

// ReferencePrefix returns the two-letter code used in document references.
func (t DocumentType) ReferencePrefix() string {
	if t == Invoice {
		return "IN"
	}
	return "QT"
}

// Label returns the display name used in history details.
func (t DocumentType) Label() string {
	if t == Invoice {
		return "Invoice"
	}
	return "Quotation"
}

type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusPending   DocumentStatus = "pending"
	StatusApproved  DocumentStatus = "approved"
	StatusRejected  DocumentStatus = "rejected"
	StatusPaid      DocumentStatus = "paid"
	StatusCancelled DocumentStatus = "cancelled"
)

// AllStatuses lists every recognized document status.
var AllStatuses = []DocumentStatus{
	StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusPaid, StatusCancelled,
}

func (s DocumentStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether a status can never be left again.
func (s DocumentStatus) Terminal() bool {
	return s == StatusRejected || s == StatusPaid || s == StatusCancelled
}

// Editable reports whether line items and core fields may still be changed.
func (s DocumentStatus) Editable() bool {
	return s == StatusDraft || s == StatusPending
}

// Actor identifies the user performing a mutating operation. Authentication
// is handled outside this module; the core only records the identity and
// trusts the Elevated flag the caller resolved.
type Actor struct {
	Name     string
	Elevated bool
}

// CustomerSnapshot holds the customer fields copied by value onto a document
// at creation time. It is never re-read from a live customer record.
type CustomerSnapshot struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

type Document struct {
	ID        int             `json:"id"`
	Type      DocumentType    `json:"type"`
	Reference string          `json:"reference"`
	Date      time.Time       `json:"date"`
	Currency  string          `json:"currency"`
	TaxRate   decimal.Decimal `json:"tax_rate"`

	Customer CustomerSnapshot `json:"customer"`

	// Quotation-only fields. Always empty on invoices.
	WorkDelivery string `json:"work_delivery,omitempty"`
	PaymentTerms string `json:"payment_terms,omitempty"`

	// Invoice-only fields. Always empty on quotations.
	CustomerPORef string `json:"customer_po_ref,omitempty"`
	AmountInWords string `json:"amount_in_words,omitempty"`

	Status DocumentStatus `json:"status"`

	// Set at most once, on the quotation side, when it is converted.
	ConvertedToInvoiceID *int `json:"converted_to_invoice_id,omitempty"`

	ApprovedBy *string    `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	RejectedBy *string    `json:"rejected_by,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`

	Notes      string `json:"notes,omitempty"`
	FooterText string `json:"footer_text,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []DocumentItem `json:"items,omitempty"`

	// Derived from Items on every read; never stored.
	Totals Totals `json:"totals"`
}

type DocumentItem struct {
	DocumentID  int             `json:"document_id"`
	ItemNumber  int             `json:"item_number"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// TotalPrice returns quantity × unit price for this line.
func (i DocumentItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// History actions.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionApproved      = "approved"
	ActionRejected      = "rejected"
	ActionStatusChanged = "status_changed"
)

// DocumentHistory is one immutable audit-trail record. Rows are only ever
// inserted, in the same transaction as the change they describe.
type DocumentHistory struct {
	ID         int            `json:"id"`
	DocumentID int            `json:"document_id"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor"`
	OccurredAt time.Time      `json:"occurred_at"`
	Details    string         `json:"details"`
	OldStatus  DocumentStatus `json:"old_status,omitempty"`
	NewStatus  DocumentStatus `json:"new_status,omitempty"`
}

// allowedUnits is the unit vocabulary accepted on line items.
var allowedUnits = map[string]bool{
	"PC": true, "Unit": true, "Hour": true, "Day": true, "Month": true,
	"Set": true, "Box": true, "Kg": true, "Meter": true, "Liter": true,
}

// ItemInput is a raw line item supplied by the caller. Item numbers are
// assigned by the service, 1-based in input order.
type ItemInput struct {
	Description string
	Unit        string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// NewDocument is the input for creating a document.
type NewDocument struct {
	Type     DocumentType
	Date     time.Time // zero means "today"
	Currency string    // empty means MRU
	TaxRate  decimal.Decimal
	Customer CustomerSnapshot

	WorkDelivery  string // quotations only
	PaymentTerms  string // quotations only
	CustomerPORef string // invoices only

	Notes      string
	FooterText string

	Items []ItemInput
	Actor Actor
}

// DocumentUpdate is the input for editing a document while it is still
// editable. It is a full replacement: every field and the whole item set
// overwrite the stored document, and fields left unset take the same
// defaults as at creation (zero date becomes today, empty currency becomes
// MRU). Type must match the document's current type; changing it is always
// rejected.
type DocumentUpdate struct {
	Type     DocumentType // empty means "keep"
	Date     time.Time    // zero means "today"
	Currency string       // empty means MRU
	TaxRate  decimal.Decimal
	Customer CustomerSnapshot

	WorkDelivery  string
	PaymentTerms  string
	CustomerPORef string

	Notes      string
	FooterText string

	Items []ItemInput
}
