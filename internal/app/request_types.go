package app

import (
	"time"

	"github.com/shopspring/decimal"

	"invoice-manager/internal/core"
)

// ItemInput is a single line item in a create or update request.
type ItemInput struct {
	Description string
	Unit        string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateDocumentRequest is the input for creating a quotation or invoice.
type CreateDocumentRequest struct {
	Type     core.DocumentType
	Date     time.Time // zero means today
	Currency string    // empty means MRU
	TaxRate  decimal.Decimal

	CustomerName     string
	CustomerLocation string
	CustomerPhone    string

	WorkDelivery  string // quotations only
	PaymentTerms  string // quotations only
	CustomerPORef string // invoices only

	Notes      string
	FooterText string

	Items []ItemInput
	Actor core.Actor
}

// UpdateDocumentRequest is the input for editing a document. Ref may be a
// numeric id or a reference string. The item set fully replaces the old one.
type UpdateDocumentRequest struct {
	Ref      string
	Date     time.Time
	Currency string
	TaxRate  decimal.Decimal

	CustomerName     string
	CustomerLocation string
	CustomerPhone    string

	WorkDelivery  string
	PaymentTerms  string
	CustomerPORef string

	Notes      string
	FooterText string

	Items []ItemInput
	Actor core.Actor
}
