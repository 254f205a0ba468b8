package app

import (
	"context"

	"invoice-manager/internal/core"
)

// ApplicationService is the single interface every front end calls. It
// decouples presentation from the document core and is where caller-side
// policies live: draft-only deletion and the elevated-actor requirement for
// privileged statuses. Implementations contain no display logic.
type ApplicationService interface {
	// CreateDocument creates a new draft quotation or invoice with its items.
	CreateDocument(ctx context.Context, req CreateDocumentRequest) (*DocumentResult, error)

	// UpdateDocument replaces an editable document's fields and item set.
	UpdateDocument(ctx context.Context, req UpdateDocumentRequest) (*DocumentResult, error)

	// GetDocument returns one document with items, derived totals and its
	// audit trail, looked up by numeric id or by reference string.
	GetDocument(ctx context.Context, ref string) (*DocumentResult, error)

	// ListDocuments returns documents of one type, optionally filtered by status.
	ListDocuments(ctx context.Context, docType core.DocumentType, status *core.DocumentStatus) (*DocumentListResult, error)

	// DeleteDocument removes a document. Only drafts may be deleted unless
	// the actor is elevated.
	DeleteDocument(ctx context.Context, ref string, actor core.Actor) error

	// Submit moves a draft document to pending.
	Submit(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error)

	// Approve marks a document approved, stamping the approver.
	Approve(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error)

	// Reject marks a document rejected, stamping the rejecter.
	Reject(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error)

	// MarkPaid moves an approved document to paid.
	MarkPaid(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error)

	// Cancel moves any non-terminal document to cancelled.
	Cancel(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error)

	// SetStatus applies a generic status change.
	SetStatus(ctx context.Context, ref string, target core.DocumentStatus, actor core.Actor) (*DocumentResult, error)

	// ConvertToInvoice converts a quotation into a new draft invoice.
	ConvertToInvoice(ctx context.Context, ref string, actor core.Actor) (*DocumentResult, error)
}
