package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ConversionEngine turns an unconverted, non-rejected quotation into a draft
// invoice. The whole conversion is one transaction: the new reference, the
// invoice row, the deep-copied items, the wording, the quotation's approval
// stamp and back-reference, and both history records commit or roll back
// together. No reader can observe the invoice before commit, or the
// quotation marked converted without its invoice.
type ConversionEngine struct {
	pool    *pgxpool.Pool
	refs    *ReferenceGenerator
	docs    DocumentService
	history HistoryRecorder
}

func NewConversionEngine(pool *pgxpool.Pool, refs *ReferenceGenerator, docs DocumentService, history HistoryRecorder) *ConversionEngine {
	return &ConversionEngine{pool: pool, refs: refs, docs: docs, history: history}
}

// ConvertToInvoice converts the given quotation and returns the new invoice.
// A second call on the same quotation fails with AlreadyConvertedError and
// never produces a second invoice.
func (e *ConversionEngine) ConvertToInvoice(ctx context.Context, quotationID int, actor Actor) (*Document, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q, err := lockQuotation(ctx, tx, quotationID)
	if err != nil {
		return nil, err
	}

	if q.Type != Quotation {
		return nil, newValidationError("type", "only quotations can be converted to invoices")
	}
	if q.ConvertedToInvoiceID != nil {
		invoiceRef, err := referenceOf(ctx, tx, *q.ConvertedToInvoiceID)
		if err != nil {
			return nil, err
		}
		return nil, &AlreadyConvertedError{
			QuotationReference: q.Reference,
			InvoiceReference:   invoiceRef,
		}
	}
	if q.Status == StatusRejected {
		return nil, &InvalidTransitionError{From: StatusRejected, To: StatusApproved,
			Reason: "a rejected quotation cannot be converted"}
	}

	now := time.Now()

	// 1. Reference for the new invoice.
	invoiceRef, err := e.refs.NextTx(ctx, tx, Invoice, now)
	if err != nil {
		return nil, err
	}

	// 2. Invoice row: customer snapshot, currency and tax rate copied from
	// the quotation; quotation-only fields cleared; PO reference left empty.
	var invoiceID int
	err = tx.QueryRow(ctx, `
		INSERT INTO documents
		            (doc_type, reference, doc_date, currency, tax_rate,
		             customer_name, customer_location, customer_phone,
		             work_delivery, payment_terms, customer_po_ref,
		             status, notes, footer_text, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '', '', '', $9, $10, $11, $12)
		RETURNING id`,
		string(Invoice), invoiceRef, now, q.Currency, q.TaxRate,
		q.Customer.Name, q.Customer.Location, q.Customer.Phone,
		string(StatusDraft),
		fmt.Sprintf("Converted from quotation %s", q.Reference),
		q.FooterText, actor.Name,
	).Scan(&invoiceID)
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	// 3. Deep-copy every item, preserving numbers and values.
	items, err := copyItems(ctx, tx, quotationID, invoiceID)
	if err != nil {
		return nil, err
	}

	// 4. Totals and legal wording; rendering failure degrades to the plain
	// numeric string rather than aborting the conversion.
	totals := ComputeTotals(items, q.TaxRate)
	words, err := AmountInWords(totals.Total, q.Currency)
	if err != nil {
		words = NumericFallback(totals.Total, q.Currency)
	}
	if _, err := tx.Exec(ctx,
		"UPDATE documents SET amount_in_words = $1 WHERE id = $2",
		words, invoiceID,
	); err != nil {
		return nil, fmt.Errorf("store invoice wording: %w", err)
	}

	// 5. Approve the quotation and link it to its invoice.
	if _, err := tx.Exec(ctx, `
		UPDATE documents
		SET status = $1, approved_by = $2, approved_at = NOW(),
		    converted_to_invoice_id = $3, updated_at = NOW()
		WHERE id = $4`,
		string(StatusApproved), actor.Name, invoiceID, quotationID,
	); err != nil {
		return nil, fmt.Errorf("approve quotation %d: %w", quotationID, err)
	}

	// 6. One history record on each side.
	if err := e.history.Append(ctx, tx, quotationID, HistoryEntry{
		Action:    ActionApproved,
		Actor:     actor.Name,
		Details:   fmt.Sprintf("Quotation approved and converted to invoice %s", invoiceRef),
		OldStatus: q.Status,
		NewStatus: StatusApproved,
	}); err != nil {
		return nil, err
	}
	if err := e.history.Append(ctx, tx, invoiceID, HistoryEntry{
		Action:  ActionCreated,
		Actor:   actor.Name,
		Details: fmt.Sprintf("Invoice created from quotation %s", q.Reference),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit conversion: %w", err)
	}
	return e.docs.Get(ctx, invoiceID)
}

// sourceQuotation is the slice of the quotation row the conversion needs.
type sourceQuotation struct {
	Type                 DocumentType
	Status               DocumentStatus
	Reference            string
	Currency             string
	TaxRate              decimal.Decimal
	Customer             CustomerSnapshot
	FooterText           string
	ConvertedToInvoiceID *int
}

// lockQuotation loads the conversion-relevant fields under FOR UPDATE so a
// concurrent conversion or transition on the same quotation serializes here.
func lockQuotation(ctx context.Context, tx pgx.Tx, quotationID int) (sourceQuotation, error) {
	var q sourceQuotation
	var docType, status string
	err := tx.QueryRow(ctx, `
		SELECT doc_type, status, reference, currency, tax_rate,
		       customer_name, customer_location, customer_phone,
		       footer_text, converted_to_invoice_id
		FROM documents
		WHERE id = $1
		FOR UPDATE`,
		quotationID,
	).Scan(&docType, &status, &q.Reference, &q.Currency, &q.TaxRate,
		&q.Customer.Name, &q.Customer.Location, &q.Customer.Phone,
		&q.FooterText, &q.ConvertedToInvoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return q, ErrNotFound
		}
		return q, fmt.Errorf("lock quotation %d: %w", quotationID, err)
	}
	q.Type = DocumentType(docType)
	q.Status = DocumentStatus(status)
	return q, nil
}

// copyItems duplicates the quotation's items onto the invoice, preserving
// item numbers, and returns the copies. The invoice owns its copies; later
// edits to either document never touch the other.
func copyItems(ctx context.Context, tx pgx.Tx, fromID, toID int) ([]DocumentItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT item_number, description, unit, quantity, unit_price
		FROM document_items
		WHERE document_id = $1
		ORDER BY item_number`,
		fromID,
	)
	if err != nil {
		return nil, fmt.Errorf("read items of document %d: %w", fromID, err)
	}

	var items []DocumentItem
	for rows.Next() {
		item := DocumentItem{DocumentID: toID}
		if err := rows.Scan(&item.ItemNumber, &item.Description, &item.Unit,
			&item.Quantity, &item.UnitPrice); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, item := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO document_items (document_id, item_number, description, unit, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			item.DocumentID, item.ItemNumber, item.Description, item.Unit,
			item.Quantity, item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("copy item %d: %w", item.ItemNumber, err)
		}
	}
	return items, nil
}

// referenceOf returns the reference of a document by id, inside the given
// transaction.
func referenceOf(ctx context.Context, tx pgx.Tx, documentID int) (string, error) {
	var ref string
	if err := tx.QueryRow(ctx,
		"SELECT reference FROM documents WHERE id = $1", documentID,
	).Scan(&ref); err != nil {
		return "", fmt.Errorf("resolve reference of document %d: %w", documentID, err)
	}
	return ref, nil
}
