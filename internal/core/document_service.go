package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DocumentService owns document authoring: creation with reference
// assignment, edits while the document is still editable, reads with derived
// totals, and deletion. Status transitions live on StateMachine and
// conversion on ConversionEngine.
type DocumentService interface {
	Create(ctx context.Context, input NewDocument) (*Document, error)
	// Update replaces the document's fields and its whole item set. Items are
	// renumbered 1..n in input order. Permitted only while draft or pending.
	Update(ctx context.Context, documentID int, input DocumentUpdate, actor Actor) (*Document, error)
	Get(ctx context.Context, documentID int) (*Document, error)
	GetByReference(ctx context.Context, reference string) (*Document, error)
	// GetWithHistory returns the document plus its audit trail, newest first.
	GetWithHistory(ctx context.Context, documentID int) (*Document, []DocumentHistory, error)
	List(ctx context.Context, docType DocumentType, status *DocumentStatus) ([]Document, error)
	// Delete removes the document with its items and history. Whether a
	// non-draft document may be deleted is the caller's policy, not enforced
	// here.
	Delete(ctx context.Context, documentID int) error
}

type documentService struct {
	pool    *pgxpool.Pool
	refs    *ReferenceGenerator
	history HistoryRecorder
}

func NewDocumentService(pool *pgxpool.Pool, refs *ReferenceGenerator, history HistoryRecorder) DocumentService {
	return &documentService{pool: pool, refs: refs, history: history}
}

const documentColumns = `
	id, doc_type, reference, doc_date, currency, tax_rate,
	customer_name, customer_location, customer_phone,
	work_delivery, payment_terms, customer_po_ref, amount_in_words,
	status, converted_to_invoice_id,
	approved_by, approved_at, rejected_by, rejected_at,
	notes, footer_text, created_by, created_at, updated_at`

func (s *documentService) Create(ctx context.Context, input NewDocument) (*Document, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	reference, err := s.refs.NextTx(ctx, tx, input.Type, input.Date)
	if err != nil {
		return nil, err
	}

	var documentID int
	err = tx.QueryRow(ctx, `
		INSERT INTO documents
		            (doc_type, reference, doc_date, currency, tax_rate,
		             customer_name, customer_location, customer_phone,
		             work_delivery, payment_terms, customer_po_ref,
		             status, notes, footer_text, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		string(input.Type), reference, input.Date, input.Currency, input.TaxRate,
		input.Customer.Name, input.Customer.Location, input.Customer.Phone,
		input.WorkDelivery, input.PaymentTerms, input.CustomerPORef,
		string(StatusDraft), input.Notes, input.FooterText, input.Actor.Name,
	).Scan(&documentID)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	items, err := insertItems(ctx, tx, documentID, input.Items)
	if err != nil {
		return nil, err
	}

	if input.Type == Invoice {
		if err := storeAmountInWords(ctx, tx, documentID, items, input.TaxRate, input.Currency); err != nil {
			return nil, err
		}
	}

	if err := s.history.Append(ctx, tx, documentID, HistoryEntry{
		Action:  ActionCreated,
		Actor:   input.Actor.Name,
		Details: fmt.Sprintf("%s created", input.Type.Label()),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit document creation: %w", err)
	}
	return s.Get(ctx, documentID)
}

func (s *documentService) Update(ctx context.Context, documentID int, input DocumentUpdate, actor Actor) (*Document, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	doc, err := lockDocument(ctx, tx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.Status.Editable() && !actor.Elevated {
		return nil, newValidationError("status",
			fmt.Sprintf("a %s document can no longer be edited", doc.Status))
	}

	// The document type is write-once. In particular an invoice can never be
	// turned back into a quotation.
	if input.Type != "" && input.Type != doc.Type {
		return nil, newValidationError("type",
			fmt.Sprintf("document type cannot be changed from %s to %s", doc.Type, input.Type))
	}

	asCreate := NewDocument{
		Type:          doc.Type,
		Date:          input.Date,
		Currency:      input.Currency,
		TaxRate:       input.TaxRate,
		Customer:      input.Customer,
		WorkDelivery:  input.WorkDelivery,
		PaymentTerms:  input.PaymentTerms,
		CustomerPORef: input.CustomerPORef,
		Items:         input.Items,
		Actor:         actor,
	}
	asCreate.Normalize()
	if err := asCreate.Validate(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE documents
		SET doc_date = $1, currency = $2, tax_rate = $3,
		    customer_name = $4, customer_location = $5, customer_phone = $6,
		    work_delivery = $7, payment_terms = $8, customer_po_ref = $9,
		    notes = $10, footer_text = $11, updated_at = NOW()
		WHERE id = $12`,
		asCreate.Date, asCreate.Currency, asCreate.TaxRate,
		asCreate.Customer.Name, asCreate.Customer.Location, asCreate.Customer.Phone,
		asCreate.WorkDelivery, asCreate.PaymentTerms, asCreate.CustomerPORef,
		input.Notes, input.FooterText, documentID,
	); err != nil {
		return nil, fmt.Errorf("update document %d: %w", documentID, err)
	}

	// Replace the entire item set; contiguous numbering is re-established on
	// every save.
	if _, err := tx.Exec(ctx, "DELETE FROM document_items WHERE document_id = $1", documentID); err != nil {
		return nil, fmt.Errorf("clear items for document %d: %w", documentID, err)
	}
	items, err := insertItems(ctx, tx, documentID, input.Items)
	if err != nil {
		return nil, err
	}

	if doc.Type == Invoice {
		if err := storeAmountInWords(ctx, tx, documentID, items, asCreate.TaxRate, asCreate.Currency); err != nil {
			return nil, err
		}
	}

	if err := s.history.Append(ctx, tx, documentID, HistoryEntry{
		Action:  ActionUpdated,
		Actor:   actor.Name,
		Details: "Document updated",
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit document update: %w", err)
	}
	return s.Get(ctx, documentID)
}

func (s *documentService) Get(ctx context.Context, documentID int) (*Document, error) {
	return s.getByCondition(ctx, "id = $1", documentID)
}

func (s *documentService) GetByReference(ctx context.Context, reference string) (*Document, error) {
	return s.getByCondition(ctx, "reference = $1", reference)
}

func (s *documentService) getByCondition(ctx context.Context, condition string, arg any) (*Document, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT"+documentColumns+" FROM documents WHERE "+condition, arg)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	items, err := fetchItems(ctx, s.pool, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Items = items
	doc.Totals = ComputeTotals(items, doc.TaxRate)
	return doc, nil
}

// GetWithHistory returns the document along with its audit trail, newest
// first. Kept separate from Get so list views don't drag history along.
func (s *documentService) GetWithHistory(ctx context.Context, documentID int) (*Document, []DocumentHistory, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	history, err := fetchHistory(ctx, s.pool, documentID)
	if err != nil {
		return nil, nil, err
	}
	return doc, history, nil
}

func (s *documentService) List(ctx context.Context, docType DocumentType, status *DocumentStatus) ([]Document, error) {
	if !docType.Valid() {
		return nil, newValidationError("type", fmt.Sprintf("unknown document type %q", docType))
	}

	query := "SELECT" + documentColumns + " FROM documents WHERE doc_type = $1"
	args := []any{string(docType)}
	if status != nil {
		query += " AND status = $2"
		args = append(args, string(*status))
	}
	query += " ORDER BY doc_date DESC, created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range docs {
		items, err := fetchItems(ctx, s.pool, docs[i].ID)
		if err != nil {
			return nil, err
		}
		docs[i].Items = items
		docs[i].Totals = ComputeTotals(items, docs[i].TaxRate)
	}
	return docs, nil
}

func (s *documentService) Delete(ctx context.Context, documentID int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", documentID)
	if err != nil {
		return fmt.Errorf("delete document %d: %w", documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// insertItems writes the item set with contiguous 1-based numbering and
// returns the persisted items.
func insertItems(ctx context.Context, tx pgx.Tx, documentID int, inputs []ItemInput) ([]DocumentItem, error) {
	items := make([]DocumentItem, 0, len(inputs))
	for i, input := range inputs {
		item := DocumentItem{
			DocumentID:  documentID,
			ItemNumber:  i + 1,
			Description: input.Description,
			Unit:        input.Unit,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO document_items (document_id, item_number, description, unit, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			item.DocumentID, item.ItemNumber, item.Description, item.Unit, item.Quantity, item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("insert item %d: %w", item.ItemNumber, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// storeAmountInWords recomputes and persists the invoice's legal wording.
// A rendering failure degrades to the plain numeric fallback; it never fails
// the save.
func storeAmountInWords(ctx context.Context, tx pgx.Tx, documentID int, items []DocumentItem, taxRate decimal.Decimal, currency string) error {
	totals := ComputeTotals(items, taxRate)
	words, err := AmountInWords(totals.Total, currency)
	if err != nil {
		words = NumericFallback(totals.Total, currency)
	}
	if _, err := tx.Exec(ctx,
		"UPDATE documents SET amount_in_words = $1 WHERE id = $2",
		words, documentID,
	); err != nil {
		return fmt.Errorf("store amount in words for document %d: %w", documentID, err)
	}
	return nil
}

// fetchItems returns a document's items ordered by item number.
func fetchItems(ctx context.Context, pool *pgxpool.Pool, documentID int) ([]DocumentItem, error) {
	rows, err := pool.Query(ctx, `
		SELECT document_id, item_number, description, unit, quantity, unit_price
		FROM document_items
		WHERE document_id = $1
		ORDER BY item_number`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch items for document %d: %w", documentID, err)
	}
	defer rows.Close()

	var items []DocumentItem
	for rows.Next() {
		var item DocumentItem
		if err := rows.Scan(&item.DocumentID, &item.ItemNumber, &item.Description,
			&item.Unit, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// scanDocument reads one documents row in documentColumns order.
func scanDocument(row pgx.Row) (*Document, error) {
	var doc Document
	var docType, status string
	err := row.Scan(
		&doc.ID, &docType, &doc.Reference, &doc.Date, &doc.Currency, &doc.TaxRate,
		&doc.Customer.Name, &doc.Customer.Location, &doc.Customer.Phone,
		&doc.WorkDelivery, &doc.PaymentTerms, &doc.CustomerPORef, &doc.AmountInWords,
		&status, &doc.ConvertedToInvoiceID,
		&doc.ApprovedBy, &doc.ApprovedAt, &doc.RejectedBy, &doc.RejectedAt,
		&doc.Notes, &doc.FooterText, &doc.CreatedBy, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Type = DocumentType(docType)
	doc.Status = DocumentStatus(status)
	return &doc, nil
}
