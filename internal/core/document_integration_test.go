package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"invoice-manager/internal/core"
)

func TestDocumentService_CreateQuotation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	doc := mustCreate(t, svcs.docs, quotationInput())

	if !strings.HasPrefix(doc.Reference, "QT-") || !strings.HasSuffix(doc.Reference, "-001") {
		t.Errorf("reference = %s, want QT-YY-MM-001", doc.Reference)
	}
	if doc.Status != core.StatusDraft {
		t.Errorf("status = %s, want draft", doc.Status)
	}
	if doc.Currency != "MRU" {
		t.Errorf("currency = %s, want default MRU", doc.Currency)
	}
	if len(doc.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(doc.Items))
	}
	for i, item := range doc.Items {
		if item.ItemNumber != i+1 {
			t.Errorf("item %d numbered %d", i, item.ItemNumber)
		}
	}

	// 3*1000 + 1*850 = 3850; 16% tax = 616.
	if !doc.Totals.Subtotal.Equal(decimal.RequireFromString("3850.00")) {
		t.Errorf("subtotal = %s, want 3850.00", doc.Totals.Subtotal)
	}
	if !doc.Totals.Total.Equal(decimal.RequireFromString("4466.00")) {
		t.Errorf("total = %s, want 4466.00", doc.Totals.Total)
	}

	// Quotations carry no amount in words; that is an invoice artifact.
	if doc.AmountInWords != "" {
		t.Errorf("quotation should not carry amount in words, got %q", doc.AmountInWords)
	}

	_, history, err := svcs.docs.GetWithHistory(context.Background(), doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Action != core.ActionCreated {
		t.Errorf("expected a single created entry, got %+v", history)
	}
}

func TestDocumentService_CreateInvoiceStoresAmountInWords(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	in := invoiceInput()
	in.TaxRate = decimal.Zero
	doc := mustCreate(t, svcs.docs, in)

	want := "Three Thousand Eight Hundred Fifty MRU (3850 MRU) excluding VAT"
	if doc.AmountInWords != want {
		t.Errorf("amount in words = %q, want %q", doc.AmountInWords, want)
	}
}

func TestDocumentService_CreateValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*core.NewDocument)
	}{
		{"no items", func(in *core.NewDocument) { in.Items = nil }},
		{"missing customer", func(in *core.NewDocument) { in.Customer.Name = "" }},
		{"missing actor", func(in *core.NewDocument) { in.Actor = core.Actor{} }},
		{"negative tax rate", func(in *core.NewDocument) { in.TaxRate = decimal.RequireFromString("-1") }},
		{"tax rate above 100", func(in *core.NewDocument) { in.TaxRate = decimal.RequireFromString("101") }},
		{"unknown unit", func(in *core.NewDocument) { in.Items[0].Unit = "Dozen" }},
		{"zero quantity", func(in *core.NewDocument) { in.Items[0].Quantity = 0 }},
		{"negative price", func(in *core.NewDocument) { in.Items[0].UnitPrice = decimal.RequireFromString("-5") }},
		{"quotation with PO ref", func(in *core.NewDocument) { in.CustomerPORef = "PO-1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := quotationInput()
			tt.mutate(&in)
			_, err := svcs.docs.Create(ctx, in)
			var invalid *core.ValidationError
			if !errors.As(err, &invalid) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	t.Run("invoice with quotation terms", func(t *testing.T) {
		in := invoiceInput()
		in.WorkDelivery = "next week"
		_, err := svcs.docs.Create(ctx, in)
		var invalid *core.ValidationError
		if !errors.As(err, &invalid) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}

func TestDocumentService_UpdateReplacesItems(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()
	doc := mustCreate(t, svcs.docs, quotationInput())

	updated, err := svcs.docs.Update(ctx, doc.ID, core.DocumentUpdate{
		TaxRate:      decimal.Zero,
		Customer:     core.CustomerSnapshot{Name: "SNIM", Location: "Zouerate"},
		WorkDelivery: "One month",
		Items: []core.ItemInput{
			{Description: "Drilling", Unit: "Hour", Quantity: 8, UnitPrice: decimal.RequireFromString("250.00")},
		},
	}, testActor)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(updated.Items) != 1 {
		t.Fatalf("items = %d, want 1 (full replacement)", len(updated.Items))
	}
	if updated.Items[0].ItemNumber != 1 {
		t.Errorf("item numbering restarts at 1, got %d", updated.Items[0].ItemNumber)
	}
	if updated.Customer.Location != "Zouerate" {
		t.Errorf("customer location = %s", updated.Customer.Location)
	}
	if !updated.Totals.Total.Equal(decimal.RequireFromString("2000.00")) {
		t.Errorf("total = %s, want 2000.00", updated.Totals.Total)
	}
	if updated.Reference != doc.Reference {
		t.Errorf("reference changed on update: %s -> %s", doc.Reference, updated.Reference)
	}

	_, history, err := svcs.docs.GetWithHistory(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[0].Action != core.ActionUpdated {
		t.Errorf("expected updated entry on top, got %+v", history)
	}
}

func TestDocumentService_UpdateAppliesCreationDefaults(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()

	in := quotationInput()
	in.Currency = "EUR"
	in.Date = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	doc := mustCreate(t, svcs.docs, in)

	// An update is a full replacement: unset currency and date fall back to
	// the creation defaults rather than keeping the stored values.
	updated, err := svcs.docs.Update(ctx, doc.ID, core.DocumentUpdate{
		TaxRate:      decimal.RequireFromString("16"),
		Customer:     in.Customer,
		WorkDelivery: in.WorkDelivery,
		PaymentTerms: in.PaymentTerms,
		Items: []core.ItemInput{
			{Description: "Site survey", Unit: "Day", Quantity: 3, UnitPrice: decimal.RequireFromString("1000.00")},
		},
	}, testActor)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Currency != "MRU" {
		t.Errorf("currency = %s, want MRU (creation default)", updated.Currency)
	}
	if updated.Date.Before(time.Now().AddDate(0, 0, -1)) {
		t.Errorf("date = %s, want today (creation default)", updated.Date)
	}
}

func TestDocumentService_UpdateRejectsTypeChange(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	doc := mustCreate(t, svcs.docs, quotationInput())

	upd := core.DocumentUpdate{
		Type:     core.Invoice,
		Customer: core.CustomerSnapshot{Name: "SNIM"},
		Items:    quotationInput().Items,
	}
	_, err := svcs.docs.Update(context.Background(), doc.ID, upd, testActor)
	var invalid *core.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError on type change, got %v", err)
	}
}

func TestDocumentService_UpdateBlockedAfterApproval(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()
	doc := mustCreate(t, svcs.docs, quotationInput())

	if err := svcs.states.Approve(ctx, doc.ID, elevatedActor); err != nil {
		t.Fatalf("approve: %v", err)
	}

	upd := core.DocumentUpdate{
		Customer: core.CustomerSnapshot{Name: "SNIM"},
		Items:    quotationInput().Items,
	}
	if _, err := svcs.docs.Update(ctx, doc.ID, upd, testActor); err == nil {
		t.Error("expected approved document to reject edits from a regular actor")
	}

	// Elevated actors may still fix an approved document.
	if _, err := svcs.docs.Update(ctx, doc.ID, upd, elevatedActor); err != nil {
		t.Errorf("elevated update should pass: %v", err)
	}
}

func TestDocumentService_GetByReference(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()
	doc := mustCreate(t, svcs.docs, quotationInput())

	found, err := svcs.docs.GetByReference(ctx, doc.Reference)
	if err != nil {
		t.Fatal(err)
	}
	if found.ID != doc.ID {
		t.Errorf("found id %d, want %d", found.ID, doc.ID)
	}

	if _, err := svcs.docs.GetByReference(ctx, "QT-00-00-999"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDocumentService_List(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()

	q1 := mustCreate(t, svcs.docs, quotationInput())
	mustCreate(t, svcs.docs, quotationInput())
	mustCreate(t, svcs.docs, invoiceInput())

	if err := svcs.states.Submit(ctx, q1.ID, testActor); err != nil {
		t.Fatal(err)
	}

	quotations, err := svcs.docs.List(ctx, core.Quotation, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(quotations) != 2 {
		t.Errorf("quotations = %d, want 2", len(quotations))
	}

	pending := core.StatusPending
	filtered, err := svcs.docs.List(ctx, core.Quotation, &pending)
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].ID != q1.ID {
		t.Errorf("pending filter returned %+v", filtered)
	}

	invoices, err := svcs.docs.List(ctx, core.Invoice, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(invoices) != 1 {
		t.Errorf("invoices = %d, want 1", len(invoices))
	}
	if len(invoices[0].Items) != 2 {
		t.Errorf("listed documents should carry their items, got %d", len(invoices[0].Items))
	}
}

func TestDocumentService_Delete(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svcs := newTestServices(pool)
	ctx := context.Background()
	doc := mustCreate(t, svcs.docs, quotationInput())

	if err := svcs.docs.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svcs.docs.Get(ctx, doc.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svcs.docs.Delete(ctx, doc.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}

	// Items and history go with the document.
	var orphans int
	if err := pool.QueryRow(ctx,
		"SELECT count(*) FROM document_items WHERE document_id = $1", doc.ID).Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Errorf("expected no orphaned items, got %d", orphans)
	}
}
