package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"invoice-manager/internal/core"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE document_history, document_items, documents, reference_sequences CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	return pool
}

type testServices struct {
	refs       *core.ReferenceGenerator
	docs       core.DocumentService
	states     *core.StateMachine
	conversion *core.ConversionEngine
}

func newTestServices(pool *pgxpool.Pool) testServices {
	refs := core.NewReferenceGenerator(pool)
	history := core.NewHistoryRecorder()
	docs := core.NewDocumentService(pool, refs, history)
	return testServices{
		refs:       refs,
		docs:       docs,
		states:     core.NewStateMachine(pool, history),
		conversion: core.NewConversionEngine(pool, refs, docs, history),
	}
}

var testActor = core.Actor{Name: "test-user"}

var elevatedActor = core.Actor{Name: "test-admin", Elevated: true}

func quotationInput() core.NewDocument {
	return core.NewDocument{
		Type:    core.Quotation,
		TaxRate: decimal.RequireFromString("16"),
		Customer: core.CustomerSnapshot{
			Name:     "SNIM",
			Location: "Nouadhibou",
			Phone:    "+222 45 00 00 00",
		},
		WorkDelivery: "Two weeks after order",
		PaymentTerms: "30 days net",
		Items: []core.ItemInput{
			{Description: "Site survey", Unit: "Day", Quantity: 3, UnitPrice: decimal.RequireFromString("1000.00")},
			{Description: "Survey report", Unit: "Unit", Quantity: 1, UnitPrice: decimal.RequireFromString("850.00")},
		},
		Actor: testActor,
	}
}

func invoiceInput() core.NewDocument {
	in := quotationInput()
	in.Type = core.Invoice
	in.WorkDelivery = ""
	in.PaymentTerms = ""
	in.CustomerPORef = "PO-4711"
	return in
}

func mustCreate(t *testing.T, docs core.DocumentService, input core.NewDocument) *core.Document {
	t.Helper()
	doc, err := docs.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}
	return doc
}
