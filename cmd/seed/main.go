// seed is a one-shot tool to load demo documents into an empty database.
// Run it after migrating to get a realistic quotation/invoice pair to poke
// at. It refuses to touch a database that already holds documents.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"invoice-manager/internal/core"
	"invoice-manager/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	var existing int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM documents").Scan(&existing); err != nil {
		log.Fatalf("Failed to inspect documents: %v", err)
	}
	if existing > 0 {
		log.Fatalf("Database already holds %d documents; refusing to seed", existing)
	}

	refs := core.NewReferenceGenerator(pool)
	history := core.NewHistoryRecorder()
	docs := core.NewDocumentService(pool, refs, history)
	conversion := core.NewConversionEngine(pool, refs, docs, history)

	seeder := core.Actor{Name: "seed", Elevated: true}

	log.Println("Creating demo quotation...")
	quotation, err := docs.Create(ctx, core.NewDocument{
		Type:    core.Quotation,
		TaxRate: decimal.NewFromInt(16),
		Customer: core.CustomerSnapshot{
			Name:     "SNIM",
			Location: "Nouadhibou",
			Phone:    "+222 45 74 10 10",
		},
		WorkDelivery: "Three weeks after order confirmation",
		PaymentTerms: "50% on order, 50% on delivery",
		Items: []core.ItemInput{
			{Description: "Network cabling, building A", Unit: "Meter", Quantity: 450, UnitPrice: decimal.RequireFromString("85.00")},
			{Description: "Rack installation", Unit: "Day", Quantity: 2, UnitPrice: decimal.RequireFromString("12000.00")},
			{Description: "Switch 48p", Unit: "PC", Quantity: 4, UnitPrice: decimal.RequireFromString("38500.00")},
		},
		Actor: seeder,
	})
	if err != nil {
		log.Fatalf("Failed to create quotation: %v", err)
	}
	log.Printf("Created %s", quotation.Reference)

	log.Println("Converting it to an invoice...")
	invoice, err := conversion.ConvertToInvoice(ctx, quotation.ID, seeder)
	if err != nil {
		log.Fatalf("Failed to convert: %v", err)
	}
	log.Printf("Created %s (total %s %s)", invoice.Reference, invoice.Totals.Total.StringFixed(2), invoice.Currency)

	log.Println("Creating a standalone draft invoice...")
	draft, err := docs.Create(ctx, core.NewDocument{
		Type:    core.Invoice,
		TaxRate: decimal.Zero,
		Customer: core.CustomerSnapshot{
			Name:     "Port Autonome de Nouakchott",
			Location: "Nouakchott",
		},
		CustomerPORef: "PO-2025-117",
		Items: []core.ItemInput{
			{Description: "Annual maintenance contract", Unit: "Month", Quantity: 12, UnitPrice: decimal.RequireFromString("25000.00")},
		},
		Actor: seeder,
	})
	if err != nil {
		log.Fatalf("Failed to create invoice: %v", err)
	}
	log.Printf("Created %s", draft.Reference)

	log.Println("Seed complete.")
}
