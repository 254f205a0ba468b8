package repl

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"invoice-manager/internal/app"
	"invoice-manager/internal/core"
)

// handleNewDocument runs an interactive document creation session.
func handleNewDocument(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, docType core.DocumentType, actor core.Actor) {
	fmt.Printf("Creating a new %s.\n", strings.ToLower(docType.Label()))

	customer := askLine(reader, "Customer name: ")
	if customer == "" {
		fmt.Println("Customer name is required. Creation cancelled.")
		return
	}
	location := askLine(reader, "Customer location (optional): ")
	phone := askLine(reader, "Customer phone (optional): ")

	taxRate := decimal.Zero
	if raw := askLine(reader, "Tax rate % [0]: "); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			fmt.Println("Invalid tax rate. Creation cancelled.")
			return
		}
		taxRate = parsed
	}

	var workDelivery, paymentTerms, poRef string
	if docType == core.Quotation {
		workDelivery = askLine(reader, "Work delivery terms (optional): ")
		paymentTerms = askLine(reader, "Payment terms (optional): ")
	} else {
		poRef = askLine(reader, "Customer PO reference (optional): ")
	}

	fmt.Println("Enter line items. Type 'done' when finished, 'cancel' to abort.")
	fmt.Println("Format per line: <quantity> <unit> <unit-price> <description>")
	fmt.Println("  Example: 3 Day 1500.00 Site survey")
	fmt.Println("  Example: 10 PC 85.50 Patch cable Cat6")

	var items []app.ItemInput
	lineNum := 1
	for {
		fmt.Printf("  Item %d: ", lineNum)
		raw, _ := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if strings.ToLower(raw) == "cancel" {
			fmt.Println("Creation cancelled.")
			return
		}
		if strings.ToLower(raw) == "done" {
			break
		}
		if raw == "" {
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) < 4 {
			fmt.Println("  Invalid format. Use: <quantity> <unit> <unit-price> <description>")
			continue
		}

		qty, err := strconv.Atoi(parts[0])
		if err != nil || qty < 1 {
			fmt.Println("  Invalid quantity.")
			continue
		}
		price, err := decimal.NewFromString(parts[2])
		if err != nil || price.IsNegative() {
			fmt.Println("  Invalid unit price.")
			continue
		}

		items = append(items, app.ItemInput{
			Description: strings.Join(parts[3:], " "),
			Unit:        parts[1],
			Quantity:    qty,
			UnitPrice:   price,
		})
		lineNum++
	}

	if len(items) == 0 {
		fmt.Println("No items entered. Document not created.")
		return
	}

	notes := askLine(reader, "Notes (optional): ")

	result, err := svc.CreateDocument(ctx, app.CreateDocumentRequest{
		Type:             docType,
		TaxRate:          taxRate,
		CustomerName:     customer,
		CustomerLocation: location,
		CustomerPhone:    phone,
		WorkDelivery:     workDelivery,
		PaymentTerms:     paymentTerms,
		CustomerPORef:    poRef,
		Notes:            notes,
		Items:            items,
		Actor:            actor,
	})
	if err != nil {
		fmt.Printf("Error creating document: %v\n", err)
		return
	}

	fmt.Printf("\n%s created (status: %s)\n", result.Document.Reference, result.Document.Status)
	printDocumentDetail(result.Document)
	fmt.Printf("Use '/submit %s' to send it for approval.\n", result.Document.Reference)
}

func askLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	raw, _ := reader.ReadString('\n')
	return strings.TrimSpace(raw)
}
