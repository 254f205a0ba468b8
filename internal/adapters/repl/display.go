package repl

import (
	"fmt"
	"strings"

	"invoice-manager/internal/app"
	"invoice-manager/internal/core"
)

func printDocumentList(result *app.DocumentListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  %sS\n", strings.ToUpper(result.Type.Label()))
	fmt.Println(strings.Repeat("=", 72))
	if len(result.Documents) == 0 {
		fmt.Println("  No documents found.")
		fmt.Println(strings.Repeat("=", 72))
		return
	}
	fmt.Printf("  %-14s %-12s %-22s %-10s %10s\n", "REFERENCE", "DATE", "CUSTOMER", "STATUS", "TOTAL")
	fmt.Println(strings.Repeat("-", 72))
	for _, doc := range result.Documents {
		fmt.Printf("  %-14s %-12s %-22s %-10s %10s\n",
			doc.Reference, doc.Date.Format("2006-01-02"),
			clip(doc.Customer.Name, 22), doc.Status, doc.Totals.Total.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 72))
}

func printDocumentDetail(doc *core.Document) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  %s %s — %s\n", strings.ToUpper(doc.Type.Label()), doc.Reference, doc.Status)
	fmt.Printf("  Date     : %s\n", doc.Date.Format("2006-01-02"))
	fmt.Printf("  Customer : %s", doc.Customer.Name)
	if doc.Customer.Location != "" {
		fmt.Printf(", %s", doc.Customer.Location)
	}
	fmt.Println()
	if doc.WorkDelivery != "" {
		fmt.Printf("  Delivery : %s\n", doc.WorkDelivery)
	}
	if doc.PaymentTerms != "" {
		fmt.Printf("  Payment  : %s\n", doc.PaymentTerms)
	}
	if doc.CustomerPORef != "" {
		fmt.Printf("  PO Ref   : %s\n", doc.CustomerPORef)
	}
	fmt.Println(strings.Repeat("-", 72))
	fmt.Printf("  %-3s %-32s %-7s %5s %9s %10s\n", "#", "DESCRIPTION", "UNIT", "QTY", "PRICE", "TOTAL")
	for _, item := range doc.Items {
		fmt.Printf("  %-3d %-32s %-7s %5d %9s %10s\n",
			item.ItemNumber, clip(item.Description, 32), item.Unit,
			item.Quantity, item.UnitPrice.StringFixed(2), item.TotalPrice().StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 72))
	fmt.Printf("  Subtotal : %s %s\n", doc.Totals.Subtotal.StringFixed(2), doc.Currency)
	fmt.Printf("  Tax %s%%  : %s %s\n", doc.TaxRate.String(), doc.Totals.TaxAmount.StringFixed(2), doc.Currency)
	fmt.Printf("  TOTAL    : %s %s\n", doc.Totals.Total.StringFixed(2), doc.Currency)
	if doc.AmountInWords != "" {
		fmt.Printf("  In words : %s\n", doc.AmountInWords)
	}
	if doc.Notes != "" {
		fmt.Printf("  Notes    : %s\n", doc.Notes)
	}
	fmt.Println(strings.Repeat("=", 72))
}

func printHistory(history []core.DocumentHistory) {
	if len(history) == 0 {
		return
	}
	fmt.Println("  HISTORY")
	for _, entry := range history {
		fmt.Printf("  %s  %-15s %-12s %s\n",
			entry.OccurredAt.Format("2006-01-02 15:04"),
			entry.Action, clip(entry.Actor, 12), entry.Details)
	}
	fmt.Println(strings.Repeat("=", 72))
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
