package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"invoice-manager/internal/app"
	"invoice-manager/internal/core"
)

const lineWidth = 72

func printDocument(cmd *cobra.Command, result *app.DocumentResult) {
	doc := result.Document

	cmd.Println()
	cmd.Println(strings.Repeat("=", lineWidth))
	cmd.Printf("  %s %s\n", strings.ToUpper(doc.Type.Label()), doc.Reference)
	cmd.Printf("  Date     : %s\n", doc.Date.Format("2006-01-02"))
	cmd.Printf("  Status   : %s\n", doc.Status)
	cmd.Printf("  Customer : %s", doc.Customer.Name)
	if doc.Customer.Location != "" {
		cmd.Printf(" — %s", doc.Customer.Location)
	}
	cmd.Println()
	if doc.Customer.Phone != "" {
		cmd.Printf("  Phone    : %s\n", doc.Customer.Phone)
	}
	if doc.WorkDelivery != "" {
		cmd.Printf("  Delivery : %s\n", doc.WorkDelivery)
	}
	if doc.PaymentTerms != "" {
		cmd.Printf("  Payment  : %s\n", doc.PaymentTerms)
	}
	if doc.CustomerPORef != "" {
		cmd.Printf("  PO Ref   : %s\n", doc.CustomerPORef)
	}
	cmd.Println(strings.Repeat("=", lineWidth))

	cmd.Printf("  %-3s %-30s %-8s %5s %10s %11s\n", "#", "DESCRIPTION", "UNIT", "QTY", "PRICE", "TOTAL")
	cmd.Println(strings.Repeat("-", lineWidth))
	for _, item := range doc.Items {
		cmd.Printf("  %-3d %-30s %-8s %5d %10s %11s\n",
			item.ItemNumber, truncate(item.Description, 30), item.Unit,
			item.Quantity, item.UnitPrice.StringFixed(2), item.TotalPrice().StringFixed(2))
	}
	cmd.Println(strings.Repeat("-", lineWidth))
	cmd.Printf("  %-50s %19s\n", "Subtotal", doc.Totals.Subtotal.StringFixed(2))
	cmd.Printf("  %-50s %19s\n", "Tax ("+doc.TaxRate.String()+"%)", doc.Totals.TaxAmount.StringFixed(2))
	cmd.Printf("  %-50s %19s\n", "Total "+doc.Currency, doc.Totals.Total.StringFixed(2))
	if doc.AmountInWords != "" {
		cmd.Printf("  In words : %s\n", doc.AmountInWords)
	}
	if doc.Notes != "" {
		cmd.Printf("  Notes    : %s\n", doc.Notes)
	}
	cmd.Println(strings.Repeat("=", lineWidth))
}

func printHistory(cmd *cobra.Command, history []core.DocumentHistory) {
	if len(history) == 0 {
		return
	}
	cmd.Println()
	cmd.Printf("  %-20s %-16s %-14s %s\n", "WHEN", "ACTION", "ACTOR", "DETAILS")
	cmd.Println(strings.Repeat("-", lineWidth))
	for _, entry := range history {
		cmd.Printf("  %-20s %-16s %-14s %s\n",
			entry.OccurredAt.Format("2006-01-02 15:04:05"),
			entry.Action, truncate(entry.Actor, 14), entry.Details)
	}
}

func printDocumentList(cmd *cobra.Command, result *app.DocumentListResult) {
	cmd.Println()
	cmd.Printf("  %-14s %-12s %-24s %-10s %14s\n", "REFERENCE", "DATE", "CUSTOMER", "STATUS", "TOTAL")
	cmd.Println(strings.Repeat("-", lineWidth))
	for _, doc := range result.Documents {
		cmd.Printf("  %-14s %-12s %-24s %-10s %14s\n",
			doc.Reference, doc.Date.Format("2006-01-02"),
			truncate(doc.Customer.Name, 24), doc.Status, doc.Totals.Total.StringFixed(2))
	}
	cmd.Printf("\n  %d %s(s)\n", len(result.Documents), result.Type)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
