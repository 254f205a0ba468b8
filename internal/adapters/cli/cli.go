// Package cli is the cobra front end over ApplicationService. It parses
// flags, calls the service and prints results; it contains no business
// logic.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"invoice-manager/internal/app"
	"invoice-manager/internal/core"
)

// NewRootCmd builds the command tree. Every subcommand takes --actor and
// --elevated so the acting identity reaches the core.
func NewRootCmd(svc app.ApplicationService) *cobra.Command {
	root := &cobra.Command{
		Use:           "docs",
		Short:         "Manage quotations and invoices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCreateCmd(svc),
		newUpdateCmd(svc),
		newShowCmd(svc),
		newListCmd(svc),
		newDeleteCmd(svc),
		newTransitionCmd("submit", "Submit a draft document for approval", svc.Submit),
		newTransitionCmd("approve", "Approve a document", svc.Approve),
		newTransitionCmd("reject", "Reject a document", svc.Reject),
		newTransitionCmd("pay", "Mark an approved document as paid", svc.MarkPaid),
		newTransitionCmd("cancel", "Cancel a document", svc.Cancel),
		newSetStatusCmd(svc),
		newConvertCmd(svc),
	)
	return root
}

func actorFlags(cmd *cobra.Command) {
	cmd.Flags().String("actor", "", "acting user name [REQUIRED]")
	cmd.Flags().Bool("elevated", false, "actor has elevated privileges")
	_ = cmd.MarkFlagRequired("actor")
}

func actorFromFlags(cmd *cobra.Command) core.Actor {
	name, _ := cmd.Flags().GetString("actor")
	elevated, _ := cmd.Flags().GetBool("elevated")
	return core.Actor{Name: name, Elevated: elevated}
}

// parseItems turns repeated --item "description|unit|quantity|unit price"
// flags into line-item inputs.
func parseItems(raws []string) ([]app.ItemInput, error) {
	items := make([]app.ItemInput, 0, len(raws))
	for _, raw := range raws {
		parts := strings.Split(raw, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("item %q: want description|unit|quantity|unit price", raw)
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("item %q: bad quantity: %w", raw, err)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(parts[3]))
		if err != nil {
			return nil, fmt.Errorf("item %q: bad unit price: %w", raw, err)
		}
		items = append(items, app.ItemInput{
			Description: strings.TrimSpace(parts[0]),
			Unit:        strings.TrimSpace(parts[1]),
			Quantity:    quantity,
			UnitPrice:   price,
		})
	}
	return items, nil
}

func newCreateCmd(svc app.ApplicationService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [quotation|invoice]",
		Short: "Create a new document with line items",
		Example: `  docs create quotation --actor amadou --customer "SNIM" --location Nouadhibou \
      --item "Site survey|Day|3|1500.00" --item "Report|Unit|1|4000.00"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docType := core.DocumentType(args[0])

			rawItems, _ := cmd.Flags().GetStringArray("item")
			items, err := parseItems(rawItems)
			if err != nil {
				return err
			}

			taxRateStr, _ := cmd.Flags().GetString("tax-rate")
			taxRate := decimal.Zero
			if taxRateStr != "" {
				if taxRate, err = decimal.NewFromString(taxRateStr); err != nil {
					return fmt.Errorf("bad tax rate: %w", err)
				}
			}

			var date time.Time
			if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
				if date, err = time.Parse("2006-01-02", dateStr); err != nil {
					return fmt.Errorf("bad date: %w", err)
				}
			}

			customer, _ := cmd.Flags().GetString("customer")
			location, _ := cmd.Flags().GetString("location")
			phone, _ := cmd.Flags().GetString("phone")
			currency, _ := cmd.Flags().GetString("currency")
			workDelivery, _ := cmd.Flags().GetString("work-delivery")
			paymentTerms, _ := cmd.Flags().GetString("payment-terms")
			poRef, _ := cmd.Flags().GetString("po-ref")
			notes, _ := cmd.Flags().GetString("notes")

			result, err := svc.CreateDocument(cmd.Context(), app.CreateDocumentRequest{
				Type:             docType,
				Date:             date,
				Currency:         currency,
				TaxRate:          taxRate,
				CustomerName:     customer,
				CustomerLocation: location,
				CustomerPhone:    phone,
				WorkDelivery:     workDelivery,
				PaymentTerms:     paymentTerms,
				CustomerPORef:    poRef,
				Notes:            notes,
				Items:            items,
				Actor:            actorFromFlags(cmd),
			})
			if err != nil {
				return err
			}
			printDocument(cmd, result)
			return nil
		},
	}

	actorFlags(cmd)
	cmd.Flags().String("customer", "", "customer name [REQUIRED]")
	cmd.Flags().String("location", "", "customer location")
	cmd.Flags().String("phone", "", "customer phone")
	cmd.Flags().String("currency", "", "currency code (default MRU)")
	cmd.Flags().String("tax-rate", "", "tax rate percent (default 0)")
	cmd.Flags().String("date", "", "document date YYYY-MM-DD (default today)")
	cmd.Flags().String("work-delivery", "", "work delivery terms (quotations)")
	cmd.Flags().String("payment-terms", "", "payment terms (quotations)")
	cmd.Flags().String("po-ref", "", "customer PO reference (invoices)")
	cmd.Flags().String("notes", "", "internal notes")
	cmd.Flags().StringArray("item", nil, `line item "description|unit|quantity|unit price" (repeatable)`)
	_ = cmd.MarkFlagRequired("customer")
	return cmd
}

func newUpdateCmd(svc app.ApplicationService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id|reference>",
		Short: "Replace an editable document's fields and items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawItems, _ := cmd.Flags().GetStringArray("item")
			items, err := parseItems(rawItems)
			if err != nil {
				return err
			}

			taxRateStr, _ := cmd.Flags().GetString("tax-rate")
			taxRate := decimal.Zero
			if taxRateStr != "" {
				if taxRate, err = decimal.NewFromString(taxRateStr); err != nil {
					return fmt.Errorf("bad tax rate: %w", err)
				}
			}

			var date time.Time
			if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
				if date, err = time.Parse("2006-01-02", dateStr); err != nil {
					return fmt.Errorf("bad date: %w", err)
				}
			}

			customer, _ := cmd.Flags().GetString("customer")
			location, _ := cmd.Flags().GetString("location")
			phone, _ := cmd.Flags().GetString("phone")
			currency, _ := cmd.Flags().GetString("currency")
			workDelivery, _ := cmd.Flags().GetString("work-delivery")
			paymentTerms, _ := cmd.Flags().GetString("payment-terms")
			poRef, _ := cmd.Flags().GetString("po-ref")
			notes, _ := cmd.Flags().GetString("notes")

			result, err := svc.UpdateDocument(cmd.Context(), app.UpdateDocumentRequest{
				Ref:              args[0],
				Date:             date,
				Currency:         currency,
				TaxRate:          taxRate,
				CustomerName:     customer,
				CustomerLocation: location,
				CustomerPhone:    phone,
				WorkDelivery:     workDelivery,
				PaymentTerms:     paymentTerms,
				CustomerPORef:    poRef,
				Notes:            notes,
				Items:            items,
				Actor:            actorFromFlags(cmd),
			})
			if err != nil {
				return err
			}
			printDocument(cmd, result)
			return nil
		},
	}

	actorFlags(cmd)
	cmd.Flags().String("customer", "", "customer name [REQUIRED]")
	cmd.Flags().String("location", "", "customer location")
	cmd.Flags().String("phone", "", "customer phone")
	cmd.Flags().String("currency", "", "currency code (default MRU)")
	cmd.Flags().String("tax-rate", "", "tax rate percent (default 0)")
	cmd.Flags().String("date", "", "document date YYYY-MM-DD (default today)")
	cmd.Flags().String("work-delivery", "", "work delivery terms (quotations)")
	cmd.Flags().String("payment-terms", "", "payment terms (quotations)")
	cmd.Flags().String("po-ref", "", "customer PO reference (invoices)")
	cmd.Flags().String("notes", "", "internal notes")
	cmd.Flags().StringArray("item", nil, `line item "description|unit|quantity|unit price" (repeatable)`)
	_ = cmd.MarkFlagRequired("customer")
	return cmd
}

func newShowCmd(svc app.ApplicationService) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|reference>",
		Short: "Show a document with items, totals and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := svc.GetDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDocument(cmd, result)
			printHistory(cmd, result.History)
			return nil
		},
	}
}

func newListCmd(svc app.ApplicationService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [quotation|invoice]",
		Short: "List documents of one type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var status *core.DocumentStatus
			if s, _ := cmd.Flags().GetString("status"); s != "" {
				st := core.DocumentStatus(s)
				status = &st
			}
			result, err := svc.ListDocuments(cmd.Context(), core.DocumentType(args[0]), status)
			if err != nil {
				return err
			}
			printDocumentList(cmd, result)
			return nil
		},
	}
	cmd.Flags().String("status", "", "filter by status")
	return cmd
}

func newDeleteCmd(svc app.ApplicationService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id|reference>",
		Short: "Delete a draft document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.DeleteDocument(cmd.Context(), args[0], actorFromFlags(cmd)); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
	actorFlags(cmd)
	return cmd
}

func newTransitionCmd(use, short string,
	op func(ctx context.Context, ref string, actor core.Actor) (*app.DocumentResult, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <id|reference>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := op(cmd.Context(), args[0], actorFromFlags(cmd))
			if err != nil {
				return err
			}
			printDocument(cmd, result)
			return nil
		},
	}
	actorFlags(cmd)
	return cmd
}

func newSetStatusCmd(svc app.ApplicationService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-status <id|reference> <status>",
		Short: "Change a document's status directly",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := svc.SetStatus(cmd.Context(), args[0], core.DocumentStatus(args[1]), actorFromFlags(cmd))
			if err != nil {
				return err
			}
			printDocument(cmd, result)
			return nil
		},
	}
	actorFlags(cmd)
	return cmd
}

func newConvertCmd(svc app.ApplicationService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <id|reference>",
		Short: "Convert a quotation into a new draft invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := svc.ConvertToInvoice(cmd.Context(), args[0], actorFromFlags(cmd))
			if err != nil {
				return err
			}
			cmd.Printf("Created invoice %s\n\n", result.Document.Reference)
			printDocument(cmd, result)
			return nil
		},
	}
	actorFlags(cmd)
	return cmd
}
