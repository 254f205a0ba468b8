package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied when the caller leaves the currency blank.
const DefaultCurrency = "MRU"

// Normalize fills defaults on a NewDocument before validation.
func (in *NewDocument) Normalize() {
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
}

// Validate checks a NewDocument for field conflicts. All failures are
// ValidationErrors; the first problem found is returned.
func (in NewDocument) Validate() error {
	if !in.Type.Valid() {
		return newValidationError("type", fmt.Sprintf("unknown document type %q", in.Type))
	}
	if in.Customer.Name == "" {
		return newValidationError("customer.name", "customer name is required")
	}
	if in.Actor.Name == "" {
		return newValidationError("actor", "acting user is required")
	}
	if err := validateTaxRate(in.TaxRate); err != nil {
		return err
	}
	if err := validateExclusiveFields(in.Type, in.WorkDelivery, in.PaymentTerms, in.CustomerPORef); err != nil {
		return err
	}
	return validateItems(in.Items)
}

func validateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(oneHundred) {
		return newValidationError("tax_rate", "tax rate must be between 0 and 100")
	}
	return nil
}

// validateExclusiveFields enforces the type-exclusive field sets: quotations
// carry work delivery and payment terms, invoices carry the customer PO
// reference. The opposite set must be empty.
func validateExclusiveFields(docType DocumentType, workDelivery, paymentTerms, customerPORef string) error {
	switch docType {
	case Quotation:
		if customerPORef != "" {
			return newValidationError("customer_po_ref", "quotations cannot carry a customer PO reference")
		}
	case Invoice:
		if workDelivery != "" {
			return newValidationError("work_delivery", "invoices cannot carry work delivery terms")
		}
		if paymentTerms != "" {
			return newValidationError("payment_terms", "invoices cannot carry payment terms")
		}
	}
	return nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return newValidationError("items", "a document must have at least one line item")
	}
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if item.Description == "" {
			return newValidationError(field+".description", "description is required")
		}
		if !allowedUnits[item.Unit] {
			return newValidationError(field+".unit", fmt.Sprintf("unknown unit %q", item.Unit))
		}
		if item.Quantity < 1 {
			return newValidationError(field+".quantity", "quantity must be at least 1")
		}
		if item.UnitPrice.IsNegative() {
			return newValidationError(field+".unit_price", "unit price cannot be negative")
		}
	}
	return nil
}
