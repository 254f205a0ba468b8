package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a document lookup matches no row.
var ErrNotFound = errors.New("document not found")

// ValidationError reports a field-level conflict: a type-exclusive field on
// the wrong document type, an attempted type change, an out-of-range rate,
// or a malformed line item.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InvalidTransitionError reports a status transition the workflow does not
// permit, including re-approving, re-rejecting, leaving a terminal status,
// an unrecognized target, or a privilege violation.
type InvalidTransitionError struct {
	From   DocumentStatus
	To     DocumentStatus
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s: %s", e.From, e.To, e.Reason)
}

// AlreadyConvertedError is returned when a quotation that already has an
// invoice is converted a second time. It names the existing invoice.
type AlreadyConvertedError struct {
	QuotationReference string
	InvoiceReference   string
}

func (e *AlreadyConvertedError) Error() string {
	return fmt.Sprintf("quotation %s has already been converted to invoice %s",
		e.QuotationReference, e.InvoiceReference)
}

// ReferenceGenerationError wraps a failure to allocate the next reference in
// a (type, year, month) bucket.
type ReferenceGenerationError struct {
	Bucket string
	Err    error
}

func (e *ReferenceGenerationError) Error() string {
	return fmt.Sprintf("reference generation failed for bucket %s: %v", e.Bucket, e.Err)
}

func (e *ReferenceGenerationError) Unwrap() error { return e.Err }

// NumericOverflowError is returned when an amount exceeds the scale table of
// the words renderer (one trillion currency units and above).
type NumericOverflowError struct {
	Amount decimal.Decimal
}

func (e *NumericOverflowError) Error() string {
	return fmt.Sprintf("amount %s exceeds the supported words scale (max Billion)", e.Amount.String())
}
