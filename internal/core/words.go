package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	onesWords = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teenWords = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
		"Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tensWords  = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
	scaleWords = []string{"", "Thousand", "Million", "Billion"}
)

// wordsLimit is the first amount the scale table cannot express: one group
// beyond "Billion", i.e. one trillion currency units.
var wordsLimit = decimal.New(1, 12)

// AmountInWords renders a total as English words for legal printing, e.g.
//
//	"Three Thousand Eight Hundred Fifty MRU (3850 MRU) excluding VAT"
//
// The fractional part of the amount is dropped. A zero amount renders as
// "Zero <currency>" with no parenthetical suffix. Amounts of one trillion or
// more return a NumericOverflowError instead of an incomplete rendering.
func AmountInWords(total decimal.Decimal, currency string) (string, error) {
	truncated := total.Truncate(0)
	if truncated.IsNegative() {
		return "", newValidationError("amount", "cannot render a negative amount in words")
	}
	if truncated.Cmp(wordsLimit) >= 0 {
		return "", &NumericOverflowError{Amount: truncated}
	}

	amount := truncated.IntPart()
	if amount == 0 {
		return "Zero " + currency, nil
	}

	// Split decimal digits into groups of three, least significant first.
	var groups []int
	for n := amount; n > 0; n /= 1000 {
		groups = append(groups, int(n%1000))
	}

	parts := make([]string, 0, len(groups))
	for i := len(groups) - 1; i >= 0; i-- {
		if groups[i] == 0 {
			// An all-zero group contributes nothing, not even its scale word.
			continue
		}
		part := belowThousand(groups[i])
		if scaleWords[i] != "" {
			part += " " + scaleWords[i]
		}
		parts = append(parts, part)
	}

	return fmt.Sprintf("%s %s (%d %s) excluding VAT",
		strings.Join(parts, " "), currency, amount, currency), nil
}

// NumericFallback is the plain rendering persisted when AmountInWords fails.
// A rendering failure never blocks saving the document.
func NumericFallback(total decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s excluding VAT", total.Truncate(0).String(), currency)
}

// belowThousand converts 1–999 to words.
func belowThousand(n int) string {
	switch {
	case n < 10:
		return onesWords[n]
	case n < 20:
		return teenWords[n-10]
	case n < 100:
		word := tensWords[n/10]
		if n%10 != 0 {
			word += " " + onesWords[n%10]
		}
		return word
	default:
		word := onesWords[n/100] + " Hundred"
		if n%100 != 0 {
			word += " " + belowThousand(n%100)
		}
		return word
	}
}
