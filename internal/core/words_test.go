package core_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"invoice-manager/internal/core"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"zero", "0", "Zero MRU"},
		{"fraction truncates to zero", "0.99", "Zero MRU"},
		{"single digit", "5", "Five MRU (5 MRU) excluding VAT"},
		{"teen", "17", "Seventeen MRU (17 MRU) excluding VAT"},
		{"tens", "40", "Forty MRU (40 MRU) excluding VAT"},
		{"hundreds", "305", "Three Hundred Five MRU (305 MRU) excluding VAT"},
		{"typical invoice total", "3850", "Three Thousand Eight Hundred Fifty MRU (3850 MRU) excluding VAT"},
		{"fraction dropped", "3850.75", "Three Thousand Eight Hundred Fifty MRU (3850 MRU) excluding VAT"},
		{"zero middle group skipped", "1000003", "One Million Three MRU (1000003 MRU) excluding VAT"},
		{"full groups", "1234567", "One Million Two Hundred Thirty Four Thousand Five Hundred Sixty Seven MRU (1234567 MRU) excluding VAT"},
		{"billions", "2000000000", "Two Billion MRU (2000000000 MRU) excluding VAT"},
		{"just below limit", "999999999999", "Nine Hundred Ninety Nine Billion Nine Hundred Ninety Nine Million Nine Hundred Ninety Nine Thousand Nine Hundred Ninety Nine MRU (999999999999 MRU) excluding VAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.AmountInWords(decimal.RequireFromString(tt.amount), "MRU")
			if err != nil {
				t.Fatalf("AmountInWords(%s): %v", tt.amount, err)
			}
			if got != tt.want {
				t.Errorf("AmountInWords(%s) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestAmountInWords_Overflow(t *testing.T) {
	_, err := core.AmountInWords(decimal.New(1, 12), "MRU")
	var overflow *core.NumericOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected NumericOverflowError for one trillion, got %v", err)
	}

	// One less than the limit must still render.
	if _, err := core.AmountInWords(decimal.RequireFromString("999999999999"), "MRU"); err != nil {
		t.Errorf("999999999999 should render: %v", err)
	}
}

func TestAmountInWords_Negative(t *testing.T) {
	_, err := core.AmountInWords(decimal.RequireFromString("-1"), "MRU")
	var invalid *core.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError for negative amount, got %v", err)
	}
}

func TestAmountInWords_OtherCurrency(t *testing.T) {
	got, err := core.AmountInWords(decimal.RequireFromString("100"), "EUR")
	if err != nil {
		t.Fatal(err)
	}
	if got != "One Hundred EUR (100 EUR) excluding VAT" {
		t.Errorf("got %q", got)
	}
}

func TestNumericFallback(t *testing.T) {
	got := core.NumericFallback(decimal.RequireFromString("3850.75"), "MRU")
	if got != "3850 MRU excluding VAT" {
		t.Errorf("NumericFallback = %q", got)
	}
}
