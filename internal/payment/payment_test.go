package payment

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"banortesmart/backend/internal/consumption"
)

func TestNewQuoteModes(t *testing.T) {
	cases := []struct {
		name         string
		mode         Mode
		total        float64
		custom       float64
		amount       float64
		installments int
	}{
		{name: "full", mode: ModeFull, total: 505, amount: 505, installments: 1},
		{name: "parts rounds to whole pesos", mode: ModeParts, total: 505, amount: 168, installments: 3},
		{name: "parts rounds up to nearest", mode: ModeParts, total: 209.5, amount: 70, installments: 3},
		{name: "defer", mode: ModeDefer, total: 505, amount: 0, installments: 1},
		{name: "custom at minimum", mode: ModeCustom, total: 505, custom: 50, amount: 50, installments: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := NewQuote(tc.mode, tc.total, tc.custom)
			if err != nil {
				t.Fatalf("quote: %v", err)
			}
			if quote.Amount != tc.amount || quote.Installments != tc.installments {
				t.Fatalf("unexpected quote: %+v", quote)
			}
		})
	}
}

func TestNewQuoteRejectsCustomBelowMinimum(t *testing.T) {
	for _, amount := range []float64{0, 49.99, -10} {
		if _, err := NewQuote(ModeCustom, 505, amount); !errors.Is(err, ErrBelowMinimum) {
			t.Fatalf("amount %v: expected ErrBelowMinimum, got %v", amount, err)
		}
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":        ModeFull,
		"FULL":    ModeFull,
		"parts":   ModeParts,
		"debt":    ModeDefer,
		" defer ": ModeDefer,
		"custom":  ModeCustom,
	}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseMode("crypto"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
	if _, err := NewQuote(Mode("crypto"), 10, 0); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode from NewQuote, got %v", err)
	}
}

func TestProcessIssuesReceipt(t *testing.T) {
	quote, _ := NewQuote(ModeParts, 505, 0)
	week := consumption.WeekRecord{DateRange: "14 Oct - 20 Oct", Total: 505}

	receipt := NewProcessor().Process(consumption.Electricity, week, quote)
	if _, err := uuid.Parse(receipt.Confirmation); err != nil {
		t.Fatalf("confirmation must be a uuid: %v", err)
	}
	if receipt.Message != "Pago procesado: $168.00 MXN" {
		t.Fatalf("unexpected message %q", receipt.Message)
	}
	if receipt.Week != "14 Oct - 20 Oct" || receipt.ProcessedAt.IsZero() {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	other := NewProcessor().Process(consumption.Electricity, week, quote)
	if other.Confirmation == receipt.Confirmation {
		t.Fatalf("confirmations must be unique")
	}
}

func TestProcessCombinedMessage(t *testing.T) {
	receipt := NewProcessor().ProcessCombined("14 Oct - 20 Oct", 505, 209, 714)
	want := "Pago procesado de ambos servicios:\n\nElectricidad: $505.00 MXN\nAgua: $209.00 MXN\n\nTotal: $714.00 MXN"
	if receipt.Message != want {
		t.Fatalf("unexpected message %q", receipt.Message)
	}
}
