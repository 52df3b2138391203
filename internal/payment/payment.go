// Package payment quotes and simulates bill payments. Nothing is charged.
package payment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"banortesmart/backend/internal/consumption"
	"banortesmart/backend/internal/logging"
)

type Mode string

const (
	ModeFull   Mode = "full"
	ModeParts  Mode = "parts"
	ModeDefer  Mode = "defer"
	ModeCustom Mode = "custom"
)

const (
	Installments        = 3
	MinimumCustomAmount = 50
)

var (
	ErrBelowMinimum = errors.New("El pago mínimo es de $50 MXN")
	ErrUnknownMode  = errors.New("unknown payment mode")
)

// ParseMode accepts "debt" as an alias of defer.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "full":
		return ModeFull, nil
	case "parts":
		return ModeParts, nil
	case "defer", "debt":
		return ModeDefer, nil
	case "custom":
		return ModeCustom, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
}

type Quote struct {
	Mode         Mode    `json:"mode"`
	Total        float64 `json:"total"`
	Amount       float64 `json:"amount"`
	Installments int     `json:"installments"`
	Label        string  `json:"label"`
}

// NewQuote computes what is charged now for a week total.
func NewQuote(mode Mode, total, customAmount float64) (Quote, error) {
	quote := Quote{Mode: mode, Total: total, Installments: 1}
	switch mode {
	case ModeFull:
		quote.Amount = total
		quote.Label = "Pago total"
	case ModeParts:
		quote.Amount = decimal.NewFromFloat(total).Div(decimal.NewFromInt(Installments)).Round(0).InexactFloat64()
		quote.Installments = Installments
		quote.Label = fmt.Sprintf("Pago 1 de %d", Installments)
	case ModeDefer:
		quote.Amount = 0
		quote.Label = "Pago diferido"
	case ModeCustom:
		if customAmount < MinimumCustomAmount {
			return Quote{}, ErrBelowMinimum
		}
		quote.Amount = customAmount
		quote.Label = "Monto personalizado"
	default:
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return quote, nil
}

type Receipt struct {
	Confirmation string              `json:"confirmation"`
	Utility      consumption.Utility `json:"utility"`
	Week         string              `json:"week"`
	Quote        Quote               `json:"quote"`
	Message      string              `json:"message"`
	ProcessedAt  time.Time           `json:"processed_at"`
}

type CombinedReceipt struct {
	Confirmation string    `json:"confirmation"`
	Week         string    `json:"week"`
	Electricity  float64   `json:"electricity"`
	Water        float64   `json:"water"`
	Total        float64   `json:"total"`
	Message      string    `json:"message"`
	ProcessedAt  time.Time `json:"processed_at"`
}

type Processor struct {
	now func() time.Time
}

func NewProcessor() *Processor {
	return &Processor{now: time.Now}
}

// Process simulates charging a quote for one utility week.
func (p *Processor) Process(utility consumption.Utility, week consumption.WeekRecord, quote Quote) Receipt {
	receipt := Receipt{
		Confirmation: uuid.NewString(),
		Utility:      utility,
		Week:         week.DateRange,
		Quote:        quote,
		Message:      fmt.Sprintf("Pago procesado: $%s MXN", consumption.FormatAmount(quote.Amount)),
		ProcessedAt:  p.now().UTC(),
	}
	logging.Infow("payment processed",
		"confirmation", receipt.Confirmation,
		"utility", utility,
		"mode", quote.Mode,
		"amount", quote.Amount,
	)
	return receipt
}

// ProcessCombined simulates paying both utilities' totals for a week.
func (p *Processor) ProcessCombined(week string, electricity, water, total float64) CombinedReceipt {
	receipt := CombinedReceipt{
		Confirmation: uuid.NewString(),
		Week:         week,
		Electricity:  electricity,
		Water:        water,
		Total:        total,
		Message: fmt.Sprintf(
			"Pago procesado de ambos servicios:\n\nElectricidad: $%s MXN\nAgua: $%s MXN\n\nTotal: $%s MXN",
			consumption.FormatAmount(electricity), consumption.FormatAmount(water), consumption.FormatAmount(total),
		),
		ProcessedAt: p.now().UTC(),
	}
	logging.Infow("combined payment processed",
		"confirmation", receipt.Confirmation,
		"total", total,
	)
	return receipt
}
