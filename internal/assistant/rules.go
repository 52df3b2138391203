package assistant

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"banortesmart/backend/internal/consumption"
)

// Input is what every rule sees: the normalised question and both
// utilities' summaries.
type Input struct {
	Question    string
	Electricity consumption.Summary
	Water       consumption.Summary
}

// Rule pairs a predicate over the lower-cased question with a reply
// template. Rules are evaluated in slice order and the first match wins.
type Rule struct {
	Name  string
	Match func(question string) bool
	Reply func(in Input) string
}

type RuleReply struct {
	Text string
	Rule string
}

const FallbackRuleName = "fallback"

// ErrorRuleName marks the apology recorded when a turn fails outright.
const ErrorRuleName = "error"

var (
	spendTerms          = []string{"gast", "consum"}
	waterSpendTerms     = []string{"gast", "consum", "cuánto"}
	electricityTerms    = []string{"electricidad", "luz"}
	combinedTotalTerms  = []string{"total", "ambos", "todo"}
	highestDayTerms     = []string{"día", "más"}
	savingsTerm         = "ahorr"
	spikesTerm          = "pico"
	recommendationsTerm = "recomend"
	averageTerm         = "promedio"
	waterTerm           = "agua"
)

// DefaultRules returns the ordered rule table. The order is the priority.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "water_highest_day",
			Match: func(q string) bool {
				return strings.Contains(q, waterTerm) && containsAll(q, highestDayTerms...)
			},
			Reply: func(in Input) string {
				day := in.Water.HighestCostDay
				return fmt.Sprintf(
					"En agua, el día que más gastaste fue el %s con $%s MXN (%s).",
					day.Day, consumption.FormatNumber(day.Cost), day.Date,
				)
			},
		},
		{
			Name: "water_spend",
			Match: func(q string) bool {
				return strings.Contains(q, waterTerm) && containsAny(q, waterSpendTerms...)
			},
			Reply: func(in Input) string {
				s := in.Water
				savings := fmt.Sprintf("Gastaste $%s MXN más que la semana pasada.", consumption.FormatAmount(s.Savings.Amount))
				if s.Savings.Saved {
					savings = fmt.Sprintf("¡Ahorraste $%s MXN comparado con la semana pasada!", consumption.FormatAmount(s.Savings.Amount))
				}
				return fmt.Sprintf(
					"Esta semana en agua gastaste $%s MXN, con un promedio de $%s MXN por día. %s",
					consumption.FormatNumber(s.CurrentWeek.Total), consumption.FormatAmount(s.CurrentWeek.Average), savings,
				)
			},
		},
		{
			Name: "electricity_highest_day",
			Match: func(q string) bool {
				return containsAny(q, electricityTerms...) && containsAll(q, highestDayTerms...)
			},
			Reply: func(in Input) string {
				day := in.Electricity.HighestCostDay
				return fmt.Sprintf(
					"En electricidad, el día que más gastaste fue el %s con $%s MXN (%s).",
					day.Day, consumption.FormatNumber(day.Cost), day.Date,
				)
			},
		},
		{
			Name: "electricity_spend",
			Match: func(q string) bool {
				return containsAny(q, electricityTerms...) && containsAny(q, spendTerms...)
			},
			Reply: func(in Input) string {
				s := in.Electricity
				savings := fmt.Sprintf("Gastaste $%s MXN más que la semana pasada.", consumption.FormatAmount(s.Savings.Amount))
				if s.Savings.Saved {
					savings = fmt.Sprintf("¡Ahorraste $%s MXN!", consumption.FormatAmount(s.Savings.Amount))
				}
				return fmt.Sprintf(
					"Esta semana en electricidad gastaste $%s MXN, con un promedio de $%s MXN por día. %s",
					consumption.FormatNumber(s.CurrentWeek.Total), consumption.FormatAmount(s.CurrentWeek.Average), savings,
				)
			},
		},
		{
			Name:  "combined_total",
			Match: func(q string) bool { return containsAny(q, combinedTotalTerms...) },
			Reply: func(in Input) string {
				current := sum(in.Electricity.CurrentWeek.Total, in.Water.CurrentWeek.Total)
				last := sum(in.Electricity.LastWeek.Total, in.Water.LastWeek.Total)
				return fmt.Sprintf(
					"Esta semana tu consumo total fue de $%s MXN (Electricidad: $%s + Agua: $%s). La semana pasada fue de $%s MXN.",
					consumption.FormatAmount(current),
					consumption.FormatNumber(in.Electricity.CurrentWeek.Total),
					consumption.FormatNumber(in.Water.CurrentWeek.Total),
					consumption.FormatAmount(last),
				)
			},
		},
		{
			Name:  "highest_day",
			Match: func(q string) bool { return containsAll(q, highestDayTerms...) },
			Reply: func(in Input) string {
				return fmt.Sprintf(
					"Tus días con mayor consumo fueron:\n- Electricidad: %s con $%s MXN\n- Agua: %s con $%s MXN",
					in.Electricity.HighestCostDay.Day, consumption.FormatNumber(in.Electricity.HighestCostDay.Cost),
					in.Water.HighestCostDay.Day, consumption.FormatNumber(in.Water.HighestCostDay.Cost),
				)
			},
		},
		{
			Name:  "savings",
			Match: func(q string) bool { return strings.Contains(q, savingsTerm) },
			Reply: savingsReply,
		},
		{
			Name:  "spikes",
			Match: func(q string) bool { return strings.Contains(q, spikesTerm) },
			Reply: func(in Input) string {
				return fmt.Sprintf(
					"Detecté %d picos en electricidad y %d picos en agua. Te recomiendo revisar qué actividades realizaste en esos días para reducir el consumo.",
					len(in.Electricity.Spikes), len(in.Water.Spikes),
				)
			},
		},
		{
			Name:  "recommendations",
			Match: func(q string) bool { return strings.Contains(q, recommendationsTerm) },
			Reply: func(Input) string { return RecommendationsReply },
		},
		{
			Name:  "average",
			Match: func(q string) bool { return strings.Contains(q, averageTerm) },
			Reply: func(in Input) string {
				electricity := roundedAmount(in.Electricity.AverageDailyCost)
				water := roundedAmount(in.Water.AverageDailyCost)
				return fmt.Sprintf(
					"Tus promedios diarios son: Electricidad $%s MXN y Agua $%s MXN. Total: $%s MXN/día.",
					electricity.StringFixed(2), water.StringFixed(2), electricity.Add(water).StringFixed(2),
				)
			},
		},
	}
}

func savingsReply(in Input) string {
	electricity := in.Electricity.Savings
	water := in.Water.Savings
	electricityAmount := consumption.FormatAmount(electricity.Amount)
	waterAmount := consumption.FormatAmount(water.Amount)

	switch {
	case electricity.Saved && water.Saved:
		return fmt.Sprintf(
			"¡Excelente! Ahorraste en ambos servicios: $%s MXN en electricidad y $%s MXN en agua. ¡Total ahorrado: $%s MXN!",
			electricityAmount, waterAmount, consumption.FormatAmount(sum(electricity.Amount, water.Amount)),
		)
	case electricity.Saved:
		return fmt.Sprintf(
			"Ahorraste $%s MXN en electricidad, pero aumentaste $%s MXN en agua.",
			electricityAmount, waterAmount,
		)
	case water.Saved:
		return fmt.Sprintf(
			"Ahorraste $%s MXN en agua, pero aumentaste $%s MXN en electricidad.",
			waterAmount, electricityAmount,
		)
	default:
		return fmt.Sprintf(
			"Esta semana aumentó tu consumo: $%s MXN en electricidad y $%s MXN en agua.",
			electricityAmount, waterAmount,
		)
	}
}

// Responder selects the first matching rule for a question.
type Responder struct {
	rules []Rule
}

func NewResponder(rules []Rule) *Responder {
	return &Responder{rules: rules}
}

func DefaultResponder() *Responder {
	return NewResponder(DefaultRules())
}

// Respond never fails; a question no rule matches gets FallbackReply.
func (r *Responder) Respond(question string, electricity, water consumption.Summary) RuleReply {
	normalized := strings.ToLower(strings.TrimSpace(question))
	in := Input{Question: normalized, Electricity: electricity, Water: water}
	for _, rule := range r.rules {
		if rule.Match(normalized) {
			return RuleReply{Text: rule.Reply(in), Rule: rule.Name}
		}
	}
	return RuleReply{Text: FallbackReply, Rule: FallbackRuleName}
}

// RuleNames lists the rule names in priority order, fallback last.
func (r *Responder) RuleNames() []string {
	names := make([]string, 0, len(r.rules)+1)
	for _, rule := range r.rules {
		names = append(names, rule.Name)
	}
	return append(names, FallbackRuleName)
}

func containsAll(s string, terms ...string) bool {
	for _, term := range terms {
		if !strings.Contains(s, term) {
			return false
		}
	}
	return true
}

func containsAny(s string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func sum(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

func roundedAmount(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value).Round(2)
}
