package assistant

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"banortesmart/backend/internal/consumption"
)

const questionPrefix = "\n\nPregunta del usuario: "

// BuildSystemPrompt renders both utilities' summaries into the
// instruction block sent ahead of every question.
func BuildSystemPrompt(electricity, water consumption.Summary) string {
	var b strings.Builder
	b.WriteString("Eres Maya, la asistente virtual de Banorte para ayudar con el análisis de consumo de electricidad y agua. Responde en español de manera amigable y profesional.\n\n")
	b.WriteString("Aquí está el resumen de datos del usuario:\n\n")
	writeUtilitySection(&b, "ELECTRICIDAD", electricity)
	b.WriteString("\n")
	writeUtilitySection(&b, "AGUA", water)
	b.WriteString("\nTOTAL COMBINADO:\n")
	fmt.Fprintf(&b, "- Costo total esta semana: $%s MXN\n",
		consumption.FormatNumber(sum(electricity.CurrentWeek.Total, water.CurrentWeek.Total)))
	fmt.Fprintf(&b, "- Costo total semana pasada: $%s MXN\n",
		consumption.FormatNumber(sum(electricity.LastWeek.Total, water.LastWeek.Total)))
	b.WriteString("\nResponde de manera concisa (máximo 3-4 oraciones) y da recomendaciones prácticas cuando sea relevante.")
	return b.String()
}

// BuildPrompt appends the user question to the system prompt.
func BuildPrompt(electricity, water consumption.Summary, question string) string {
	return BuildSystemPrompt(electricity, water) + questionPrefix + question
}

func writeUtilitySection(b *strings.Builder, title string, s consumption.Summary) {
	fmt.Fprintf(b, "%s:\n", title)
	fmt.Fprintf(b, "- Semana actual: %s, Total: $%s MXN, Promedio: $%s MXN/día\n",
		s.CurrentWeek.DateRange, consumption.FormatNumber(s.CurrentWeek.Total), consumption.FormatAmount(s.CurrentWeek.Average))
	fmt.Fprintf(b, "- Semana pasada: %s, Total: $%s MXN, Promedio: $%s MXN/día\n",
		s.LastWeek.DateRange, consumption.FormatNumber(s.LastWeek.Total), consumption.FormatAmount(s.LastWeek.Average))

	label := "Mayor consumo"
	if s.Savings.Saved {
		label = "Ahorro"
	}
	fmt.Fprintf(b, "- %s: $%s MXN (%s%%)\n",
		label, consumption.FormatAmount(s.Savings.Amount), decimal.NewFromFloat(s.Savings.Percentage).StringFixed(1))
	fmt.Fprintf(b, "- Día con mayor consumo: %s, %s, $%s MXN\n",
		s.HighestCostDay.Day, s.HighestCostDay.Date, consumption.FormatNumber(s.HighestCostDay.Cost))
	fmt.Fprintf(b, "- Promedio diario: $%s MXN\n", consumption.FormatAmount(s.AverageDailyCost))
	fmt.Fprintf(b, "- Picos detectados: %d\n", len(s.Spikes))
}
