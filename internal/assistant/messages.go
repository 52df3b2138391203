// Package assistant answers consumption questions for the "Maya" chat,
// first through a generative provider and otherwise through a fixed,
// ordered rule table.
package assistant

const PersonaName = "Maya"

const Greeting = "¡Hola! Soy Maya, tu asistente de Banorte. Puedo ayudarte a analizar tu consumo de electricidad y agua, y darte recomendaciones para ahorrar en ambos servicios. ¿En qué puedo ayudarte?"

const FallbackReply = "Puedo ayudarte a analizar tu consumo de electricidad y agua. Pregúntame sobre tus gastos, picos de consumo, ahorros o recomendaciones para reducir tu consumo en ambos servicios."

// ErrorReply closes a turn whose answer could not be produced at all.
const ErrorReply = "Lo siento, hubo un error al procesar tu solicitud. Por favor, intenta de nuevo."

const RecommendationsReply = "Te recomiendo:\n\n" +
	"Electricidad:\n" +
	"1) Evita usar electrodomésticos de alto consumo en horas pico\n" +
	"2) Apaga luces y equipos que no uses\n\n" +
	"Agua:\n" +
	"1) Revisa que no haya fugas\n" +
	"2) Cierra la llave mientras te enjabonas\n" +
	"3) Usa la lavadora con cargas completas"

// QuickQuestions returns the suggested one-tap questions in display order.
func QuickQuestions() []string {
	return []string{
		"¿Qué día gasté más en electricidad?",
		"¿Cuánto ahorré esta semana?",
		"¿Cuánto gasté en agua?",
		"Dame recomendaciones para ahorrar",
		"¿Cuál es mi consumo total?",
		"¿Cuándo tengo picos de consumo?",
	}
}
