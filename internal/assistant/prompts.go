package assistant

const (
	advisorPrompt = "Asesor experto en rentabilidad para conductores Uber/Didi México. " +
		"Consejos concisos y accionables en español mexicano informal. " +
		"Todo basado en datos reales. Contexto: "

	// ExtractionPrompt asks the model to read fare and distance off a
	// screenshot of a ride offer.
	ExtractionPrompt = "Analiza esta captura de app de transporte. " +
		"Extrae solo: tarifa total MXN, km al destino, minutos al destino. " +
		`Responde SOLO JSON: {"fare":0,"dest_km":0,"dest_min":0}`

	// Greeting opens a new conversation.
	Greeting = "¡Hola! Soy tu asesor de rentabilidad.\n\n" +
		"Analizo tus datos reales para darte consejos concretos:\n" +
		"• ¿En qué horas gano más?\n" +
		"• ¿Qué plataforma me conviene más?\n" +
		"• ¿Cómo reduzco mis costos?\n" +
		"• ¿Qué rutas son más rentables?"

	// ConnectionErrorReply is shown when the model could not be reached.
	ConnectionErrorReply = "Error de conexión."

	// EmptyReply is shown when the model answered without any text.
	EmptyReply = "Error al responder."

	// UnreadableImageNotice is shown when a screenshot yielded nothing usable.
	UnreadableImageNotice = "No pude leer la imagen. Intenta manualmente."
)

// SystemPrompt wraps a context summary from BuildContext.
func SystemPrompt(summary string) string {
	return advisorPrompt + summary
}
