package openai

import (
	"fmt"
)

const summarySystemPrompt = `Eres un asistente clínico que resume notas médicas en español. Devuelve ÚNICAMENTE el resumen en texto plano, sin encabezados ni viñetas: 2-3 frases cortas que recojan motivo de consulta, hallazgos principales y plan. No inventes datos que no estén en la nota, no incluyas identificadores del paciente y no des consejo médico nuevo.`

func buildSummaryUserPrompt(cleanedContent string) string {
	return fmt.Sprintf("Nota clínica:\n%s\n", cleanedContent)
}
