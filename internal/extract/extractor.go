package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/canal5/stt-relay/internal/survey"
)

const systemPrompt = "Asistente para extraer respuestas de la transcripción."

// Extractor asks a language model to map a transcript onto a question
// template, returning structured answers.
type Extractor struct {
	client    *openai.Client
	model     string
	maxTokens int
	log       zerolog.Logger
}

// NewExtractor creates an extractor with a fixed chat model and output
// token budget.
func NewExtractor(client *openai.Client, model string, maxTokens int, log zerolog.Logger) *Extractor {
	return &Extractor{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		log:       log.With().Str("component", "extract").Logger(),
	}
}

// BuildPrompt renders the fixed instruction prompt: the rules per question
// type, the template's questions as JSON, and the transcript verbatim.
func BuildPrompt(questions []survey.Question, transcript string) (string, error) {
	qjson, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("marshal questions: %w", err)
	}

	var b strings.Builder
	b.WriteString("Eres un extractor de respuestas para encuestas capturadas en audio. ")
	b.WriteString("No te inventes respuestas; tira error si no hay nada en el audio.\n")
	b.WriteString("Devuelve SOLO JSON con la clave «respuestas_preguntas» (lista).\n")
	b.WriteString("Cada elemento DEBE tener estas claves:\n")
	b.WriteString("  pregunta_id, tipo_pregunta_id, texto, numero, opcion_id, opciones_ids\n")
	b.WriteString("Reglas:\n")
	b.WriteString(" • tipo 1 → poner la respuesta en «texto».\n")
	b.WriteString(" • tipo 2 → poner un número en «numero».\n")
	b.WriteString(" • tipo 3 → EXACTAMENTE un UUID en «opcion_id» (lista vacía).\n")
	b.WriteString(" • tipo 4 → lista «opciones_ids» con los UUID marcados.\n\n")
	b.WriteString("Plantilla de preguntas:\n")
	b.Write(qjson)
	b.WriteString("\n\nTranscripción íntegra del audio del encuestado:\n")
	b.WriteString(transcript)
	return b.String(), nil
}

// Extract sends the transcript and template to the language model and
// parses its JSON-object response into structured answers. A response
// that does not parse is a hard failure, never retried.
func (e *Extractor) Extract(ctx context.Context, transcript string, tpl *survey.Template) (*survey.ExtractionResult, error) {
	prompt, err := BuildPrompt(tpl.Preguntas, transcript)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: e.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := survey.ParseExtraction([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}

	e.log.Debug().
		Int("answers", len(result.RespuestasPreguntas)).
		Str("model", e.model).
		Msg("extraction complete")
	return result, nil
}
