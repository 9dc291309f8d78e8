package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/canal5/stt-relay/internal/metrics"
	"github.com/canal5/stt-relay/internal/survey"
)

// Stage sentinels for mapping pipeline failures to HTTP responses.
var (
	ErrTranscription = errors.New("transcription failed")
	ErrExtraction    = errors.New("extraction returned malformed output")
)

// TemplateFetcher retrieves the question template for one delivery.
type TemplateFetcher interface {
	FetchTemplate(ctx context.Context, entregaID string) (*survey.Template, error)
}

// Transcriber turns uploaded audio into a plain-text transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// AnswerExtractor maps a transcript onto a question template.
type AnswerExtractor interface {
	Extract(ctx context.Context, transcript string, tpl *survey.Template) (*survey.ExtractionResult, error)
}

// Submitter posts the flattened answer payload to the backend.
type Submitter interface {
	SubmitAnswers(ctx context.Context, entregaID string, payload survey.SubmissionPayload) (json.RawMessage, error)
}

// Result is the response for one processed upload. BackendResponse holds
// either the backend's raw reply or, when submission failed, the error
// plus the payload that was attempted.
type Result struct {
	EntregaID        string                   `json:"entrega_id"`
	Transcripcion    string                   `json:"transcripcion"`
	PayloadEnviado   survey.SubmissionPayload `json:"payload_enviado"`
	RespuestaBackend any                      `json:"respuesta_backend"`
}

// SubmissionError is the shape embedded in the response body when the
// final backend POST fails.
type SubmissionError struct {
	Error          string                   `json:"error"`
	PayloadEnviado survey.SubmissionPayload `json:"payload_enviado"`
}

// Pipeline runs the sequential relay: fetch template → transcribe →
// extract → sanitize → build payload → submit. No retries; every failure
// before submission aborts, submission failure is captured in the result.
type Pipeline struct {
	templates TemplateFetcher
	stt       Transcriber
	extractor AnswerExtractor
	submitter Submitter
	log       zerolog.Logger
}

// New wires the pipeline's collaborators.
func New(templates TemplateFetcher, stt Transcriber, extractor AnswerExtractor, submitter Submitter, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		templates: templates,
		stt:       stt,
		extractor: extractor,
		submitter: submitter,
		log:       log.With().Str("component", "pipeline").Logger(),
	}
}

// Run processes one upload for the given delivery id.
func (p *Pipeline) Run(ctx context.Context, entregaID string, audio []byte, filename string) (*Result, error) {
	log := p.log.With().Str("entrega_id", entregaID).Logger()

	tpl, err := p.templates.FetchTemplate(ctx, entregaID)
	if err != nil {
		return nil, fmt.Errorf("fetch template: %w", err)
	}

	transcript, err := p.stt.Transcribe(ctx, audio, filename)
	if err != nil {
		metrics.TranscriptionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	metrics.TranscriptionsTotal.WithLabelValues("ok").Inc()
	log.Info().Int("chars", len(transcript)).Msg("transcript ready")

	extracted, err := p.extractor.Extract(ctx, transcript, tpl)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	metrics.ExtractionsTotal.WithLabelValues("ok").Inc()

	normalized, diags := survey.Sanitize(extracted.RespuestasPreguntas, tpl)
	for _, d := range diags {
		metrics.AnswersSanitizedTotal.WithLabelValues(d.Reason).Inc()
		log.Debug().Str("pregunta_id", d.PreguntaID).Str("reason", d.Reason).Msg("answer sanitized")
	}

	payload := survey.BuildPayload(normalized)

	result := &Result{
		EntregaID:      entregaID,
		Transcripcion:  transcript,
		PayloadEnviado: payload,
	}

	// Best-effort notify: a failed submission never blocks the caller's
	// response, which still carries the transcript and payload.
	reply, err := p.submitter.SubmitAnswers(ctx, entregaID, payload)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		log.Warn().Err(err).Msg("backend submission failed")
		result.RespuestaBackend = SubmissionError{Error: err.Error(), PayloadEnviado: payload}
		return result, nil
	}
	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	result.RespuestaBackend = reply

	log.Info().Int("filas", len(payload.RespuestasPreguntas)).Msg("upload processed")
	return result, nil
}
