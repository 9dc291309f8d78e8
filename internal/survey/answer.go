package survey

import "encoding/json"

// RawAnswer is one answer record as produced by the language model.
// All payload fields are optional; the extractor is asked for every key
// but the model frequently omits or nulls the irrelevant ones.
//
// The question identifier is accepted under either "pregunta_id" or the
// legacy "id" key; ResolveID normalizes to the canonical field.
type RawAnswer struct {
	PreguntaID  string       `json:"pregunta_id"`
	AliasID     string       `json:"id,omitempty"`
	Tipo        QuestionType `json:"tipo_pregunta_id"`
	Texto       string       `json:"texto"`
	Numero      *float64     `json:"numero"`
	OpcionID    string       `json:"opcion_id"`
	OpcionesIDs []string     `json:"opciones_ids"`
}

// ResolveID returns the question id, preferring the canonical field over
// the legacy alias. Empty when neither is set.
func (r RawAnswer) ResolveID() string {
	if r.PreguntaID != "" {
		return r.PreguntaID
	}
	return r.AliasID
}

// ExtractionResult is the strict JSON shape the language model must return.
type ExtractionResult struct {
	RespuestasPreguntas []RawAnswer `json:"respuestas_preguntas"`
}

// ParseExtraction decodes the language model's response body. Any shape
// violation (including a non-numeric "numero") is a hard failure; the
// caller treats it as malformed output, not retried.
func ParseExtraction(body []byte) (*ExtractionResult, error) {
	var res ExtractionResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// NormalizedAnswer is a RawAnswer after sanitization: at most one payload
// field is semantically active per the question's declared type.
type NormalizedAnswer struct {
	PreguntaID  string
	Tipo        QuestionType
	Texto       string
	Numero      *float64
	OpcionID    string
	OpcionesIDs []string
}

// BackendRow is one flattened record in the shape the survey backend
// accepts. Numero is a pointer so that a provided zero survives while an
// absent value is omitted.
type BackendRow struct {
	PreguntaID string   `json:"pregunta_id"`
	Texto      string   `json:"texto,omitempty"`
	Numero     *float64 `json:"numero,omitempty"`
	OpcionID   string   `json:"opcion_id,omitempty"`
}

// SubmissionPayload is the request body for the backend answers endpoint.
type SubmissionPayload struct {
	RespuestasPreguntas []BackendRow `json:"respuestas_preguntas"`
}
