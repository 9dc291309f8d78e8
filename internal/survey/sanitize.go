package survey

import "strings"

// Diagnostic records one entry the sanitizer dropped or altered. The
// sanitizer itself never fails; diagnostics exist so callers can log and
// count what was silently discarded.
type Diagnostic struct {
	PreguntaID string
	Reason     string
}

// Diagnostic reasons.
const (
	ReasonMissingID       = "missing_question_id"
	ReasonUnknownQuestion = "question_not_in_template"
	ReasonEchoedText      = "text_echoes_question"
	ReasonExtraChoices    = "extra_single_choice_ids_discarded"
	ReasonUnknownOptions  = "unknown_option_ids_dropped"
)

// Sanitize validates and normalizes raw extracted answers against the
// delivery's question template. It is a total function: invalid entries
// are dropped or neutralized, never surfaced as errors.
//
// An entry with no resolvable question id is dropped. An entry whose id
// is not in the template survives with type rules applied against a
// zero-value question, which typically clears its payload fields. An
// entry with an unrecognized type tag passes through untouched.
func Sanitize(raw []RawAnswer, tpl *Template) ([]NormalizedAnswer, []Diagnostic) {
	out := make([]NormalizedAnswer, 0, len(raw))
	var diags []Diagnostic

	for _, item := range raw {
		qid := item.ResolveID()
		if qid == "" {
			diags = append(diags, Diagnostic{Reason: ReasonMissingID})
			continue
		}

		q, known := tpl.QuestionByID(qid)
		if !known {
			diags = append(diags, Diagnostic{PreguntaID: qid, Reason: ReasonUnknownQuestion})
		}

		a := NormalizedAnswer{
			PreguntaID:  qid,
			Tipo:        item.Tipo,
			Texto:       item.Texto,
			Numero:      item.Numero,
			OpcionID:    item.OpcionID,
			OpcionesIDs: item.OpcionesIDs,
		}

		switch item.Tipo {
		case TypeFreeText:
			// The model sometimes echoes the question instead of answering.
			if a.Texto != "" && strings.EqualFold(strings.TrimSpace(a.Texto), q.Texto) {
				a.Texto = ""
				diags = append(diags, Diagnostic{PreguntaID: qid, Reason: ReasonEchoedText})
			}

		case TypeNumeric:
			if a.Numero != nil {
				a.Texto = ""
			}

		case TypeSingleChoice:
			a.Texto = ""
			if len(a.OpcionesIDs) > 0 {
				if len(a.OpcionesIDs) > 1 {
					diags = append(diags, Diagnostic{PreguntaID: qid, Reason: ReasonExtraChoices})
				}
				a.OpcionID = a.OpcionesIDs[0]
				a.OpcionesIDs = []string{}
			}

		case TypeMultiChoice:
			a.Texto = ""
			valid := q.OptionIDs()
			kept := make([]string, 0, len(a.OpcionesIDs))
			for _, oid := range a.OpcionesIDs {
				if valid[oid] {
					kept = append(kept, oid)
				}
			}
			if len(kept) != len(a.OpcionesIDs) {
				diags = append(diags, Diagnostic{PreguntaID: qid, Reason: ReasonUnknownOptions})
			}
			a.OpcionesIDs = kept
		}

		out = append(out, a)
	}

	return out, diags
}
