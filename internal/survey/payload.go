package survey

// BuildPayload flattens normalized answers into the row shape the backend
// expects. Pure and total.
//
// A multi-choice answer with N kept option ids expands into N rows, each
// a copy of the base record with opcion_id set — the backend models
// multi-choice as repeated single-choice rows. Row order follows answer
// order; fan-out order follows the sanitized option-id order.
func BuildPayload(answers []NormalizedAnswer) SubmissionPayload {
	rows := make([]BackendRow, 0, len(answers))

	for _, a := range answers {
		base := BackendRow{PreguntaID: a.PreguntaID}
		if a.Texto != "" {
			base.Texto = a.Texto
		}
		if a.Numero != nil {
			base.Numero = a.Numero
		}
		if a.OpcionID != "" {
			base.OpcionID = a.OpcionID
		}

		if len(a.OpcionesIDs) > 0 {
			for _, oid := range a.OpcionesIDs {
				row := base
				row.OpcionID = oid
				rows = append(rows, row)
			}
			continue
		}
		rows = append(rows, base)
	}

	return SubmissionPayload{RespuestasPreguntas: rows}
}
