package survey

// QuestionType discriminates which answer field is authoritative for a
// question. Values match the backend's tipo_pregunta_id.
type QuestionType int

const (
	TypeFreeText     QuestionType = 1
	TypeNumeric      QuestionType = 2
	TypeSingleChoice QuestionType = 3
	TypeMultiChoice  QuestionType = 4
)

// Option is one selectable choice of a single- or multi-choice question.
type Option struct {
	ID    string `json:"id"`
	Texto string `json:"texto"`
}

// Question is one entry of a delivery's question template.
type Question struct {
	ID       string       `json:"id"`
	Texto    string       `json:"texto"`
	Tipo     QuestionType `json:"tipo_pregunta_id"`
	Opciones []Option     `json:"opciones,omitempty"`
}

// Template is the ordered question set fetched for one delivery.
// Immutable for the duration of a request.
type Template struct {
	Preguntas []Question `json:"preguntas"`
}

// QuestionByID returns the question with the given id and whether it exists.
func (t *Template) QuestionByID(id string) (Question, bool) {
	for _, q := range t.Preguntas {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// OptionIDs returns the set of option ids declared by the question.
func (q Question) OptionIDs() map[string]bool {
	if len(q.Opciones) == 0 {
		return nil
	}
	set := make(map[string]bool, len(q.Opciones))
	for _, o := range q.Opciones {
		set[o.ID] = true
	}
	return set
}
