package survey

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseExtraction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		body := `{"respuestas_preguntas":[
			{"pregunta_id":"q1","tipo_pregunta_id":1,"texto":"hola","numero":null,"opcion_id":"","opciones_ids":[]},
			{"id":"q2","tipo_pregunta_id":2,"numero":0}
		]}`
		res, err := ParseExtraction([]byte(body))
		if err != nil {
			t.Fatalf("ParseExtraction: %v", err)
		}
		if len(res.RespuestasPreguntas) != 2 {
			t.Fatalf("answers = %d, want 2", len(res.RespuestasPreguntas))
		}
		if res.RespuestasPreguntas[0].Texto != "hola" {
			t.Errorf("Texto = %q, want hola", res.RespuestasPreguntas[0].Texto)
		}
		if res.RespuestasPreguntas[0].Numero != nil {
			t.Errorf("null numero = %v, want nil", res.RespuestasPreguntas[0].Numero)
		}
		second := res.RespuestasPreguntas[1]
		if second.ResolveID() != "q2" {
			t.Errorf("ResolveID = %q, want q2", second.ResolveID())
		}
		if second.Numero == nil || *second.Numero != 0 {
			t.Errorf("Numero = %v, want 0", second.Numero)
		}
	})

	t.Run("not json", func(t *testing.T) {
		if _, err := ParseExtraction([]byte("lo siento, no puedo")); err == nil {
			t.Error("expected error for non-JSON body")
		}
	})

	t.Run("numero as string is malformed", func(t *testing.T) {
		body := `{"respuestas_preguntas":[{"pregunta_id":"q2","tipo_pregunta_id":2,"numero":"tres"}]}`
		if _, err := ParseExtraction([]byte(body)); err == nil {
			t.Error("expected error for non-numeric numero")
		}
	})

	t.Run("missing key yields empty list", func(t *testing.T) {
		res, err := ParseExtraction([]byte(`{}`))
		if err != nil {
			t.Fatalf("ParseExtraction: %v", err)
		}
		if len(res.RespuestasPreguntas) != 0 {
			t.Errorf("answers = %d, want 0", len(res.RespuestasPreguntas))
		}
	})
}

func TestResolveID(t *testing.T) {
	tests := []struct {
		name string
		raw  RawAnswer
		want string
	}{
		{"canonical only", RawAnswer{PreguntaID: "a"}, "a"},
		{"alias only", RawAnswer{AliasID: "b"}, "b"},
		{"canonical wins", RawAnswer{PreguntaID: "a", AliasID: "b"}, "a"},
		{"neither", RawAnswer{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.raw.ResolveID(); got != tt.want {
				t.Errorf("ResolveID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuestionByID(t *testing.T) {
	tpl := testTemplate()

	q, ok := tpl.QuestionByID("q3")
	if !ok {
		t.Fatal("q3 not found")
	}
	if q.Tipo != TypeSingleChoice {
		t.Errorf("Tipo = %d, want %d", q.Tipo, TypeSingleChoice)
	}

	if _, ok := tpl.QuestionByID("nope"); ok {
		t.Error("unexpected match for unknown id")
	}
}

func TestOptionIDs(t *testing.T) {
	tpl := testTemplate()
	q, _ := tpl.QuestionByID("q4")

	set := q.OptionIDs()
	for _, id := range []string{"aaa", "bbb", "ccc"} {
		if !set[id] {
			t.Errorf("OptionIDs missing %q", id)
		}
	}
	if set["zzz"] {
		t.Error("OptionIDs contains undeclared id")
	}

	// A question without options declares nothing valid.
	free, _ := tpl.QuestionByID("q1")
	if ids := free.OptionIDs(); len(ids) != 0 {
		t.Errorf("OptionIDs = %v, want empty", ids)
	}
}

func TestBackendRowMarshalOmitsEmpty(t *testing.T) {
	row := BackendRow{PreguntaID: "q1", OpcionID: "opt"}
	b, err := json.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "texto") || strings.Contains(string(b), "numero") {
		t.Errorf("marshal = %s, want texto/numero omitted", b)
	}
}
