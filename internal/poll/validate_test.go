package poll

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRatingAnswerBounds(t *testing.T) {
	q := Question{ID: uuid.New(), Prompt: "Nota do atendimento", Required: true, Kind: Rating{Scale: 5}}
	questions := []Question{q}

	cases := []struct {
		answer string
		valid  bool
	}{
		{"1", true},
		{"5", true},
		{"6", false},
		{"0", false},
		{"cinco", false},
	}
	for _, tc := range cases {
		err := ValidateAnswers(questions, map[uuid.UUID]string{q.ID: tc.answer})
		if tc.valid && err != nil {
			t.Errorf("resposta %q deveria ser válida: %v", tc.answer, err)
		}
		if !tc.valid && !errors.Is(err, ErrInvalidAnswer) {
			t.Errorf("resposta %q deveria falhar com ErrInvalidAnswer, veio %v", tc.answer, err)
		}
	}
}

func TestMultipleChoiceAnswerMembership(t *testing.T) {
	q := Question{ID: uuid.New(), Prompt: "Bairro prioritário", Required: true, Kind: MultipleChoice{Options: []string{"A", "B"}}}
	questions := []Question{q}

	if err := ValidateAnswers(questions, map[uuid.UUID]string{q.ID: "A"}); err != nil {
		t.Fatalf("opção A deveria ser válida: %v", err)
	}
	err := ValidateAnswers(questions, map[uuid.UUID]string{q.ID: "C"})
	if !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("opção C deveria falhar com ErrInvalidAnswer, veio %v", err)
	}
}

func TestRequiredQuestionMustBeAnswered(t *testing.T) {
	required := Question{ID: uuid.New(), Prompt: "Concorda?", Required: true, Kind: YesNo{}}
	optional := Question{ID: uuid.New(), Prompt: "Comentário", Required: false, Kind: Text{MaxLength: 200}}
	questions := []Question{required, optional}

	err := ValidateAnswers(questions, map[uuid.UUID]string{optional.ID: "tudo certo"})
	if !errors.Is(err, ErrMissingAnswer) {
		t.Fatalf("esperado ErrMissingAnswer, veio %v", err)
	}

	if err := ValidateAnswers(questions, map[uuid.UUID]string{required.ID: "yes"}); err != nil {
		t.Fatalf("opcional sem resposta deveria passar: %v", err)
	}
}

func TestAnswersRejectUnknownQuestion(t *testing.T) {
	q := Question{ID: uuid.New(), Prompt: "Concorda?", Required: false, Kind: YesNo{}}
	err := ValidateAnswers([]Question{q}, map[uuid.UUID]string{uuid.New(): "yes"})
	if !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("esperado ErrUnknownQuestion, veio %v", err)
	}
}

func TestValidateQuestionsSpecs(t *testing.T) {
	cases := []struct {
		name  string
		kind  Kind
		valid bool
	}{
		{"múltipla escolha com uma opção", MultipleChoice{Options: []string{"A"}}, false},
		{"múltipla escolha ok", MultipleChoice{Options: []string{"A", "B"}}, true},
		{"texto sem limite", Text{}, false},
		{"texto limite acima de 500", Text{MaxLength: 501}, false},
		{"texto ok", Text{MaxLength: 500}, true},
		{"nota escala 1", Rating{Scale: 1}, false},
		{"nota escala 11", Rating{Scale: 11}, false},
		{"nota ok", Rating{Scale: 10}, true},
		{"sim ou não", YesNo{}, true},
	}
	for _, tc := range cases {
		q := Question{ID: uuid.New(), Prompt: tc.name, Kind: tc.kind}
		err := ValidateQuestions([]Question{q})
		if tc.valid && err != nil {
			t.Errorf("%s: deveria ser válida: %v", tc.name, err)
		}
		if !tc.valid && !errors.Is(err, ErrInvalidQuestion) {
			t.Errorf("%s: deveria falhar com ErrInvalidQuestion, veio %v", tc.name, err)
		}
	}
}

func TestQuestionJSONRoundTrip(t *testing.T) {
	original := []Question{
		{ID: uuid.New(), Prompt: "Bairro", Required: true, Kind: MultipleChoice{Options: []string{"Centro", "Alto"}}},
		{ID: uuid.New(), Prompt: "Comentário", Kind: Text{MaxLength: 300}},
		{ID: uuid.New(), Prompt: "Nota", Required: true, Kind: Rating{Scale: 5}},
		{ID: uuid.New(), Prompt: "Concorda?", Kind: YesNo{}},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded []Question
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("perdeu perguntas no round trip: %d != %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i].Kind.Type() != original[i].Kind.Type() {
			t.Errorf("pergunta %d mudou de tipo: %s != %s", i, decoded[i].Kind.Type(), original[i].Kind.Type())
		}
	}
	if mc, ok := decoded[0].Kind.(MultipleChoice); !ok || len(mc.Options) != 2 {
		t.Fatal("opções de múltipla escolha não sobreviveram ao round trip")
	}

	var bad Question
	if err := json.Unmarshal([]byte(`{"id":"`+uuid.NewString()+`","prompt":"x","type":"ranking"}`), &bad); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("tipo desconhecido deveria falhar com ErrInvalidQuestion, veio %v", err)
	}
}
