package poll

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateQuestions confere as restrições de cada variante e a unicidade
// dos identificadores das perguntas.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: pesquisa sem perguntas", ErrInvalidQuestion)
	}
	seen := make(map[uuid.UUID]struct{}, len(questions))
	for _, q := range questions {
		if q.ID == uuid.Nil {
			return fmt.Errorf("%w: pergunta sem identificador", ErrInvalidQuestion)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: identificador repetido %s", ErrInvalidQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.Prompt == "" {
			return fmt.Errorf("%w: pergunta sem enunciado", ErrInvalidQuestion)
		}
		if q.Kind == nil {
			return fmt.Errorf("%w: pergunta sem tipo", ErrInvalidQuestion)
		}
		if err := q.Kind.ValidateSpec(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAnswers cruza as respostas com o conjunto de perguntas:
// toda pergunta obrigatória precisa de resposta válida e nenhuma resposta
// pode referenciar pergunta fora da pesquisa.
func ValidateAnswers(questions []Question, answers map[uuid.UUID]string) error {
	byID := make(map[uuid.UUID]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	for id := range answers {
		if _, ok := byID[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
		}
	}

	for _, q := range questions {
		answer, answered := answers[q.ID]
		if !answered || answer == "" {
			if q.Required {
				return fmt.Errorf("%w: %s", ErrMissingAnswer, q.ID)
			}
			continue
		}
		if err := q.Kind.ValidateAnswer(answer); err != nil {
			return fmt.Errorf("pergunta %s: %w", q.ID, err)
		}
	}
	return nil
}
