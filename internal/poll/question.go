package poll

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MultipleChoice exige ao menos duas opções distintas; a resposta deve ser
// exatamente uma das opções.
type MultipleChoice struct {
	Options []string
}

func (MultipleChoice) Type() string { return TypeMultipleChoice }

func (k MultipleChoice) ValidateSpec() error {
	if len(k.Options) < 2 {
		return fmt.Errorf("%w: múltipla escolha exige ao menos duas opções", ErrInvalidQuestion)
	}
	seen := make(map[string]struct{}, len(k.Options))
	for _, opt := range k.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: opção vazia", ErrInvalidQuestion)
		}
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: opção repetida %q", ErrInvalidQuestion, opt)
		}
		seen[opt] = struct{}{}
	}
	return nil
}

func (k MultipleChoice) ValidateAnswer(answer string) error {
	for _, opt := range k.Options {
		if answer == opt {
			return nil
		}
	}
	return fmt.Errorf("%w: %q não está entre as opções", ErrInvalidAnswer, answer)
}

// Text limita o comprimento da resposta livre a 1..500 runas.
type Text struct {
	MaxLength int
}

func (Text) Type() string { return TypeText }

func (k Text) ValidateSpec() error {
	if k.MaxLength < 1 || k.MaxLength > 500 {
		return fmt.Errorf("%w: limite de texto deve estar entre 1 e 500", ErrInvalidQuestion)
	}
	return nil
}

func (k Text) ValidateAnswer(answer string) error {
	if answer == "" {
		return fmt.Errorf("%w: texto vazio", ErrInvalidAnswer)
	}
	if utf8.RuneCountInString(answer) > k.MaxLength {
		return fmt.Errorf("%w: texto excede %d caracteres", ErrInvalidAnswer, k.MaxLength)
	}
	return nil
}

// Rating aceita notas inteiras de 1 até Scale; a escala vale de 2 a 10.
type Rating struct {
	Scale int
}

func (Rating) Type() string { return TypeRating }

func (k Rating) ValidateSpec() error {
	if k.Scale < 2 || k.Scale > 10 {
		return fmt.Errorf("%w: escala de nota deve estar entre 2 e 10", ErrInvalidQuestion)
	}
	return nil
}

func (k Rating) ValidateAnswer(answer string) error {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return fmt.Errorf("%w: nota %q não é numérica", ErrInvalidAnswer, answer)
	}
	if n < 1 || n > k.Scale {
		return fmt.Errorf("%w: nota %d fora da escala 1..%d", ErrInvalidAnswer, n, k.Scale)
	}
	return nil
}

// YesNo aceita apenas os literais yes e no.
type YesNo struct{}

func (YesNo) Type() string { return TypeYesNo }

func (YesNo) ValidateSpec() error { return nil }

func (YesNo) ValidateAnswer(answer string) error {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "no":
		return nil
	}
	return fmt.Errorf("%w: esperado yes ou no, veio %q", ErrInvalidAnswer, answer)
}
