package poll

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("pesquisa não encontrada")
	ErrInvalidQuestion  = errors.New("pergunta inválida")
	ErrUnknownQuestion  = errors.New("resposta referencia pergunta inexistente")
	ErrMissingAnswer    = errors.New("pergunta obrigatória sem resposta")
	ErrInvalidAnswer    = errors.New("resposta inválida para a pergunta")
	ErrAlreadyResponded = errors.New("usuário já respondeu esta pesquisa")
	ErrInvalidStatus    = errors.New("status de pesquisa inválido")
)

const (
	StatusActive = "active"
	StatusClosed = "closed"
)

const (
	TypeMultipleChoice = "multiple_choice"
	TypeText           = "text"
	TypeRating         = "rating"
	TypeYesNo          = "yes_no"
)

// Kind é a parte específica de cada tipo de pergunta. Cada variante valida
// suas próprias restrições e as respostas que recebe.
type Kind interface {
	Type() string
	ValidateSpec() error
	ValidateAnswer(answer string) error
}

// Question é uma pergunta ordenada da pesquisa. O campo Kind carrega a
// variante (múltipla escolha, texto, nota ou sim/não).
type Question struct {
	ID       uuid.UUID
	Prompt   string
	Required bool
	Kind     Kind
}

// Poll agrupa perguntas ordenadas, direcionadas a um segmento.
// CityIDs é herdado do segmento no momento da criação.
type Poll struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Questions []Question  `json:"questions"`
	SegmentID *uuid.UUID  `json:"segment_id,omitempty"`
	CityIDs   []uuid.UUID `json:"city_ids,omitempty"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Response é a resposta de um usuário: no máximo uma por (pesquisa, usuário).
type Response struct {
	ID        uuid.UUID            `json:"id"`
	PollID    uuid.UUID            `json:"poll_id"`
	UserID    uuid.UUID            `json:"user_id"`
	Answers   map[uuid.UUID]string `json:"answers"`
	CreatedAt time.Time            `json:"created_at"`
}

// CreateInput encapsula o cadastro de pesquisa.
type CreateInput struct {
	Title     string
	Questions []Question
	SegmentID *uuid.UUID
}

type questionJSON struct {
	ID        uuid.UUID `json:"id"`
	Prompt    string    `json:"prompt"`
	Required  bool      `json:"required"`
	Type      string    `json:"type"`
	Options   []string  `json:"options,omitempty"`
	MaxLength int       `json:"max_length,omitempty"`
	Scale     int       `json:"scale,omitempty"`
}

// MarshalJSON serializa a variante como campos planos discriminados por type.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{ID: q.ID, Prompt: q.Prompt, Required: q.Required}
	if q.Kind == nil {
		return nil, ErrInvalidQuestion
	}
	out.Type = q.Kind.Type()
	switch k := q.Kind.(type) {
	case MultipleChoice:
		out.Options = k.Options
	case Text:
		out.MaxLength = k.MaxLength
	case Rating:
		out.Scale = k.Scale
	case YesNo:
	default:
		return nil, ErrInvalidQuestion
	}
	return json.Marshal(out)
}

// UnmarshalJSON reconstrói a variante a partir do discriminador type.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.ID = raw.ID
	q.Prompt = raw.Prompt
	q.Required = raw.Required
	switch raw.Type {
	case TypeMultipleChoice:
		q.Kind = MultipleChoice{Options: raw.Options}
	case TypeText:
		q.Kind = Text{MaxLength: raw.MaxLength}
	case TypeRating:
		q.Kind = Rating{Scale: raw.Scale}
	case TypeYesNo:
		q.Kind = YesNo{}
	default:
		return fmt.Errorf("%w: tipo %q", ErrInvalidQuestion, raw.Type)
	}
	return nil
}
