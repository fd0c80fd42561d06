package segment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("segmento não encontrado")
	ErrInvalidRange = errors.New("faixa etária inválida")
)

// Segment é uma definição de filtro salva; o subconjunto de eleitores é
// resolvido a cada consulta, nunca armazenado.
type Segment struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	CityID         *uuid.UUID `json:"city_id,omitempty"`
	Bairro         string     `json:"bairro,omitempty"`
	AgeMin         *int       `json:"age_min,omitempty"`
	AgeMax         *int       `json:"age_max,omitempty"`
	DemandStatuses []string   `json:"demand_statuses,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateInput encapsula o cadastro de segmento.
type CreateInput struct {
	Name           string
	CityID         *uuid.UUID
	Bairro         string
	AgeMin         *int
	AgeMax         *int
	DemandStatuses []string
}

// UpdateInput altera a definição do filtro.
type UpdateInput struct {
	ID             uuid.UUID
	Name           *string
	CityID         *uuid.UUID
	Bairro         *string
	AgeMin         *int
	AgeMax         *int
	DemandStatuses []string
}
