package segment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaopolitica/eleitorado/internal/roles"
)

const segmentColumns = `id, name, city_id, bairro, age_min, age_max, demand_statuses, created_at, updated_at`

// Repository fornece acesso aos dados de segmentos no Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere novo segmento.
func (r *Repository) Create(ctx context.Context, s Segment) (*Segment, error) {
	const query = `
        INSERT INTO segments (id, name, city_id, bairro, age_min, age_max, demand_statuses)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + segmentColumns

	row := r.pool.QueryRow(ctx, query,
		s.ID, s.Name, s.CityID, s.Bairro, s.AgeMin, s.AgeMax, s.DemandStatuses,
	)
	return scanSegment(row)
}

// Update altera a definição do filtro.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Segment, error) {
	const query = `
        UPDATE segments
        SET name = COALESCE($2, name),
            city_id = COALESCE($3, city_id),
            bairro = COALESCE($4, bairro),
            age_min = COALESCE($5, age_min),
            age_max = COALESCE($6, age_max),
            demand_statuses = COALESCE($7, demand_statuses),
            updated_at = now()
        WHERE id = $1
        RETURNING ` + segmentColumns

	row := r.pool.QueryRow(ctx, query,
		input.ID, input.Name, input.CityID, input.Bairro, input.AgeMin, input.AgeMax, input.DemandStatuses,
	)
	return scanSegment(row)
}

// Delete remove o segmento.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM segments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID recupera segmento pelo ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Segment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+segmentColumns+` FROM segments WHERE id = $1`, id)
	return scanSegment(row)
}

// List devolve segmentos visíveis ao viewer.
func (r *Repository) List(ctx context.Context, viewer roles.Viewer) ([]Segment, error) {
	query := `SELECT ` + segmentColumns + ` FROM segments`
	var args []any

	if !viewer.SeesAll() {
		if viewer.CityID == nil {
			return nil, nil
		}
		query += ` WHERE city_id = $1`
		args = append(args, *viewer.CityID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return segments, nil
}

// Resolve devolve os eleitores que casam com o filtro neste instante.
// O segmento é dinâmico: a mesma definição pode devolver conjuntos
// diferentes conforme a base muda.
func (r *Repository) Resolve(ctx context.Context, s *Segment) ([]uuid.UUID, error) {
	query := `SELECT u.id FROM users u`
	conds := []string{`u.role = 'voter'`}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s.CityID != nil {
		conds = append(conds, `u.city_id = `+arg(*s.CityID))
	}
	if s.Bairro != "" {
		conds = append(conds, `lower(u.bairro) = lower(`+arg(s.Bairro)+`)`)
	}
	if s.AgeMin != nil {
		conds = append(conds, `u.birth_date <= (CURRENT_DATE - make_interval(years => `+arg(*s.AgeMin)+`))`)
	}
	if s.AgeMax != nil {
		conds = append(conds, `u.birth_date > (CURRENT_DATE - make_interval(years => `+arg(*s.AgeMax+1)+`))`)
	}
	if len(s.DemandStatuses) > 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM demands d WHERE d.voter_id = u.id AND d.status = ANY(`+arg(s.DemandStatuses)+`))`)
	}

	query += ` WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY u.id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return ids, nil
}

func scanSegment(row pgx.Row) (*Segment, error) {
	var s Segment
	if err := row.Scan(
		&s.ID, &s.Name, &s.CityID, &s.Bairro, &s.AgeMin, &s.AgeMax,
		&s.DemandStatuses, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
