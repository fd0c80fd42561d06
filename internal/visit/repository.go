package visit

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaopolitica/eleitorado/internal/roles"
)

const visitColumns = `id, voter_id, city_id, scheduled_at, reason, status, related_user_id, documents, observations, created_at, updated_at`

// Repository fornece acesso aos dados de visitas no Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere nova visita.
func (r *Repository) Create(ctx context.Context, v Visit) (*Visit, error) {
	const query = `
        INSERT INTO visits (id, voter_id, city_id, scheduled_at, reason, status, related_user_id, documents, observations)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + visitColumns

	row := r.pool.QueryRow(ctx, query,
		v.ID, v.VoterID, v.CityID, v.ScheduledAt, v.Reason, v.Status,
		v.RelatedUserID, v.Documents, v.Observations,
	)
	return scanVisit(row)
}

// Update altera a visita mantendo campos não informados.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Visit, error) {
	const query = `
        UPDATE visits
        SET scheduled_at = COALESCE($2, scheduled_at),
            reason = COALESCE($3, reason),
            status = COALESCE($4, status),
            related_user_id = COALESCE($5, related_user_id),
            documents = COALESCE($6, documents),
            observations = COALESCE($7, observations),
            updated_at = now()
        WHERE id = $1
        RETURNING ` + visitColumns

	row := r.pool.QueryRow(ctx, query,
		input.ID, input.ScheduledAt, input.Reason, input.Status,
		input.RelatedUserID, input.Documents, input.Observations,
	)
	return scanVisit(row)
}

// Delete remove a visita.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM visits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID recupera visita pelo ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id)
	return scanVisit(row)
}

// List devolve visitas visíveis ao viewer com filtros adicionais.
func (r *Repository) List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits`
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case viewer.SeesAll():
		// sem restrição
	case viewer.Role == roles.Vereador:
		conds = append(conds, `(related_user_id = `+arg(viewer.UserID)+` OR voter_id IN (SELECT id FROM users WHERE vereador_id = `+arg(viewer.UserID)+`))`)
	case viewer.Role == roles.CaboEleitoral:
		conds = append(conds, `(related_user_id = `+arg(viewer.UserID)+` OR voter_id IN (SELECT id FROM users WHERE cabo_eleitoral_id = `+arg(viewer.UserID)+`))`)
	case viewer.SeesCity():
		conds = append(conds, `city_id = `+arg(*viewer.CityID))
	default:
		conds = append(conds, `voter_id = `+arg(viewer.UserID))
	}

	if filter.Status != "" {
		conds = append(conds, `status = `+arg(filter.Status))
	}
	if filter.Reason != "" {
		conds = append(conds, `reason = `+arg(filter.Reason))
	}
	if filter.CityID != nil {
		conds = append(conds, `city_id = `+arg(*filter.CityID))
	}
	if filter.VoterID != nil {
		conds = append(conds, `voter_id = `+arg(*filter.VoterID))
	}
	if filter.From != nil {
		conds = append(conds, `scheduled_at >= `+arg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, `scheduled_at < `+arg(*filter.To))
	}

	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY scheduled_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, *v)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return visits, nil
}

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	if err := row.Scan(
		&v.ID, &v.VoterID, &v.CityID, &v.ScheduledAt, &v.Reason, &v.Status,
		&v.RelatedUserID, &v.Documents, &v.Observations, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}
