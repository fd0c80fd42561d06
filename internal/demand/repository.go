package demand

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaopolitica/eleitorado/internal/db"
	"github.com/gestaopolitica/eleitorado/internal/roles"
)

const demandColumns = `id, protocol, voter_id, city_id, description, status, related_user_id, documents, created_at, updated_at`

// Repository fornece acesso aos dados de demandas no Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere a demanda e a primeira entrada do histórico na mesma transação.
func (r *Repository) Create(ctx context.Context, d Demand) (*Demand, error) {
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const insert = `
            INSERT INTO demands (id, protocol, voter_id, city_id, description, status, related_user_id, documents)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING created_at, updated_at
        `
		if err := tx.QueryRow(ctx, insert,
			d.ID, d.Protocol, d.VoterID, d.CityID, d.Description, d.Status, d.RelatedUserID, d.Documents,
		).Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
			return err
		}

		if len(d.Updates) == 0 {
			return nil
		}
		u := d.Updates[0]
		_, err := tx.Exec(ctx, `
            INSERT INTO demand_updates (id, demand_id, author_id, from_status, to_status, note)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, u.ID, d.ID, u.AuthorID, u.FromStatus, u.ToStatus, u.Note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Update altera dados cadastrais (nunca o status, que passa por ChangeStatus).
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Demand, error) {
	const query = `
        UPDATE demands
        SET description = COALESCE($2, description),
            related_user_id = COALESCE($3, related_user_id),
            documents = COALESCE($4, documents),
            updated_at = now()
        WHERE id = $1
        RETURNING ` + demandColumns

	row := r.pool.QueryRow(ctx, query, input.ID, input.Description, input.RelatedUserID, input.Documents)
	return scanDemand(row)
}

// ChangeStatus aplica a transição e grava a entrada do histórico na mesma
// transação, validando o fluxo contra o status corrente no banco.
func (r *Repository) ChangeStatus(ctx context.Context, id uuid.UUID, to string, authorID uuid.UUID, note string) (*Demand, error) {
	var d *Demand
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var current string
		if err := tx.QueryRow(ctx, `SELECT status FROM demands WHERE id = $1 FOR UPDATE`, id).Scan(&current); err != nil {
			if err == pgx.ErrNoRows {
				return ErrNotFound
			}
			return err
		}
		if !CanTransition(current, to) {
			return ErrInvalidTransition
		}

		row := tx.QueryRow(ctx, `
            UPDATE demands SET status = $2, updated_at = now() WHERE id = $1
            RETURNING `+demandColumns, id, to)
		var err error
		d, err = scanDemand(row)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
            INSERT INTO demand_updates (id, demand_id, author_id, from_status, to_status, note)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, uuid.New(), id, authorID, current, to, note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Delete remove a demanda e seu histórico.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM demand_updates WHERE demand_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM demands WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetByID recupera a demanda com o histórico completo.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Demand, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+demandColumns+` FROM demands WHERE id = $1`, id)
	d, err := scanDemand(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, demand_id, author_id, from_status, to_status, note, created_at
        FROM demand_updates
        WHERE demand_id = $1
        ORDER BY created_at ASC
    `, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u StatusUpdate
		if err := rows.Scan(&u.ID, &u.DemandID, &u.AuthorID, &u.FromStatus, &u.ToStatus, &u.Note, &u.CreatedAt); err != nil {
			return nil, err
		}
		d.Updates = append(d.Updates, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return d, nil
}

// List devolve demandas visíveis ao viewer com filtros adicionais.
func (r *Repository) List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]Demand, error) {
	query := `SELECT ` + demandColumns + ` FROM demands`
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
	if filter.CityID != nil {
		conds = append(conds, `city_id = `+arg(*filter.CityID))
	}
	if filter.VoterID != nil {
		conds = append(conds, `voter_id = `+arg(*filter.VoterID))
	}

	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var demands []Demand
	for rows.Next() {
		d, err := scanDemand(rows)
		if err != nil {
			return nil, err
		}
		demands = append(demands, *d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return demands, nil
}

// ProtocolExists verifica unicidade do protocolo gerado.
func (r *Repository) ProtocolExists(ctx context.Context, protocol string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM demands WHERE protocol = $1)`, protocol).Scan(&exists)
	return exists, err
}

func scanDemand(row pgx.Row) (*Demand, error) {
	var d Demand
	if err := row.Scan(
		&d.ID, &d.Protocol, &d.VoterID, &d.CityID, &d.Description, &d.Status,
		&d.RelatedUserID, &d.Documents, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

