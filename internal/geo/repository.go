package geo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Counts agrega a atividade recente de um eleitor.
type Counts struct {
	Demands int `json:"demands"`
	Visits  int `json:"visits"`
}

// Repository consulta contagens de atividade para o mapa.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ActivityCounts devolve, por eleitor, quantas demandas e visitas foram
// criadas a partir do corte informado.
func (r *Repository) ActivityCounts(ctx context.Context, since time.Time) (map[uuid.UUID]Counts, error) {
	counts := make(map[uuid.UUID]Counts)

	rows, err := r.pool.Query(ctx, `
        SELECT voter_id, COUNT(*)
        FROM demands
        WHERE created_at >= $1
        GROUP BY voter_id
    `, since)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			id uuid.UUID
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			rows.Close()
			return nil, err
		}
		c := counts[id]
		c.Demands = n
		counts[id] = c
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	rows, err = r.pool.Query(ctx, `
        SELECT voter_id, COUNT(*)
        FROM visits
        WHERE created_at >= $1
        GROUP BY voter_id
    `, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id uuid.UUID
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		c := counts[id]
		c.Visits = n
		counts[id] = c
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return counts, nil
}
