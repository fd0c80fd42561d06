package poll

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaopolitica/eleitorado/internal/roles"
)

// Repository fornece acesso aos dados de pesquisas no Postgres.
// Perguntas e respostas são persistidas como JSONB.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere nova pesquisa.
func (r *Repository) Create(ctx context.Context, p Poll) (*Poll, error) {
	questions, err := json.Marshal(p.Questions)
	if err != nil {
		return nil, err
	}

	const query = `
        INSERT INTO polls (id, title, questions, segment_id, city_ids, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at
    `
	if err := r.pool.QueryRow(ctx, query,
		p.ID, p.Title, questions, p.SegmentID, p.CityIDs, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ChangeStatus ativa ou encerra a pesquisa.
func (r *Repository) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Poll, error) {
	const query = `
        UPDATE polls SET status = $2, updated_at = now() WHERE id = $1
        RETURNING id, title, questions, segment_id, city_ids, status, created_at, updated_at
    `
	return scanPoll(r.pool.QueryRow(ctx, query, id, status))
}

// Delete remove a pesquisa e suas respostas.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID recupera pesquisa pelo ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Poll, error) {
	const query = `
        SELECT id, title, questions, segment_id, city_ids, status, created_at, updated_at
        FROM polls WHERE id = $1
    `
	return scanPoll(r.pool.QueryRow(ctx, query, id))
}

// List devolve pesquisas visíveis ao viewer: admin geral vê todas, papéis
// municipais veem as direcionadas à sua cidade.
func (r *Repository) List(ctx context.Context, viewer roles.Viewer) ([]Poll, error) {
	query := `
        SELECT id, title, questions, segment_id, city_ids, status, created_at, updated_at
        FROM polls
    `
	var args []any

	if !viewer.SeesAll() {
		if viewer.CityID == nil {
			return nil, nil
		}
		query += ` WHERE $1 = ANY(city_ids) OR city_ids = '{}'`
		args = append(args, *viewer.CityID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var polls []Poll
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, err
		}
		polls = append(polls, *p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return polls, nil
}

// SaveResponse grava a resposta; o índice único (poll_id, user_id) garante
// no máximo uma por usuário.
func (r *Repository) SaveResponse(ctx context.Context, resp Response) (*Response, error) {
	answers, err := json.Marshal(resp.Answers)
	if err != nil {
		return nil, err
	}

	const query = `
        INSERT INTO poll_responses (id, poll_id, user_id, answers)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (poll_id, user_id) DO NOTHING
        RETURNING created_at
    `
	if err := r.pool.QueryRow(ctx, query, resp.ID, resp.PollID, resp.UserID, answers).Scan(&resp.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAlreadyResponded
		}
		return nil, err
	}
	return &resp, nil
}

// ListResponses devolve as respostas da pesquisa em ordem de chegada.
func (r *Repository) ListResponses(ctx context.Context, pollID uuid.UUID) ([]Response, error) {
	const query = `
        SELECT id, poll_id, user_id, answers, created_at
        FROM poll_responses
        WHERE poll_id = $1
        ORDER BY created_at ASC
    `
	rows, err := r.pool.Query(ctx, query, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []Response
	for rows.Next() {
		var (
			resp Response
			raw  []byte
		)
		if err := rows.Scan(&resp.ID, &resp.PollID, &resp.UserID, &raw, &resp.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &resp.Answers); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return responses, nil
}

func scanPoll(row pgx.Row) (*Poll, error) {
	var (
		p   Poll
		raw []byte
	)
	if err := row.Scan(
		&p.ID, &p.Title, &raw, &p.SegmentID, &p.CityIDs, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.Questions); err != nil {
		return nil, err
	}
	return &p, nil
}
