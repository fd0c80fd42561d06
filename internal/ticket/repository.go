package ticket

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaopolitica/eleitorado/internal/db"
	"github.com/gestaopolitica/eleitorado/internal/roles"
)

const ticketColumns = `id, protocol, subject, participants, status, created_at, updated_at`
const messageColumns = `id, ticket_id, sender_id, content, attachments, delivery_status, read_by, created_at`

// Repository fornece acesso aos dados de atendimentos no Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere novo atendimento.
func (r *Repository) Create(ctx context.Context, t Ticket) (*Ticket, error) {
	const query = `
        INSERT INTO tickets (id, protocol, subject, participants, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + ticketColumns

	row := r.pool.QueryRow(ctx, query, t.ID, t.Protocol, t.Subject, t.Participants, t.Status)
	return scanTicket(row)
}

// ChangeStatus altera o status do atendimento.
func (r *Repository) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Ticket, error) {
	const query = `
        UPDATE tickets SET status = $2, updated_at = now() WHERE id = $1
        RETURNING ` + ticketColumns

	row := r.pool.QueryRow(ctx, query, id, status)
	return scanTicket(row)
}

// Delete remove o atendimento e suas mensagens.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM ticket_messages WHERE ticket_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetByID recupera o atendimento com as mensagens em ordem de envio.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
        SELECT `+messageColumns+`
        FROM ticket_messages
        WHERE ticket_id = $1
        ORDER BY created_at ASC
    `, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID, &m.TicketID, &m.SenderID, &m.Content, &m.Attachments,
			&m.DeliveryStatus, &m.ReadBy, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		t.Messages = append(t.Messages, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return t, nil
}

// List devolve atendimentos visíveis ao viewer: admin geral vê todos,
// os demais apenas os que participam.
func (r *Repository) List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets`
	var args []any

	if viewer.SeesAll() {
		if filter.Status != "" {
			query += ` WHERE status = $1`
			args = append(args, filter.Status)
		}
	} else {
		query += ` WHERE $1 = ANY(participants)`
		args = append(args, viewer.UserID)
		if filter.Status != "" {
			query += ` AND status = $2`
			args = append(args, filter.Status)
		}
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return tickets, nil
}

// AppendMessage grava a mensagem e atualiza o updated_at do atendimento.
func (r *Repository) AppendMessage(ctx context.Context, m Message) (*Message, error) {
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
            INSERT INTO ticket_messages (id, ticket_id, sender_id, content, attachments, delivery_status, read_by)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING created_at
        `, m.ID, m.TicketID, m.SenderID, m.Content, m.Attachments, m.DeliveryStatus, m.ReadBy).Scan(&m.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE tickets SET updated_at = now() WHERE id = $1`, m.TicketID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkRead adiciona o leitor ao conjunto read_by da mensagem.
// array_append condicionado garante que o conjunto apenas cresce.
func (r *Repository) MarkRead(ctx context.Context, messageID, readerID uuid.UUID) error {
	const query = `
        UPDATE ticket_messages
        SET read_by = array_append(read_by, $2),
            delivery_status = 'delivered'
        WHERE id = $1 AND NOT ($2 = ANY(read_by))
    `
	if _, err := r.pool.Exec(ctx, query, messageID, readerID); err != nil {
		return err
	}
	return nil
}

// ProtocolExists verifica unicidade do protocolo gerado.
func (r *Repository) ProtocolExists(ctx context.Context, protocol string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE protocol = $1)`, protocol).Scan(&exists)
	return exists, err
}

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	if err := row.Scan(
		&t.ID, &t.Protocol, &t.Subject, &t.Participants, &t.Status,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
