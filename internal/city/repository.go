package city

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

const cityColumns = `c.id, c.name, c.state, c.status, c.administrator_id, c.mayor_id,
        (SELECT COUNT(*) FROM users u WHERE u.city_id = c.id) AS total_users,
        (SELECT COUNT(*) FROM users u WHERE u.city_id = c.id AND u.role = 'voter') AS total_voters,
        (SELECT COUNT(*) FROM users u WHERE u.city_id = c.id AND u.role = 'vereador') AS total_vereadores,
        (SELECT COUNT(*) FROM users u WHERE u.city_id = c.id AND u.role = 'cabo_eleitoral') AS total_cabos,
        c.created_at, c.updated_at`

// Repository fornece acesso aos dados de cidades no Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere nova cidade.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*City, error) {
	const query = `
        INSERT INTO cities (id, name, state, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, state, status, administrator_id, mayor_id, 0::bigint, 0::bigint, 0::bigint, 0::bigint, created_at, updated_at
    `

	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		strings.TrimSpace(input.Name),
		strings.ToUpper(strings.TrimSpace(input.State)),
		input.Status,
	)
	return scanCity(row)
}

// Update altera dados principais da cidade.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*City, error) {
	const query = `
        UPDATE cities c
        SET name = COALESCE($2, name),
            state = COALESCE($3, state),
            status = COALESCE($4, status),
            updated_at = now()
        WHERE id = $1
        RETURNING ` + cityColumns

	row := r.pool.QueryRow(ctx, query, input.ID, input.Name, input.State, input.Status)
	return scanCity(row)
}

// Delete remove a cidade desvinculando seus usuários.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE users SET city_id = NULL WHERE city_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM cities WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetByID recupera cidade com agregados calculados.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*City, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cityColumns+` FROM cities c WHERE c.id = $1`, id)
	return scanCity(row)
}

// List devolve cidades visíveis ao viewer.
func (r *Repository) List(ctx context.Context, viewer roles.Viewer) ([]City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities c`
	var args []any

	if !viewer.SeesAll() {
		if viewer.CityID == nil {
			return nil, nil
		}
		query += ` WHERE c.id = $1`
		args = append(args, *viewer.CityID)
	}
	query += ` ORDER BY c.name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		cities = append(cities, *c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return cities, nil
}

// NameExists verifica unicidade global do nome.
func (r *Repository) NameExists(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM cities WHERE lower(name) = lower($1) AND id <> $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, strings.TrimSpace(name), exclude).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListStaff devolve todos os ocupantes de slots de equipe em qualquer cidade.
func (r *Repository) ListStaff(ctx context.Context) ([]StaffAssignment, error) {
	const query = `
        SELECT id, role, city_id
        FROM users
        WHERE role IN ('city_admin', 'mayor', 'vereador', 'cabo_eleitoral')
        ORDER BY id ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []StaffAssignment
	for rows.Next() {
		var (
			a    StaffAssignment
			role string
		)
		if err := rows.Scan(&a.UserID, &role, &a.CityID); err != nil {
			return nil, err
		}
		a.Role = roles.Role(role)
		staff = append(staff, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return staff, nil
}

// ApplyRoleChanges grava rebaixamentos, promoções e slots da cidade em uma
// única transação; falha parcial desfaz tudo.
func (r *Repository) ApplyRoleChanges(ctx context.Context, set RoleChangeSet) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		for _, id := range set.Demotions {
			tag, err := tx.Exec(ctx, `UPDATE users SET role = 'voter', updated_at = now() WHERE id = $1`, id)
			if err != nil {
				return fmt.Errorf("rebaixar %s: %w", id, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("rebaixar %s: usuário não encontrado", id)
			}
		}

		moved := make([]uuid.UUID, 0, len(set.Demotions)+len(set.Promotions))
		moved = append(moved, set.Demotions...)
		for _, change := range set.Promotions {
			moved = append(moved, change.UserID)
		}
		if len(moved) > 0 {
			if _, err := tx.Exec(ctx,
				`UPDATE cities SET administrator_id = NULL, updated_at = now() WHERE administrator_id = ANY($1) AND id <> $2`,
				moved, set.CityID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`UPDATE cities SET mayor_id = NULL, updated_at = now() WHERE mayor_id = ANY($1) AND id <> $2`,
				moved, set.CityID); err != nil {
				return err
			}
		}

		for _, change := range set.Promotions {
			tag, err := tx.Exec(ctx,
				`UPDATE users SET role = $2, city_id = $3, updated_at = now() WHERE id = $1`,
				change.UserID, string(change.Role), set.CityID)
			if err != nil {
				return fmt.Errorf("promover %s: %w", change.UserID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("promover %s: usuário não encontrado", change.UserID)
			}
		}

		tag, err := tx.Exec(ctx,
			`UPDATE cities SET administrator_id = $2, mayor_id = $3, updated_at = now() WHERE id = $1`,
			set.CityID, set.AdministratorID, set.MayorID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func scanCity(row pgx.Row) (*City, error) {
	var c City
	if err := row.Scan(
		&c.ID, &c.Name, &c.State, &c.Status, &c.AdministratorID, &c.MayorID,
		&c.TotalUsers, &c.TotalVoters, &c.TotalVereadores, &c.TotalCabosEleitorais,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
