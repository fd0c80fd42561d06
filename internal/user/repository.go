package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaopolitica/eleitorado/internal/roles"
)

const userColumns = `id, email, password_hash, role, status, city_id, nome, cpf, birth_date, gender, phone,
        endereco, bairro, cep, vereador_id, cabo_eleitoral_id, created_at, updated_at`

// Repository fornece acesso aos dados de usuários no Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere novo usuário.
func (r *Repository) Create(ctx context.Context, u User) (*User, error) {
	const query = `
        INSERT INTO users (id, email, password_hash, role, status, city_id, nome, cpf, birth_date, gender,
            phone, endereco, bairro, cep, vereador_id, cabo_eleitoral_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		u.ID,
		strings.ToLower(strings.TrimSpace(u.Email)),
		u.PasswordHash,
		string(u.Role),
		u.Status,
		u.CityID,
		strings.TrimSpace(u.Nome),
		strings.TrimSpace(u.CPF),
		u.BirthDate,
		strings.TrimSpace(u.Gender),
		strings.TrimSpace(u.Phone),
		strings.TrimSpace(u.Endereco),
		strings.TrimSpace(u.Bairro),
		strings.TrimSpace(u.CEP),
		u.VereadorID,
		u.CaboEleitoralID,
	)

	return scanUser(row)
}

// Update altera campos informados (ponteiros nil permanecem).
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*User, error) {
	const query = `
        UPDATE users
        SET email = COALESCE($2, email),
            role = COALESCE($3, role),
            status = COALESCE($4, status),
            city_id = COALESCE($5, city_id),
            nome = COALESCE($6, nome),
            cpf = COALESCE($7, cpf),
            birth_date = COALESCE($8, birth_date),
            gender = COALESCE($9, gender),
            phone = COALESCE($10, phone),
            endereco = COALESCE($11, endereco),
            bairro = COALESCE($12, bairro),
            cep = COALESCE($13, cep),
            vereador_id = COALESCE($14, vereador_id),
            cabo_eleitoral_id = COALESCE($15, cabo_eleitoral_id),
            updated_at = now()
        WHERE id = $1
        RETURNING ` + userColumns

	var roleStr *string
	if input.Role != nil {
		s := string(*input.Role)
		roleStr = &s
	}

	row := r.pool.QueryRow(ctx, query,
		input.ID,
		lowerPtr(input.Email),
		roleStr,
		input.Status,
		input.CityID,
		input.Nome,
		input.CPF,
		input.BirthDate,
		input.Gender,
		input.Phone,
		input.Endereco,
		input.Bairro,
		input.CEP,
		input.VereadorID,
		input.CaboEleitoralID,
	)

	return scanUser(row)
}

// Delete remove o usuário anulando referências pendentes na mesma transação.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE users SET vereador_id = NULL WHERE vereador_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET cabo_eleitoral_id = NULL WHERE cabo_eleitoral_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE demands SET related_user_id = NULL WHERE related_user_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE visits SET related_user_id = NULL WHERE related_user_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE cities SET administrator_id = NULL WHERE administrator_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE cities SET mayor_id = NULL WHERE mayor_id = $1`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// GetByID recupera usuário pelo ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail recupera usuário pelo e-mail normalizado.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalized)
	return scanUser(row)
}

// GetByInviteTokenHash localiza convite pendente pelo hash do token.
func (r *Repository) GetByInviteTokenHash(ctx context.Context, hash string) (*Invite, error) {
	const query = `
        SELECT ` + userColumns + `, invited_role, invite_token_hash, invite_expires_at
        FROM users
        WHERE invite_token_hash = $1 AND status = 'pending'
    `

	row := r.pool.QueryRow(ctx, query, hash)

	var (
		u           User
		role        string
		invitedRole *string
		tokenHash   *string
		expiresAt   *time.Time
	)
	if err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &role, &u.Status, &u.CityID, &u.Nome, &u.CPF, &u.BirthDate,
		&u.Gender, &u.Phone, &u.Endereco, &u.Bairro, &u.CEP, &u.VereadorID, &u.CaboEleitoralID,
		&u.CreatedAt, &u.UpdatedAt, &invitedRole, &tokenHash, &expiresAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}

	u.Role = roles.Role(role)
	u.Permissions = roles.PermissionsFor(u.Role)

	inv := &Invite{User: u}
	if tokenHash != nil {
		inv.TokenHash = *tokenHash
	}
	if expiresAt != nil {
		inv.ExpiresAt = *expiresAt
	}
	if invitedRole != nil {
		inv.User.Role = roles.Role(*invitedRole)
	}
	return inv, nil
}

// CreateInvite grava usuário pendente com token de convite.
func (r *Repository) CreateInvite(ctx context.Context, inv Invite) (*User, error) {
	const query = `
        INSERT INTO users (id, email, role, invited_role, status, city_id, nome, invite_token_hash, invite_expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		inv.User.ID,
		strings.ToLower(strings.TrimSpace(inv.User.Email)),
		string(roles.Pending),
		string(inv.User.Role),
		StatusPending,
		inv.User.CityID,
		strings.TrimSpace(inv.User.Nome),
		inv.TokenHash,
		inv.ExpiresAt,
	)

	return scanUser(row)
}

// AcceptInvite promove o convidado ao papel alvo e limpa o token.
func (r *Repository) AcceptInvite(ctx context.Context, id uuid.UUID, role roles.Role, passwordHash string, input UpdateInput) (*User, error) {
	const query = `
        UPDATE users
        SET role = $2,
            status = 'active',
            password_hash = $3,
            cpf = COALESCE($4, cpf),
            birth_date = COALESCE($5, birth_date),
            gender = COALESCE($6, gender),
            phone = COALESCE($7, phone),
            endereco = COALESCE($8, endereco),
            bairro = COALESCE($9, bairro),
            cep = COALESCE($10, cep),
            invite_token_hash = NULL,
            invite_expires_at = NULL,
            updated_at = now()
        WHERE id = $1
        RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		id,
		string(role),
		passwordHash,
		input.CPF,
		input.BirthDate,
		input.Gender,
		input.Phone,
		input.Endereco,
		input.Bairro,
		input.CEP,
	)

	return scanUser(row)
}

// List devolve usuários visíveis ao viewer aplicando filtros explícitos.
func (r *Repository) List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
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
		// sem filtro implícito
	case viewer.SeesCity():
		conds = append(conds, "city_id = "+arg(*viewer.CityID))
	case viewer.Role == roles.Vereador:
		conds = append(conds, "(vereador_id = "+arg(viewer.UserID)+" OR id = "+arg(viewer.UserID)+")")
	case viewer.Role == roles.CaboEleitoral:
		conds = append(conds, "(cabo_eleitoral_id = "+arg(viewer.UserID)+" OR id = "+arg(viewer.UserID)+")")
	default:
		conds = append(conds, "id = "+arg(viewer.UserID))
	}

	if filter.Role != nil {
		conds = append(conds, "role = "+arg(string(*filter.Role)))
	}
	if filter.CityID != nil {
		conds = append(conds, "city_id = "+arg(*filter.CityID))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Bairro != "" {
		conds = append(conds, "lower(bairro) = lower("+arg(filter.Bairro)+")")
	}
	if filter.Search != "" {
		conds = append(conds, "(nome ILIKE "+arg("%"+filter.Search+"%")+" OR email ILIKE "+arg("%"+filter.Search+"%")+")")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

// EmailExists verifica unicidade de e-mail, ignorando o próprio registro.
func (r *Repository) EmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`
	var exists bool
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := r.pool.QueryRow(ctx, query, normalized, exclude).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CPFExists verifica unicidade de CPF, ignorando o próprio registro.
func (r *Repository) CPFExists(ctx context.Context, cpf string, exclude uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE cpf = $1 AND cpf <> '' AND id <> $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, strings.TrimSpace(cpf), exclude).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CountLinkedVoters conta eleitores vinculados a um vereador ou cabo eleitoral.
func (r *Repository) CountLinkedVoters(ctx context.Context, column string, staffID uuid.UUID) (int64, error) {
	var query string
	switch column {
	case "vereador_id":
		query = `SELECT COUNT(*) FROM users WHERE role = 'voter' AND vereador_id = $1`
	case "cabo_eleitoral_id":
		query = `SELECT COUNT(*) FROM users WHERE role = 'voter' AND cabo_eleitoral_id = $1`
	default:
		return 0, fmt.Errorf("coluna de vínculo desconhecida: %s", column)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, staffID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u    User
		role string
	)

	if err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &role, &u.Status, &u.CityID, &u.Nome, &u.CPF, &u.BirthDate,
		&u.Gender, &u.Phone, &u.Endereco, &u.Bairro, &u.CEP, &u.VereadorID, &u.CaboEleitoralID,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	u.Role = roles.Role(role)
	u.Permissions = roles.PermissionsFor(u.Role)
	return &u, nil
}

func lowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(*s))
	return &lowered
}
