package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/auth"
	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/util"
)

// Store define o acesso a dados exigido pelo serviço de usuários.
type Store interface {
	Create(ctx context.Context, u User) (*User, error)
	Update(ctx context.Context, input UpdateInput) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByInviteTokenHash(ctx context.Context, hash string) (*Invite, error)
	CreateInvite(ctx context.Context, inv Invite) (*User, error)
	AcceptInvite(ctx context.Context, id uuid.UUID, role roles.Role, passwordHash string, input UpdateInput) (*User, error)
	List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]User, error)
	EmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	CPFExists(ctx context.Context, cpf string, exclude uuid.UUID) (bool, error)
	CountLinkedVoters(ctx context.Context, column string, staffID uuid.UUID) (int64, error)
}

// Service centraliza casos de uso de usuários.
type Service struct {
	store     Store
	inviteTTL time.Duration
}

// NewService cria nova instância do serviço.
func NewService(store Store, inviteTTL time.Duration) *Service {
	if inviteTTL <= 0 {
		inviteTTL = 7 * 24 * time.Hour
	}
	return &Service{store: store, inviteTTL: inviteTTL}
}

// Register cria um usuário ativo imediatamente (senha bruta será hasheada).
func (s *Service) Register(ctx context.Context, input CreateInput) (*User, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	role := roles.Normalize(string(input.Role))
	if !roles.IsValid(role) || role == roles.Pending {
		return nil, ErrInvalidRole
	}
	if role != roles.GeneralAdmin && input.CityID == nil {
		return nil, util.Invalid("cidade obrigatória para papéis municipais")
	}

	cpf := strings.TrimSpace(input.CPF)
	if cpf != "" {
		if err := util.ValidateCPF(cpf); err != nil {
			return nil, err
		}
	}

	if !input.FromExistingVoter {
		taken, err := s.store.EmailExists(ctx, input.Email, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
		if cpf != "" {
			taken, err = s.store.CPFExists(ctx, cpf, uuid.Nil)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrCPFTaken
			}
		}
	}

	hash, err := auth.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	return s.store.Create(ctx, User{
		ID:              uuid.New(),
		Email:           input.Email,
		PasswordHash:    hash,
		Role:            role,
		Status:          StatusActive,
		CityID:          input.CityID,
		Nome:            input.Nome,
		CPF:             cpf,
		BirthDate:       input.BirthDate,
		Gender:          input.Gender,
		Phone:           input.Phone,
		Endereco:        input.Endereco,
		Bairro:          input.Bairro,
		CEP:             input.CEP,
		VereadorID:      input.VereadorID,
		CaboEleitoralID: input.CaboEleitoralID,
	})
}

// InviteResult encapsula o convite e o token bruto para envio.
type InviteResult struct {
	User  User
	Token string
}

// Invite gera um convite (usuário pendente) e devolve o token bruto.
func (s *Service) Invite(ctx context.Context, nome, email string, role roles.Role, cityID *uuid.UUID) (*InviteResult, error) {
	if err := util.RequireString(nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(email); err != nil {
		return nil, err
	}

	role = roles.Normalize(string(role))
	if !roles.IsValid(role) || role == roles.Pending {
		return nil, ErrInvalidRole
	}

	taken, err := s.store.EmailExists(ctx, email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	rawToken, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateInvite(ctx, Invite{
		User: User{
			ID:     uuid.New(),
			Email:  email,
			Role:   role,
			CityID: cityID,
			Nome:   nome,
		},
		TokenHash: hash,
		ExpiresAt: time.Now().Add(s.inviteTTL),
	})
	if err != nil {
		return nil, err
	}

	return &InviteResult{User: *created, Token: rawToken}, nil
}

// AcceptInviteInput completa o perfil no primeiro acesso.
type AcceptInviteInput struct {
	Password  string
	CPF       *string
	BirthDate *time.Time
	Gender    *string
	Phone     *string
	Endereco  *string
	Bairro    *string
	CEP       *string
}

// AcceptInvite consome o convite, promove ao papel alvo e grava a senha.
func (s *Service) AcceptInvite(ctx context.Context, token string, input AcceptInviteInput) (*User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInviteNotFound
	}

	hash := auth.HashRefreshToken(token)
	invite, err := s.store.GetByInviteTokenHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if time.Now().After(invite.ExpiresAt) {
		return nil, ErrInviteExpired
	}

	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if input.CPF != nil && strings.TrimSpace(*input.CPF) != "" {
		if err := util.ValidateCPF(*input.CPF); err != nil {
			return nil, err
		}
		taken, err := s.store.CPFExists(ctx, *input.CPF, invite.User.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrCPFTaken
		}
	}

	hashed, err := auth.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	role := invite.User.Role
	if !roles.IsValid(role) || role == roles.Pending {
		role = roles.Voter
	}

	return s.store.AcceptInvite(ctx, invite.User.ID, role, hashed, UpdateInput{
		CPF:       input.CPF,
		BirthDate: input.BirthDate,
		Gender:    input.Gender,
		Phone:     input.Phone,
		Endereco:  input.Endereco,
		Bairro:    input.Bairro,
		CEP:       input.CEP,
	})
}

// Update altera dados cadastrais revalidando unicidade apenas do que mudou.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*User, error) {
	current, err := s.store.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		if err := util.ValidateEmail(*input.Email); err != nil {
			return nil, err
		}
		if !strings.EqualFold(strings.TrimSpace(*input.Email), current.Email) {
			taken, err := s.store.EmailExists(ctx, *input.Email, input.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrEmailTaken
			}
		}
	}

	if input.CPF != nil && strings.TrimSpace(*input.CPF) != "" {
		if err := util.ValidateCPF(*input.CPF); err != nil {
			return nil, err
		}
		if strings.TrimSpace(*input.CPF) != current.CPF {
			taken, err := s.store.CPFExists(ctx, *input.CPF, input.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrCPFTaken
			}
		}
	}

	if input.Role != nil {
		normalized := roles.Normalize(string(*input.Role))
		if !roles.IsValid(normalized) || normalized == roles.Pending {
			return nil, ErrInvalidRole
		}
		input.Role = &normalized
	}

	if input.Status != nil {
		if !IsValidStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
	}

	return s.store.Update(ctx, input)
}

// Delete remove o usuário; referências de terceiros são anuladas pelo store.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// Get recupera usuário pelo ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// GetByEmail recupera usuário pelo e-mail.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.store.GetByEmail(ctx, email)
}

// List devolve usuários visíveis ao viewer.
func (s *Service) List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]User, error) {
	return s.store.List(ctx, viewer, filter)
}

// Authenticate valida e-mail e senha para o fluxo de login.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	if u.Status != StatusActive {
		return nil, ErrAccountDisabled
	}

	ok, err := auth.Verify(password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredential
	}

	return u, nil
}

// ElectoralBase conta eleitores cujo vereador é o usuário informado.
func (s *Service) ElectoralBase(ctx context.Context, vereadorID uuid.UUID) (int64, error) {
	return s.store.CountLinkedVoters(ctx, "vereador_id", vereadorID)
}

// LinkedVoters conta eleitores vinculados ao cabo eleitoral informado.
func (s *Service) LinkedVoters(ctx context.Context, caboID uuid.UUID) (int64, error) {
	return s.store.CountLinkedVoters(ctx, "cabo_eleitoral_id", caboID)
}
