package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/auth"
	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/util"
)

type stubStore struct {
	users   map[uuid.UUID]*User
	invites map[string]*Invite
}

func newStubStore() *stubStore {
	return &stubStore{
		users:   map[uuid.UUID]*User{},
		invites: map[string]*Invite{},
	}
}

func (s *stubStore) Create(ctx context.Context, u User) (*User, error) {
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Permissions = roles.PermissionsFor(u.Role)
	s.users[u.ID] = &u
	return &u, nil
}

func (s *stubStore) Update(ctx context.Context, input UpdateInput) (*User, error) {
	u, ok := s.users[input.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if input.Email != nil {
		u.Email = *input.Email
	}
	if input.Role != nil {
		u.Role = *input.Role
		u.Permissions = roles.PermissionsFor(u.Role)
	}
	if input.Status != nil {
		u.Status = *input.Status
	}
	return u, nil
}

func (s *stubStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *stubStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *stubStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubStore) GetByInviteTokenHash(ctx context.Context, hash string) (*Invite, error) {
	inv, ok := s.invites[hash]
	if !ok {
		return nil, ErrInviteNotFound
	}
	return inv, nil
}

func (s *stubStore) CreateInvite(ctx context.Context, inv Invite) (*User, error) {
	pending := inv.User
	pending.Status = StatusPending
	s.users[pending.ID] = &pending
	s.invites[inv.TokenHash] = &inv
	return &pending, nil
}

func (s *stubStore) AcceptInvite(ctx context.Context, id uuid.UUID, role roles.Role, passwordHash string, input UpdateInput) (*User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrInviteNotFound
	}
	u.Role = role
	u.Status = StatusActive
	u.PasswordHash = passwordHash
	u.Permissions = roles.PermissionsFor(role)
	return u, nil
}

func (s *stubStore) List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]User, error) {
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubStore) EmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	for id, u := range s.users {
		if id != exclude && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) CPFExists(ctx context.Context, cpf string, exclude uuid.UUID) (bool, error) {
	for id, u := range s.users {
		if id != exclude && u.CPF == cpf {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) CountLinkedVoters(ctx context.Context, column string, staffID uuid.UUID) (int64, error) {
	var total int64
	for _, u := range s.users {
		switch column {
		case "vereador_id":
			if u.VereadorID != nil && *u.VereadorID == staffID {
				total++
			}
		case "cabo_eleitoral_id":
			if u.CaboEleitoralID != nil && *u.CaboEleitoralID == staffID {
				total++
			}
		}
	}
	return total, nil
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, 0)
	ctx := context.Background()

	cityID := uuid.New()
	input := CreateInput{
		Email:    "maria@exemplo.com",
		Password: "senhaForte123",
		Role:     roles.Voter,
		CityID:   &cityID,
		Nome:     "Maria Souza",
	}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("primeiro cadastro: %v", err)
	}
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("esperava ErrEmailTaken, veio %v", err)
	}
}

func TestRegisterRejectsRepeatedDigitCPF(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, 0)

	cityID := uuid.New()
	_, err := svc.Register(context.Background(), CreateInput{
		Email:    "joao@exemplo.com",
		Password: "senhaForte123",
		Role:     roles.Voter,
		CityID:   &cityID,
		Nome:     "João Lima",
		CPF:      "111.111.111-11",
	})

	var vErr util.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("esperava erro de validação de CPF, veio %v", err)
	}
}

func TestRegisterRequiresCityForMunicipalRoles(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, 0)

	_, err := svc.Register(context.Background(), CreateInput{
		Email:    "prefeito@exemplo.com",
		Password: "senhaForte123",
		Role:     roles.Mayor,
		Nome:     "Prefeito Sem Cidade",
	})

	var vErr util.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("esperava erro de validação, veio %v", err)
	}
}

func TestInviteAndAcceptPromotesPendingUser(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, time.Hour)
	ctx := context.Background()

	cityID := uuid.New()
	result, err := svc.Invite(ctx, "Ana Dias", "ana@exemplo.com", roles.Vereador, &cityID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if result.Token == "" {
		t.Fatal("token bruto não devolvido")
	}
	if store.users[result.User.ID].Status != StatusPending {
		t.Fatalf("status pendente esperado, veio %s", store.users[result.User.ID].Status)
	}

	accepted, err := svc.AcceptInvite(ctx, result.Token, AcceptInviteInput{Password: "senhaForte123"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Role != roles.Vereador || accepted.Status != StatusActive {
		t.Fatalf("promoção incorreta: role=%s status=%s", accepted.Role, accepted.Status)
	}
	if !accepted.Permissions.CanRegisterVoters {
		t.Fatal("permissões não projetadas após aceite")
	}
}

func TestAcceptInviteRejectsExpiredToken(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, time.Hour)
	ctx := context.Background()

	result, err := svc.Invite(ctx, "Caio Melo", "caio@exemplo.com", roles.Voter, nil)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	hash := auth.HashRefreshToken(result.Token)
	store.invites[hash].ExpiresAt = time.Now().Add(-time.Minute)

	if _, err := svc.AcceptInvite(ctx, result.Token, AcceptInviteInput{Password: "senhaForte123"}); !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("esperava ErrInviteExpired, veio %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, 0)
	ctx := context.Background()

	cityID := uuid.New()
	created, err := svc.Register(ctx, CreateInput{
		Email:    "rita@exemplo.com",
		Password: "senhaForte123",
		Role:     roles.Voter,
		CityID:   &cityID,
		Nome:     "Rita Alves",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "rita@exemplo.com", "senhaForte123"); err != nil {
		t.Fatalf("login válido recusado: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "rita@exemplo.com", "senhaErrada"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("esperava ErrInvalidCredential, veio %v", err)
	}

	suspended := StatusSuspended
	if _, err := svc.Update(ctx, UpdateInput{ID: created.ID, Status: &suspended}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "rita@exemplo.com", "senhaForte123"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("esperava ErrAccountDisabled, veio %v", err)
	}
}
