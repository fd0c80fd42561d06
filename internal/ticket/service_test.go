package ticket

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
)

type stubStore struct {
	tickets  map[uuid.UUID]*Ticket
	messages map[uuid.UUID]*Message
}

func newStubStore() *stubStore {
	return &stubStore{
		tickets:  make(map[uuid.UUID]*Ticket),
		messages: make(map[uuid.UUID]*Message),
	}
}

func (s *stubStore) Create(ctx context.Context, t Ticket) (*Ticket, error) {
	s.tickets[t.ID] = &t
	return &t, nil
}

func (s *stubStore) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.Status = status
	return t, nil
}

func (s *stubStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubStore) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *stubStore) List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]Ticket, error) {
	return nil, nil
}

func (s *stubStore) AppendMessage(ctx context.Context, m Message) (*Message, error) {
	s.messages[m.ID] = &m
	return &m, nil
}

func (s *stubStore) MarkRead(ctx context.Context, messageID, readerID uuid.UUID) error {
	m, ok := s.messages[messageID]
	if !ok {
		return ErrMessageNotFound
	}
	for _, id := range m.ReadBy {
		if id == readerID {
			return nil
		}
	}
	m.ReadBy = append(m.ReadBy, readerID)
	return nil
}

func (s *stubStore) ProtocolExists(ctx context.Context, protocol string) (bool, error) {
	return false, nil
}

func TestPostMessageOnlyParticipants(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStubStore())

	creator, other := uuid.New(), uuid.New()
	tk, err := svc.Create(ctx, CreateInput{
		Subject:      "Dúvida sobre cadastro",
		CreatorID:    creator,
		Participants: []uuid.UUID{other},
	})
	if err != nil {
		t.Fatalf("criação: %v", err)
	}
	if !tk.IsParticipant(creator) {
		t.Fatal("criador deveria entrar como participante")
	}

	intruder := uuid.New()
	if _, err := svc.PostMessage(ctx, PostMessageInput{
		TicketID: tk.ID, SenderID: intruder, Content: "oi",
	}); err != ErrNotParticipant {
		t.Fatalf("esperado ErrNotParticipant, veio %v", err)
	}

	if _, err := svc.PostMessage(ctx, PostMessageInput{
		TicketID: tk.ID, SenderID: other, Content: "como faço para atualizar o endereço?",
	}); err != nil {
		t.Fatalf("participante deveria postar: %v", err)
	}
}

func TestPostMessageClosedTicket(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStubStore())

	creator, other := uuid.New(), uuid.New()
	tk, err := svc.Create(ctx, CreateInput{
		Subject: "Encerrado", CreatorID: creator, Participants: []uuid.UUID{other},
	})
	if err != nil {
		t.Fatalf("criação: %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, tk.ID, StatusClosed); err != nil {
		t.Fatalf("encerramento: %v", err)
	}

	if _, err := svc.PostMessage(ctx, PostMessageInput{
		TicketID: tk.ID, SenderID: creator, Content: "ainda aí?",
	}); err != ErrClosed {
		t.Fatalf("esperado ErrClosed, veio %v", err)
	}
}

func TestMarkReadOnlyGrows(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := NewService(store)

	creator, other := uuid.New(), uuid.New()
	tk, err := svc.Create(ctx, CreateInput{
		Subject: "Leitura", CreatorID: creator, Participants: []uuid.UUID{other},
	})
	if err != nil {
		t.Fatalf("criação: %v", err)
	}

	m, err := svc.PostMessage(ctx, PostMessageInput{
		TicketID: tk.ID, SenderID: creator, Content: "bom dia",
	})
	if err != nil {
		t.Fatalf("mensagem: %v", err)
	}
	if len(m.ReadBy) != 1 || m.ReadBy[0] != creator {
		t.Fatal("remetente deveria constar como leitor inicial")
	}

	if err := svc.MarkRead(ctx, tk.ID, m.ID, other); err != nil {
		t.Fatalf("marcação de leitura: %v", err)
	}
	// repetição é idempotente, nunca remove leitores
	if err := svc.MarkRead(ctx, tk.ID, m.ID, other); err != nil {
		t.Fatalf("segunda marcação: %v", err)
	}

	got := store.messages[m.ID].ReadBy
	if len(got) != 2 {
		t.Fatalf("read_by deveria ter 2 leitores, tem %d", len(got))
	}

	if err := svc.MarkRead(ctx, tk.ID, m.ID, uuid.New()); err != ErrNotParticipant {
		t.Fatalf("esperado ErrNotParticipant, veio %v", err)
	}
}

func TestCreateRequiresTwoParticipants(t *testing.T) {
	svc := NewService(newStubStore())
	if _, err := svc.Create(context.Background(), CreateInput{
		Subject: "Sozinho", CreatorID: uuid.New(),
	}); err == nil {
		t.Fatal("esperado erro com um único participante")
	}
}
