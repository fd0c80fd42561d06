package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewKeyAddsPrefix(t *testing.T) {
	key, err := NewKey("demands/abc", "comprovante.pdf")
	if err != nil {
		t.Fatalf("geração de chave: %v", err)
	}
	if !strings.HasPrefix(key, "demands/abc/") {
		t.Fatalf("chave fora do diretório: %q", key)
	}
	name := key[strings.LastIndex(key, "/")+1:]
	if len(name) != len("comprovante.pdf")+prefixLen+1 {
		t.Fatalf("prefixo anticolisão ausente: %q", name)
	}
	if !strings.HasSuffix(name, "_comprovante.pdf") {
		t.Fatalf("nome original perdido: %q", name)
	}
}

func TestDisplayNameStripsPrefix(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"demands/abc/k3J9x_comprovante.pdf", "comprovante.pdf"},
		{"k3J9x_foto.png", "foto.png"},
		// sem prefixo reconhecível, devolve como está
		{"avatar.png", "avatar.png"},
		{"demands/abc/semprefixo", "semprefixo"},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.key); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, esperado %q", tc.key, got, tc.want)
		}
	}
}

type flakyStorage struct {
	deleted []string
	failOn  string
}

func (f *flakyStorage) Upload(ctx context.Context, dir string, file File) (*Object, error) {
	return nil, nil
}

func (f *flakyStorage) Delete(ctx context.Context, key string) error {
	if key == f.failOn {
		return errors.New("indisponível")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *flakyStorage) List(ctx context.Context, prefix string) ([]string, error) {
	return nil, nil
}

func TestRollbackJoinsCleanupFailures(t *testing.T) {
	cause := errors.New("gravação do registro falhou")
	st := &flakyStorage{failOn: "b"}

	err := Rollback(context.Background(), st, []string{"a", "b", "c"}, cause)
	if !errors.Is(err, cause) {
		t.Fatal("erro original deveria ser preservado")
	}
	if !strings.Contains(err.Error(), "limpeza de b") {
		t.Fatalf("falha de limpeza deveria compor o erro: %v", err)
	}
	// limpeza continua após a falha parcial
	if len(st.deleted) != 2 {
		t.Fatalf("demais blobs deveriam ser removidos: %v", st.deleted)
	}
}

func TestRollbackWithoutFailuresKeepsCause(t *testing.T) {
	cause := errors.New("gravação do registro falhou")
	st := &flakyStorage{}

	err := Rollback(context.Background(), st, []string{"a"}, cause)
	if !errors.Is(err, cause) {
		t.Fatal("erro original deveria ser preservado")
	}
	if err.Error() != cause.Error() {
		t.Fatalf("sem falhas de limpeza o erro deveria ser só a causa: %v", err)
	}
}
