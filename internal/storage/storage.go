package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gestaopolitica/eleitorado/internal/util"
)

// prefixLen é o tamanho do código anticolisão anexado ao nome do arquivo.
const prefixLen = 5

// File é o conteúdo a enviar.
type File struct {
	Name        string
	Body        []byte
	ContentType string
}

// Object descreve o blob persistido.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Storage define o acesso ao serviço de blobs.
type Storage interface {
	Upload(ctx context.Context, dir string, f File) (*Object, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// NewKey monta a chave do objeto prefixando o nome com um código aleatório
// de cinco caracteres para evitar colisões entre arquivos homônimos.
func NewKey(dir, filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", errors.New("storage: nome do arquivo obrigatório")
	}
	code, err := util.RandomCode(prefixLen)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s", code, filename)
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return name, nil
	}
	return dir + "/" + name, nil
}

// DisplayName devolve o nome original do arquivo, removendo o código
// anticolisão adicionado no upload.
func DisplayName(key string) string {
	name := key
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if len(name) > prefixLen+1 && name[prefixLen] == '_' {
		return name[prefixLen+1:]
	}
	return name
}

// Rollback apaga os blobs enviados antes de uma falha posterior. As falhas
// da própria limpeza são agregadas ao erro original, nunca só logadas.
func Rollback(ctx context.Context, s Storage, keys []string, cause error) error {
	errs := []error{cause}
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("limpeza de %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
