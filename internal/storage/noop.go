package storage

import (
	"context"
	"errors"
)

var errNoBackend = errors.New("storage: backend não configurado")

// Noop devolve erro em toda operação, sinalizando ausência de backend.
type Noop struct{}

func (Noop) Upload(ctx context.Context, dir string, f File) (*Object, error) {
	return nil, errNoBackend
}

func (Noop) Delete(ctx context.Context, key string) error {
	return errNoBackend
}

func (Noop) List(ctx context.Context, prefix string) ([]string, error) {
	return nil, errNoBackend
}
