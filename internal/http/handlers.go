package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/gestaopolitica/eleitorado/internal/http/middleware"
	"github.com/gestaopolitica/eleitorado/internal/storage"
)

// maxUploadBytes limita o tamanho total de formulários com anexos.
const maxUploadBytes = 10 << 20

// Health responde verificação de vida.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready verifica dependências externas (Postgres e Redis).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.Ping(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "banco indisponível", nil)
		return
	}
	if err := h.redis.Ping(r.Context()).Err(); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "redis indisponível", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return false
	}
	return true
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s inválido", name)
	}
	return &id, nil
}

func subjectUUID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(httpmiddleware.GetSubject(r.Context()))
}

// isMultipart informa se a requisição carrega arquivos.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// uploadFormFiles envia todos os arquivos do campo informado para o blob
// storage e devolve as chaves criadas. Em caso de falha no meio do lote, os
// blobs já enviados são removidos antes do retorno.
func (h *Handler) uploadFormFiles(r *http.Request, field, dir string) ([]string, error) {
	form := r.MultipartForm
	if form == nil {
		return nil, nil
	}

	var keys []string
	for _, header := range form.File[field] {
		data, contentType, err := readMultipartFile(header, maxUploadBytes)
		if err != nil {
			return nil, storage.Rollback(r.Context(), h.storage, keys, err)
		}
		obj, err := h.storage.Upload(r.Context(), dir, storage.File{
			Name:        header.Filename,
			Body:        data,
			ContentType: contentType,
		})
		if err != nil {
			return nil, storage.Rollback(r.Context(), h.storage, keys, err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func readMultipartFile(header *multipart.FileHeader, limit int64) ([]byte, string, error) {
	file, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("falha ao abrir arquivo: %w", err)
	}
	defer file.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(file, limit)); err != nil {
		return nil, "", fmt.Errorf("falha ao ler arquivo: %w", err)
	}
	if int64(buf.Len()) >= limit {
		return nil, "", errors.New("arquivo excede o limite de upload")
	}

	contentType := header.Header.Get("Content-Type")
	if strings.TrimSpace(contentType) == "" {
		contentType = http.DetectContentType(buf.Bytes())
	}
	return buf.Bytes(), contentType, nil
}
